package index

import (
	"reflect"
	"testing"
)

func TestIndex_Similarity_Ranking(t *testing.T) {
	docs := []string{
		"rear bumper collision damage covered under own damage",
		"staged accident fraud indicators and repeated claims",
		"policy renewal grace period and premium payment terms",
	}
	ix := New(docs)

	hits := ix.Similarity("rear collision bumper", 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Index != 0 {
		t.Errorf("expected doc 0 ranked first, got %d", hits[0].Index)
	}
	if hits[0].Score <= hits[1].Score {
		t.Errorf("expected strictly higher score for best match: %v vs %v", hits[0].Score, hits[1].Score)
	}
	if hits[0].Score > 1.0001 {
		t.Errorf("cosine similarity must stay within [0,1], got %v", hits[0].Score)
	}
}

func TestIndex_Similarity_EmptyQuery(t *testing.T) {
	ix := New([]string{"one document", "two documents", "three documents"})

	hits := ix.Similarity("   ", 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	for i, h := range hits {
		if h.Index != i {
			t.Errorf("expected corpus order for empty query, got index %d at rank %d", h.Index, i)
		}
		if h.Score != 0 {
			t.Errorf("expected zero score for empty query, got %v", h.Score)
		}
	}
}

func TestIndex_Similarity_Bounds(t *testing.T) {
	ix := New([]string{"alpha beta", "beta gamma"})

	if hits := ix.Similarity("beta", 0); hits != nil {
		t.Errorf("expected nil for topK=0, got %v", hits)
	}
	if hits := ix.Similarity("beta", 10); len(hits) != 2 {
		t.Errorf("expected topK clamped to corpus size, got %d", len(hits))
	}
}

func TestIndex_Similarity_TieBreakByCorpusOrder(t *testing.T) {
	// Identical documents score identically; order must stay stable.
	ix := New([]string{"collision report", "collision report", "collision report"})

	hits := ix.Similarity("collision", 3)
	for i, h := range hits {
		if h.Index != i {
			t.Errorf("tie at rank %d broken out of corpus order: got index %d", i, h.Index)
		}
	}
}

func TestIndex_Similarity_UnknownQueryTerms(t *testing.T) {
	ix := New([]string{"rear bumper", "front door"})

	hits := ix.Similarity("zzz qqq", 2)
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	for _, h := range hits {
		if h.Score != 0 {
			t.Errorf("terms unseen in corpus must contribute nothing, got score %v", h.Score)
		}
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Front-left bumper, a B2", []string{"front", "left", "bumper", "b2"}},
		{"severity_score > 0.6", []string{"severity_score"}},
		{"", nil},
		{"x y z", nil},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
