// Package kb loads knowledge-base rule documents from disk and turns them
// into retrievable chunks with coverage-category tags.
package kb

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxChunkChars bounds markdown chunk size; long paragraphs are split at
// this boundary so no single chunk can dominate a prompt.
const maxChunkChars = 1200

// Chunk is a retrievable unit of knowledge-base text
type Chunk struct {
	ID     string   `json:"id"`
	Text   string   `json:"text"`
	Tags   []string `json:"tags,omitempty"`
	Source string   `json:"source"`
}

// HasTag reports whether the chunk carries the given category tag
func (c Chunk) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// HasAnyTag reports whether the chunk carries any of the given tags
func (c Chunk) HasAnyTag(tags []string) bool {
	for _, t := range tags {
		if c.HasTag(t) {
			return true
		}
	}
	return false
}

// Load reads all markdown files in dir and JSON rule files in dir/json,
// returning chunks in deterministic order (files lexicographically, chunks
// in document order). A missing directory degrades to DefaultChunks rather
// than failing: the system must be usable with no knowledge base present.
func Load(dir string) ([]Chunk, error) {
	if _, err := os.Stat(dir); err != nil {
		log.Warn().Str("dir", dir).Msg("knowledge base directory not found; using synthetic defaults")
		return DefaultChunks(), nil
	}

	var chunks []Chunk

	mdFiles, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("glob markdown: %w", err)
	}
	sort.Strings(mdFiles)
	for _, path := range mdFiles {
		fileChunks, err := chunkMarkdown(path)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, fileChunks...)
	}

	jsonDir := filepath.Join(dir, "json")
	if _, err := os.Stat(jsonDir); err == nil {
		jsonFiles, err := filepath.Glob(filepath.Join(jsonDir, "*.json"))
		if err != nil {
			return nil, fmt.Errorf("glob json: %w", err)
		}
		sort.Strings(jsonFiles)
		for _, path := range jsonFiles {
			chunks = append(chunks, chunkJSONFile(path)...)
		}
	}

	log.Info().Int("chunks", len(chunks)).Str("dir", dir).Msg("knowledge base loaded")
	return chunks, nil
}

// DefaultChunks returns the synthetic rule set used when no knowledge base
// is available: collision coverage, photo requirements, severity escalation.
func DefaultChunks() []Chunk {
	return []Chunk{
		{ID: "policy_dummy.txt", Text: "Collision within policy term is covered unless deliberate damage.", Source: "dummy"},
		{ID: "photo_dummy.txt", Text: "Minimum 3 photos: overall, close-up of damage, license plate.", Source: "dummy"},
		{ID: "triage_dummy.txt", Text: "If severity_score > 0.6 escalate to adjuster.", Source: "dummy"},
	}
}

// chunkMarkdown splits a markdown file into one chunk per paragraph, with
// paragraphs longer than maxChunkChars split at that boundary. Paragraph
// order is preserved.
func chunkMarkdown(path string) ([]Chunk, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	name := filepath.Base(path)
	tags := TagsFromName(name)

	var chunks []Chunk
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	for i, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		for start := 0; start < len(para); start += maxChunkChars {
			end := start + maxChunkChars
			if end > len(para) {
				end = len(para)
			}
			chunks = append(chunks, Chunk{
				ID:     fmt.Sprintf("%s-chunk%d-%d", name, i, start),
				Text:   para[start:end],
				Tags:   tags,
				Source: name,
			})
		}
	}
	return chunks, nil
}

// chunkJSONFile converts a JSON rule file into chunks: one per element for a
// list root (id from the element's own rule_id when present), one per
// top-level key for an object root. A file that does not decode as JSON is
// still admitted as a single raw-text chunk, never dropped silently.
func chunkJSONFile(path string) []Chunk {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	tags := TagsFromName(name)

	data, err := os.ReadFile(path)
	if err != nil {
		log.Warn().Err(err).Str("file", name).Msg("unreadable knowledge file skipped")
		return nil
	}

	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return []Chunk{{ID: name, Text: string(data), Tags: tags, Source: name}}
	}

	var chunks []Chunk
	switch v := root.(type) {
	case []any:
		for idx, item := range v {
			id := fmt.Sprintf("%s-%d", stem, idx)
			if obj, ok := item.(map[string]any); ok {
				if rid, ok := obj["rule_id"].(string); ok && rid != "" {
					id = rid
				}
			}
			chunks = append(chunks, Chunk{ID: id, Text: renderJSON(item), Tags: tags, Source: name})
		}
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			chunks = append(chunks, Chunk{
				ID:     fmt.Sprintf("%s-%s", stem, k),
				Text:   renderJSON(map[string]any{k: v[k]}),
				Tags:   tags,
				Source: name,
			})
		}
	default:
		chunks = append(chunks, Chunk{ID: name, Text: renderJSON(v), Tags: tags, Source: name})
	}
	return chunks
}

func renderJSON(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// TagsFromName infers coverage-category tags from a knowledge file name.
// A filename may carry multiple tags.
func TagsFromName(name string) []string {
	low := strings.ToLower(name)
	var tags []string
	if strings.Contains(low, "coverage") {
		tags = append(tags, "coverage")
	}
	if strings.Contains(low, "sop") {
		tags = append(tags, "sop")
	}
	if strings.Contains(low, "fraud") {
		tags = append(tags, "fraud")
	}
	if strings.Contains(low, "assessment") {
		tags = append(tags, "assessment")
	}
	if strings.Contains(low, "zero") {
		tags = append(tags, "zerodep")
	}
	if strings.Contains(low, "tpl") || strings.Contains(low, "third") {
		tags = append(tags, "tpl")
	}
	if strings.Contains(low, "comp") {
		tags = append(tags, "comp")
	}
	return tags
}
