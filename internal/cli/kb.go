package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/claimops/claimassist/internal/index"
	"github.com/claimops/claimassist/internal/kb"
)

var (
	kbPath    string
	searchTop int
)

// kbCmd groups the knowledge base inspection commands
var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Inspect the rule knowledge base",
	Long: `Inspect the knowledge base the pipeline retrieves rules from.

Markdown files are split into paragraph chunks; JSON files contribute one
chunk per rule. Chunks are tagged by filename (coverage, fraud, sop, tpl,
comp, zerodep) and those tags drive retrieval preferences.`,
}

var kbStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show chunk counts per source file and tag",
	RunE: func(cmd *cobra.Command, args []string) error {
		chunks, err := kb.Load(kbPath)
		if err != nil {
			return fmt.Errorf("load knowledge base: %w", err)
		}

		bySource := map[string]int{}
		byTag := map[string]int{}
		for _, chunk := range chunks {
			bySource[chunk.Source]++
			for _, tag := range chunk.Tags {
				byTag[tag]++
			}
		}

		fmt.Printf("Chunks: %d\n\n", len(chunks))

		fmt.Println("By source:")
		for _, source := range sortedKeys(bySource) {
			fmt.Printf("  %-40s %d\n", source, bySource[source])
		}

		fmt.Println("\nBy tag:")
		for _, tag := range sortedKeys(byTag) {
			fmt.Printf("  %-40s %d\n", tag, byTag[tag])
		}

		return nil
	},
}

var kbSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the knowledge base by lexical similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")

		chunks, err := kb.Load(kbPath)
		if err != nil {
			return fmt.Errorf("load knowledge base: %w", err)
		}
		if len(chunks) == 0 {
			return fmt.Errorf("knowledge base is empty")
		}

		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Text
		}

		hits := index.New(texts).Similarity(query, searchTop)
		for _, hit := range hits {
			chunk := chunks[hit.Index]
			excerpt := strings.ReplaceAll(chunk.Text, "\n", " ")
			if len(excerpt) > 120 {
				excerpt = excerpt[:120] + "…"
			}
			fmt.Printf("%.4f  %-32s %s\n", hit.Score, chunk.ID, excerpt)
			if len(chunk.Tags) > 0 {
				fmt.Printf("        tags: %s\n", strings.Join(chunk.Tags, ", "))
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(kbCmd)
	kbCmd.AddCommand(kbStatsCmd)
	kbCmd.AddCommand(kbSearchCmd)

	// Not shared with the process/batch --kb flag: those default to the
	// configured directory and must not clobber this default during init.
	kbCmd.PersistentFlags().StringVar(&kbPath, "kb", "knowledge_base", "knowledge base directory")
	kbSearchCmd.Flags().IntVar(&searchTop, "top", 10, "number of results")
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
