package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/smallnest/langgraphlab/rag"
)

func newSimilarityCmd(a *app) *cobra.Command {
	var sorted bool
	cmd := &cobra.Command{
		Use:   "similarity <query> <text>...",
		Short: "Score texts against a query by cosine similarity",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			embedder, err := a.embedder()
			if err != nil {
				return err
			}
			ranked, err := rag.Rank(cmd.Context(), embedder, args[0], args[1:])
			if err != nil {
				return err
			}
			if sorted {
				sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
			}

			p := a.printer(cmd)
			p.Title("Query: " + args[0])
			for _, r := range ranked {
				p.Check(fmt.Sprintf("%.3f  %s", r.Score, r.Text), r.Relevant)
			}
			p.Note(fmt.Sprintf("relevant above %.1f", rag.RelevanceThreshold))
			return nil
		},
	}
	cmd.Flags().BoolVar(&sorted, "sort", false, "order by descending score")
	return cmd
}
