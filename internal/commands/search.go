package coach

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/coach/internal/rag"
	"github.com/spf13/cobra"
)

type searchResult struct {
	Rank  int     `json:"rank"`
	Index int     `json:"index"`
	Score float64 `json:"score"`
	Title string  `json:"title"`
	URL   string  `json:"url"`
}

// searchCmd ranks the cached articles against a query without calling the chat model.
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Show the articles most similar to a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		engine, closeStore, err := openEngine(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		out := cmd.OutOrStdout()
		passages, err := engine.AnswerQuery(cmd.Context(), strings.Join(args, " "))
		if errors.Is(err, rag.ErrNoCacheAvailable) {
			writeNoCache(out)
			return nil
		}
		if err != nil {
			return err
		}

		results := make([]searchResult, len(passages))
		for i, p := range passages {
			results[i] = searchResult{Rank: i + 1, Index: p.Index, Score: p.Score, Title: p.Title, URL: p.URL}
		}
		if cfg.JSONMode {
			return printJSON(out, results)
		}
		for _, r := range results {
			fmt.Fprintf(out, "%d. %s %s\n   %s\n", r.Rank, dimText(fmt.Sprintf("[%.4f]", r.Score)), titleText(r.Title), r.URL)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
