package coach

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/mwiater/coach/internal/tui"
	"github.com/spf13/cobra"
)

// runRebuild shows a progress bar on a terminal and percentage lines everywhere else.
func runRebuild(cmd *cobra.Command, jsonMode bool, build tui.RebuildFunc) error {
	out := cmd.OutOrStdout()
	if jsonMode || !isTerminal(out) {
		_, err := tui.RunRebuildPlain(cmd.Context(), cmd.ErrOrStderr(), build)
		return err
	}
	_, err := tui.RunRebuild(cmd.Context(), out, build)
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// indexCmd re-embeds the whole corpus and replaces the stored snapshot.
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the embedding cache from the article corpus",
	Long: `The 'index' command reads every article of the corpus, embeds it in batches
and atomically replaces the embedding cache. The previous cache stays in place if
anything fails along the way.`,
	Args: cobra.NoArgs,
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

		if err := runRebuild(cmd, cfg.JSONMode, engine.Rebuild); err != nil {
			return fmt.Errorf("rebuild embeddings: %w", err)
		}
		snap, err := engine.Snapshot(cmd.Context(), false, nil)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if cfg.JSONMode {
			return printJSON(out, statusReport{
				State:      stateCached,
				CreatedAt:  snap.CreatedAt(),
				Documents:  snap.Len(),
				Dimensions: snap.Dimensions(),
				Backend:    cfg.Backend(),
				Path:       cfg.CachePath(),
			})
		}
		fmt.Fprintln(out, successText(fmt.Sprintf("Embeddings wurden neu erstellt am %s", snap.CreatedAt())))
		fmt.Fprintf(out, "%d Artikel, %d Dimensionen, gespeichert in %s\n", snap.Len(), snap.Dimensions(), cfg.CachePath())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
