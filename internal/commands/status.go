package coach

import (
	"fmt"

	"github.com/mwiater/coach/internal/rag"
	"github.com/spf13/cobra"
)

const (
	stateCached = "cached"
	stateAbsent = "absent"
)

// statusReport is the --jsonMode shape of 'status' and 'index'.
type statusReport struct {
	State      string `json:"state"`
	CreatedAt  string `json:"created_at,omitempty"`
	Documents  int    `json:"documents"`
	Dimensions int    `json:"dimensions"`
	Backend    string `json:"backend"`
	Path       string `json:"path"`
}

// statusCmd reports whether an embedding cache exists and when it was built.
// It only reads the store, so no provider credentials are needed.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the embedding cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := requireConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := rag.OpenStore(cfg)
		if err != nil {
			return err
		}
		defer closeStore()

		snap, ok, err := store.Load(cmd.Context())
		if err != nil {
			return err
		}

		report := statusReport{State: stateAbsent, Backend: cfg.Backend(), Path: cfg.CachePath()}
		if ok {
			report.State = stateCached
			report.CreatedAt = snap.CreatedAt()
			report.Documents = snap.Len()
			report.Dimensions = snap.Dimensions()
		}

		out := cmd.OutOrStdout()
		if cfg.JSONMode {
			return printJSON(out, report)
		}
		if !ok {
			writeNoCache(out)
			fmt.Fprintf(out, "Cache: %s (%s)\n", report.Path, report.Backend)
			return nil
		}
		fmt.Fprintln(out, successText(fmt.Sprintf("Embeddings aus Cache geladen (Stand: %s)", report.CreatedAt)))
		fmt.Fprintf(out, "Artikel:     %d\n", report.Documents)
		fmt.Fprintf(out, "Dimensionen: %d\n", report.Dimensions)
		fmt.Fprintf(out, "Cache:       %s (%s)\n", report.Path, report.Backend)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
