package coach

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mwiater/coach/internal/appconfig"
	"github.com/mwiater/coach/internal/chat"
	"github.com/mwiater/coach/internal/providers"
	"github.com/mwiater/coach/internal/rag"
	"github.com/spf13/cobra"
)

type askResult struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	CreatedAt string   `json:"embeddings_as_of"`
}

// newCoach wires the engine and the configured chat provider into a Coach.
func newCoach(cfg *appconfig.Config, engine *rag.Engine) (*chat.Coach, providers.ChatProvider, error) {
	provider, err := newChatProvider(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("chat provider: %w", err)
	}
	coach := chat.NewCoach(engine, provider,
		chat.WithModel(cfg.ChatModel),
		chat.WithTopK(cfg.TopK()),
		chat.WithContextTokenLimit(cfg.ContextTokenLimit))
	return coach, provider, nil
}

// askCmd answers a single question and exits.
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer one question using the article corpus",
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
		snap, err := engine.Snapshot(cmd.Context(), false, nil)
		if errors.Is(err, rag.ErrNoCacheAvailable) {
			writeNoCache(out)
			return nil
		}
		if err != nil {
			return err
		}

		coach, provider, err := newCoach(cfg, engine)
		if err != nil {
			return err
		}
		defer provider.Close()

		turn, err := coach.Ask(cmd.Context(), chat.NewSession(snap), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if cfg.JSONMode {
			return printJSON(out, askResult{
				Question:  turn.Question,
				Answer:    turn.Answer,
				Sources:   turn.Sources,
				CreatedAt: snap.CreatedAt(),
			})
		}
		fmt.Fprintln(out, turn.Answer)
		if len(turn.Sources) > 0 {
			fmt.Fprintln(out)
			fmt.Fprintln(out, titleText("Zur weiteren Lektüre:"))
			for _, url := range turn.Sources {
				fmt.Fprintf(out, "  - %s\n", url)
			}
		}
		fmt.Fprintln(out, dimText(fmt.Sprintf("Embeddings Stand: %s", snap.CreatedAt())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
}
