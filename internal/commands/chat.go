// internal/commands/chat.go
package coach

import (
	"errors"

	"github.com/mwiater/coach/internal/chat"
	"github.com/mwiater/coach/internal/logging"
	"github.com/mwiater/coach/internal/rag"
	"github.com/mwiater/coach/internal/tui"
	"github.com/spf13/cobra"
)

// runChat is a function alias to tui.RunChat for starting the interactive coach.
var runChat = tui.RunChat

// chatCmd represents the 'chat' command, which starts an interactive coaching session.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a coaching session",
	Long: `The 'chat' command starts an interactive session with the career coach.
Answers are grounded in the cached article embeddings; type /rebuild to refresh
them, /clear to forget the conversation and /1 to /4 for suggested topics.`,
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

		snap, err := engine.Snapshot(cmd.Context(), false, nil)
		if err != nil && !errors.Is(err, rag.ErrNoCacheAvailable) {
			return err
		}

		coach, provider, err := newCoach(cfg, engine)
		if err != nil {
			return err
		}
		defer provider.Close()

		session := chat.NewSession(snap)
		logging.LogEvent("chat session %s started", session.ID())
		return runChat(cmd.Context(), session, coach, engine.Rebuild)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
