package coach

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// CommandInfo holds the path and description of a command for display.
type CommandInfo struct {
	Path        string
	Description string
}

// ListCommands prints the command tree in a two-column layout.
func ListCommands(out io.Writer, commands []CommandInfo) {
	maxPathLength := 0
	for _, data := range commands {
		if len(data.Path) > maxPathLength {
			maxPathLength = len(data.Path)
		}
	}

	fmt.Fprintln(out, "Commands and Subcommands:")
	for _, data := range commands {
		fmt.Fprintf(out, "  %s%s%s\n", data.Path, strings.Repeat(" ", maxPathLength-len(data.Path)+2), data.Description)
	}
}

// collectCommands walks the visible command tree depth first.
func collectCommands(cmd *cobra.Command) []CommandInfo {
	var infos []CommandInfo
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}
		infos = append(infos, CommandInfo{Path: child.CommandPath(), Description: child.Short})
		infos = append(infos, collectCommands(child)...)
	}
	return infos
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List all commands and subcommands",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ListCommands(cmd.OutOrStdout(), collectCommands(rootCmd))
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
}
