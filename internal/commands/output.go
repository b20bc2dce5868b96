package coach

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	successText = color.New(color.FgGreen).SprintFunc()
	warningText = color.New(color.FgYellow).SprintFunc()
	dimText     = color.New(color.Faint).SprintFunc()
	titleText   = color.New(color.Bold).SprintFunc()
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// writeNoCache explains how to build the first snapshot. A missing cache is not a failure.
func writeNoCache(out io.Writer) {
	fmt.Fprintln(out, warningText("Noch keine Embeddings vorhanden. Mit 'coach index' erstellen."))
}
