// cmd/coach/main.go
package main

import (
	coach "github.com/mwiater/coach/internal/commands"
)

// Populated by -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the coach CLI by delegating to the cobra root command.
func main() {
	coach.SetVersionInfo(version, commit, date)
	coach.Execute()
}
