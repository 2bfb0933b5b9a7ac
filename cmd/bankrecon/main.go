// Command bankrecon runs the ingestion and reconciliation pipeline over a
// CSV export from the command line and prints JSON to stdout.
package main

import (
	"fmt"
	"os"

	"github.com/JonMunkholm/bankrecon/internal/core"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
