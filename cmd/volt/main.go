// Volt is an interactive editor for Amp's settings.json.
//
// It shows known settings grouped into sections next to their current
// values, lets the user edit them in place with type-appropriate
// widgets, and writes the result back while preserving any keys it
// does not recognize. Structured values open in $EDITOR.
//
// Usage:
//
//	volt [command] [flags]
//
// Running without arguments launches the interactive editor.
// See 'volt --help' for the non-interactive commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voltcfg/volt/internal/logging"
	"github.com/voltcfg/volt/internal/version"
)

func main() {
	if err := logging.InitializeFromEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "volt",
	Short: "Interactive editor for Amp settings",
	Long: `An interactive terminal editor for Amp's settings.json.

Browse known settings grouped into sections, toggle booleans, cycle
enums, edit scalars inline, and open structured values in $EDITOR.
Unknown keys are preserved and editable under the Advanced section.

If no command is specified, the interactive editor launches.`,
	Version: version.Version,
	RunE:    runEditor,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("volt %s (commit: %s)\n", version.Version, version.Commit)
	},
}
