package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// jsonOutput switches command results to JSON.
	jsonOutput bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "stubserver",
	Short: "stubserver runs scripted HTTP and FTP stubs",
	Long: `stubserver stands up HTTP and FTP stub servers from a definition file.

HTTP expectations are single-use and matched in declaration order. When the
server stops, every expectation that never consumed a request is reported and
the command exits non-zero. The FTP stub serves an in-memory file store
seeded from the same file.`,
	SilenceUsage:  true,
	SilenceErrors: true, // Main prints errors
}

// Main runs the command line and returns the process exit code.
func Main() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// Execute runs the command line and exits the process with its result.
func Execute() {
	os.Exit(Main())
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}
