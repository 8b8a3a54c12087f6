package cli

import (
	"fmt"

	"github.com/getmockd/stubserver/pkg/cli/internal/output"
	"github.com/getmockd/stubserver/pkg/config"
	"github.com/spf13/cobra"
)

// ValidateOutput summarises a valid definition file.
type ValidateOutput struct {
	File  string      `json:"file"`
	Valid bool        `json:"valid"`
	Error string      `json:"error,omitempty"`
	HTTP  *httpReport `json:"http,omitempty"`
	FTP   *ftpReport  `json:"ftp,omitempty"`
}

type httpReport struct {
	Port         int      `json:"port"`
	Expectations []string `json:"expectations"`
}

type ftpReport struct {
	Port      int      `json:"port"`
	Files     int      `json:"files"`
	SeedGlobs []string `json:"seedGlobs,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a definition file without starting any servers",
	Long: `Validate a definition file without starting any servers.

This command checks:
  - YAML or JSON syntax, rejecting unknown keys
  - Port ranges
  - URL and body patterns, JSONPath, XPath and condition expressions
  - Response status codes and content/file exclusivity
  - FTP seed glob syntax`,
	Example: `  stubserver validate stubs.yaml
  stubserver validate stubs.json --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd, args[0])
	},
}

func runValidate(cmd *cobra.Command, path string) error {
	w := cmd.OutOrStdout()
	out := ValidateOutput{File: path}

	f, err := config.Load(path)
	if err != nil {
		if jsonOutput {
			out.Error = err.Error()
			if jerr := output.JSON(w, out); jerr != nil {
				return jerr
			}
		}
		return err
	}

	out.Valid = true
	if f.HTTP != nil {
		r := &httpReport{Port: f.HTTP.Port, Expectations: make([]string, 0, len(f.HTTP.Expectations))}
		for _, e := range f.HTTP.Expectations {
			exp, err := e.Expectation()
			if err != nil {
				return err
			}
			r.Expectations = append(r.Expectations, exp.String())
		}
		out.HTTP = r
	}
	if f.FTP != nil {
		out.FTP = &ftpReport{Port: f.FTP.Port, Files: len(f.FTP.Files), SeedGlobs: f.FTP.SeedGlobs}
	}

	if jsonOutput {
		return output.JSON(w, out)
	}

	fmt.Fprintf(w, "%s: valid\n", path)
	if out.HTTP != nil {
		fmt.Fprintf(w, "http: port %d, %d expectations\n", out.HTTP.Port, len(out.HTTP.Expectations))
		tw := output.Table(w)
		for i, e := range out.HTTP.Expectations {
			fmt.Fprintf(tw, "  %d\t%s\n", i, e)
		}
		tw.Flush()
	}
	if out.FTP != nil {
		fmt.Fprintf(w, "ftp: port %d, %d files, %d seed globs\n", out.FTP.Port, out.FTP.Files, len(out.FTP.SeedGlobs))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
