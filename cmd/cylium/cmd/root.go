package cmd

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	verbose     bool
	trace       bool
	disasmWidth int
)

// runProfile is the optional cylium.yaml configuration loaded from the
// current directory. A missing file is not an error; zero values apply.
type runProfile struct {
	Verbose     bool `yaml:"verbose"`
	Trace       bool `yaml:"trace"`
	DisasmWidth int  `yaml:"disasm_width"`
}

func loadRunProfile() runProfile {
	var profile runProfile
	data, err := os.ReadFile("cylium.yaml")
	if err != nil {
		return profile
	}
	if err := yaml.Unmarshal(data, &profile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to parse cylium.yaml: %v\n", err)
		return runProfile{}
	}
	return profile
}

var rootCmd = &cobra.Command{
	Use:   "cylium",
	Short: "Cylium language toolchain",
	Long: `cylium is the reference toolchain for the Cylium scripting language.

Cylium programs are a flat sequence of top-level constants and procedures,
with a single zero-argument "main" procedure as the entry point. cylium
lexes, parses, semantically checks, compiles to a small stack bytecode,
and executes the result in one pipeline.`,
	Version: Version,

	// Diagnostics are printed by the subcommands themselves (to stdout,
	// matching the reference interpreter's behavior), not by cobra's
	// default stderr error/usage printer.
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	profile := loadRunProfile()
	disasmWidth = profile.DisasmWidth
	if disasmWidth <= 0 {
		disasmWidth = 12
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", profile.Verbose, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", profile.Trace, "reserved: trace procedure calls (not yet wired)")
}

// exitWithError prints a CLI-level error and halts the process. It writes to
// stdout, not stderr, matching the reference interpreter's panic-hook
// behavior of routing every diagnostic through the same stream.
func exitWithError(msg string, args ...any) {
	fmt.Fprintf(os.Stdout, "Error: "+msg+"\n", args...)
	os.Exit(1)
}

// readSource returns the text to operate on, plus a display filename. It
// reads from evalCode if non-empty, otherwise from the single positional
// file argument.
func readSource(args []string, evalCode string) (text, filename string, err error) {
	if evalCode != "" {
		return evalCode, "<eval>", nil
	}
	if len(args) == 1 {
		content, readErr := os.ReadFile(args[0])
		if readErr != nil {
			return "", "", fmt.Errorf("failed to read file %s: %w", args[0], readErr)
		}
		return string(content), args[0], nil
	}
	return "", "", fmt.Errorf("either provide a file path or use -e/--eval for inline code")
}
