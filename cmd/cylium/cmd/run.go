package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Ztry8/Cylium/internal/errors"
	"github.com/Ztry8/Cylium/pkg/cylium"
	"github.com/maruel/natural"
	"github.com/spf13/cobra"
)

var (
	runEval      string
	runShowProcs bool
)

var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Run a Cylium file or inline expression",
	Long: `Execute a Cylium program from a file or inline code.

Examples:
  # Run a script file
  cylium run script.cyl

  # Run inline code
  cylium run -e "proc main
echo 1 + 1
end"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runEval, "eval", "e", "", "run inline code instead of reading from a file")
	runCmd.Flags().BoolVar(&runShowProcs, "show-procs", false, "list declared procedure names before running")
}

func runScript(_ *cobra.Command, args []string) error {
	text, filename, err := readSource(args, runEval)
	if err != nil {
		exitWithError("%v", err)
	}
	if filename != "<eval>" && !strings.HasSuffix(filename, ".cyl") {
		fmt.Fprintf(os.Stdout, "Warning: %s does not have a .cyl extension\n", filename)
	}

	if runShowProcs {
		prog, perr := cylium.Parse(filename, text)
		if perr != nil {
			fmt.Fprint(os.Stdout, perr.Format(true))
			os.Exit(1)
		}
		names := make([]string, len(prog.Procs))
		for i, p := range prog.Procs {
			names[i] = p.Name
		}
		sortNatural(names)
		fmt.Fprintf(os.Stdout, "Procedures: %s\n", strings.Join(names, ", "))
	}

	// Diagnostics print to stdout, matching the reference interpreter's
	// panic-hook/println! behavior rather than the stderr convention.
	code, runErr := cylium.Run(filename, text, os.Stdout, os.Stdin)
	if runErr != nil {
		if cerr, ok := runErr.(*errors.CompilerError); ok {
			fmt.Fprint(os.Stdout, cerr.Format(true))
		} else {
			fmt.Fprintf(os.Stdout, "Error: %v\n", runErr)
		}
		os.Exit(1)
	}

	os.Exit(int(code))
	return nil
}

// sortNatural orders names the way a human would (proc2 before proc10),
// rather than strict ASCII byte order.
func sortNatural(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && natural.Less(names[j], names[j-1]); j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
