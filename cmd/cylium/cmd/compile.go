package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/Ztry8/Cylium/internal/bytecode"
	"github.com/Ztry8/Cylium/pkg/cylium"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var (
	compileEval  string
	compileJSON  bool
	compileColor bool
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile Cylium source and print its disassembled bytecode",
	Long: `Check and compile a Cylium program, then print the disassembled
bytecode for the constant initializer and every procedure.

Examples:
  cylium compile script.cyl
  cylium compile -e "proc main
exit 0
end"`,
	Args: cobra.MaximumNArgs(1),
	RunE: compileScript,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileEval, "eval", "e", "", "compile inline code instead of reading from a file")
	compileCmd.Flags().BoolVar(&compileJSON, "json", false, "dump the compiled bytecode as JSON instead of disassembling it")
	compileCmd.Flags().BoolVar(&compileColor, "color", false, "syntax-highlight --json output (breaks machine parsing)")
}

func compileScript(_ *cobra.Command, args []string) error {
	text, filename, err := readSource(args, compileEval)
	if err != nil {
		exitWithError("%v", err)
	}

	prog, cerr := cylium.Compile(filename, text)
	if cerr != nil {
		fmt.Fprint(os.Stdout, cerr.Format(true))
		return fmt.Errorf("compilation failed")
	}

	if compileJSON {
		data, jerr := bytecode.Serialize(prog)
		if jerr != nil {
			return fmt.Errorf("failed to serialize bytecode: %w", jerr)
		}
		data = pretty.Pretty(data)
		if compileColor {
			data = pretty.Color(data, nil)
		}
		os.Stdout.Write(data)
		return nil
	}

	d := bytecode.NewDisassemblerWidth(os.Stdout, disasmWidth)
	d.Disassemble(prog.ConstInit)

	names := make([]string, 0, len(prog.Procs))
	for name := range prog.Procs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d.Disassemble(prog.Procs[name].Chunk)
	}

	return nil
}
