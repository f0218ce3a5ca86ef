package cmd

import (
	"fmt"
	"os"

	"github.com/Ztry8/Cylium/internal/token"
	"github.com/Ztry8/Cylium/pkg/cylium"
	"github.com/spf13/cobra"
)

var (
	lexEval     string
	lexShowPos  bool
	lexShowType bool
)

var lexCmd = &cobra.Command{
	Use:   "lex [file]",
	Short: "Tokenize a Cylium file or expression",
	Long: `Tokenize a Cylium program and print the resulting tokens, one
preprocessed line at a time.

Examples:
  cylium lex script.cyl
  cylium lex -e "echo 1 + 1"
  cylium lex --show-type --show-pos script.cyl`,
	Args: cobra.MaximumNArgs(1),
	RunE: lexScript,
}

func init() {
	rootCmd.AddCommand(lexCmd)
	lexCmd.Flags().StringVarP(&lexEval, "eval", "e", "", "tokenize inline code instead of reading from a file")
	lexCmd.Flags().BoolVar(&lexShowPos, "show-pos", false, "show token positions (line:column)")
	lexCmd.Flags().BoolVar(&lexShowType, "show-type", false, "show token type names")
}

func lexScript(_ *cobra.Command, args []string) error {
	text, filename, err := readSource(args, lexEval)
	if err != nil {
		exitWithError("%v", err)
	}

	grid, lexErr := cylium.Tokenize(filename, text)
	if lexErr != nil {
		fmt.Fprint(os.Stdout, lexErr.Format(true))
		return fmt.Errorf("lexing failed")
	}

	count := 0
	for _, line := range grid {
		for _, tok := range line {
			printToken(tok)
			count++
		}
	}
	if verbose {
		fmt.Printf("---\nTotal tokens: %d\n", count)
	}

	return nil
}

func printToken(tok token.Token) {
	var out string
	if lexShowType {
		out = fmt.Sprintf("[%-12s]", tok.Type)
	}
	if tok.Literal == "" {
		out += fmt.Sprintf(" %s", tok.Type)
	} else {
		out += fmt.Sprintf(" %q", tok.Literal)
	}
	if lexShowPos {
		out += fmt.Sprintf(" @%d:%d", tok.Pos.Line, tok.Pos.Column)
	}
	fmt.Println(out)
}
