package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/Ztry8/Cylium/internal/ast"
	"github.com/Ztry8/Cylium/pkg/cylium"
	"github.com/spf13/cobra"
)

var parseEval string

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse Cylium source and dump its AST",
	Long: `Parse a Cylium program and print its Abstract Syntax Tree.

Examples:
  cylium parse script.cyl
  cylium parse -e "proc main
exit 0
end"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringVarP(&parseEval, "eval", "e", "", "parse inline code instead of reading from a file")
}

func runParse(_ *cobra.Command, args []string) error {
	text, filename, err := readSource(args, parseEval)
	if err != nil {
		exitWithError("%v", err)
	}

	prog, perr := cylium.Parse(filename, text)
	if perr != nil {
		fmt.Fprint(os.Stdout, perr.Format(true))
		return fmt.Errorf("parsing failed")
	}

	dumpProgram(prog)
	return nil
}

func dumpProgram(prog *ast.Program) {
	fmt.Printf("Program (%d const, %d proc)\n", len(prog.Consts), len(prog.Procs))
	for _, c := range prog.Consts {
		fmt.Printf("  ConstDecl %s: %s\n", c.Name, c.Type)
		dumpExpr(c.Value, 2)
	}
	for _, p := range prog.Procs {
		var params []string
		for _, pr := range p.Params {
			params = append(params, fmt.Sprintf("%s:%s", pr.Name, pr.Type))
		}
		fmt.Printf("  Proc %s(%s)\n", p.Name, strings.Join(params, ", "))
		dumpStmts(p.Body, 2)
	}
}

func dumpStmts(stmts []ast.Stmt, indent int) {
	for _, s := range stmts {
		dumpStmt(s, indent)
	}
}

func pad(indent int) string { return strings.Repeat("  ", indent) }

func dumpStmt(s ast.Stmt, indent int) {
	p := pad(indent)
	switch n := s.(type) {
	case *ast.VarDecl:
		fmt.Printf("%sVarDecl %s: %s (const=%v)\n", p, n.Name, n.Type, n.IsConst)
		dumpExpr(n.Value, indent+1)
	case *ast.Assign:
		fmt.Printf("%sAssign %s\n", p, n.Name)
		dumpExpr(n.Value, indent+1)
	case *ast.Echo:
		fmt.Printf("%sEcho\n", p)
		dumpExpr(n.Value, indent+1)
	case *ast.Exit:
		fmt.Printf("%sExit %d\n", p, n.Code)
	case *ast.Delete:
		fmt.Printf("%sDelete %s\n", p, n.Name)
	case *ast.Call:
		fmt.Printf("%sCall %s (%d args)\n", p, n.Name, len(n.Args))
	case *ast.If:
		fmt.Printf("%sIf\n", p)
		dumpExpr(n.Cond, indent+1)
		dumpStmts(n.Then, indent+1)
		if n.Else != nil {
			fmt.Printf("%sElse\n", p)
			if n.Else.ElseIf != nil {
				dumpStmt(n.Else.ElseIf, indent+1)
			} else {
				dumpStmts(n.Else.Body, indent+1)
			}
		}
	case *ast.While:
		fmt.Printf("%sWhile\n", p)
		dumpExpr(n.Cond, indent+1)
		dumpStmts(n.Body, indent+1)
	case *ast.For:
		fmt.Printf("%sFor %s\n", p, n.Var)
		dumpStmts(n.Body, indent+1)
	default:
		fmt.Printf("%s%T\n", p, s)
	}
}

func dumpExpr(e ast.Expr, indent int) {
	p := pad(indent)
	switch n := e.(type) {
	case *ast.Ident:
		fmt.Printf("%sIdent %s\n", p, n.Name)
	case *ast.Literal:
		fmt.Printf("%sLiteral %s\n", p, n.Value.Text())
	case *ast.Unary:
		fmt.Printf("%sUnary\n", p)
		dumpExpr(n.X, indent+1)
	case *ast.Binary:
		fmt.Printf("%sBinary\n", p)
		dumpExpr(n.Left, indent+1)
		dumpExpr(n.Right, indent+1)
	case *ast.As:
		fmt.Printf("%sAs\n", p)
		dumpExpr(n.X, indent+1)
	default:
		fmt.Printf("%s%T\n", p, e)
	}
}
