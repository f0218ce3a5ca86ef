package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var aboutCmd = &cobra.Command{
	Use:   "about",
	Short: "Print license and authorship information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("cylium - the Cylium language toolchain")
		fmt.Println("lexer, parser, validator, compiler, and VM for the Cylium scripting language")
		fmt.Println()
		fmt.Println("Distributed under the terms of its repository license.")
	},
}

func init() {
	rootCmd.AddCommand(aboutCmd)
}
