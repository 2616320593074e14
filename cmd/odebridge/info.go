package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <model.json>",
	Short: "Compile a model document and print its discovered shape",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		m, _, cl, err := compileFile(ctx, cfg, args[0])
		if err != nil {
			color.Red("compile failed: %v", err)
			return err
		}
		defer cl()
		defer m.Close()

		head := color.New(color.FgCyan, color.Bold)
		head.Println(args[0])
		fmt.Printf("  states:     %d\n", m.StateCount())
		fmt.Printf("  parameters: %d\n", m.ParamCount())
		fmt.Printf("  u0: %v\n", m.InitialStates())
		fmt.Printf("  p:  %v\n", m.InitialParams())

		if lay := m.Layout(); lay != nil {
			head.Println("register layout")
			fmt.Printf("  file size:   %d\n", lay.Size)
			fmt.Printf("  iv slot:     %d\n", lay.IV)
			fmt.Printf("  state block: %d+%d\n", lay.FirstState, lay.States)
			fmt.Printf("  diff block:  %d+%d\n", lay.FirstDiff, lay.States)
			fmt.Printf("  param block: %d+%d\n", lay.FirstParam, lay.Params)
		} else {
			fmt.Println("  protocol: discrete buffers")
		}
		return nil
	},
}
