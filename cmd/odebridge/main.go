package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/odelang/odebridge/bridge"
)

var (
	cfgPath string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "odebridge",
	Short: "Compile and evaluate symbolic ODE models against a model engine",
	Long: `odebridge serializes symbolic ODE model documents, compiles them
through an in-process or WebAssembly-hosted engine and evaluates the
right-hand side through either invocation protocol.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger, err := zap.NewDevelopment()
			if err != nil {
				return err
			}
			bridge.SetLogger(logger)
		}
		return nil
	},
}

func main() {
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(tuiCmd)

	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to TOML configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
