package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fincalc",
	Short: "Personal finance calculation engine",
	Long: `fincalc runs the personal finance calculator suite: mortgage
amortization, compound growth, debt payoff, FIRE projection with Monte
Carlo simulation, options strategy evaluation, and rent-vs-buy comparison.

Run "fincalc serve" to expose the calculators over HTTP, or
"fincalc calc <calculator>" to run one directly from JSON on stdin.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
		slog.SetDefault(logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the fincalc version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("fincalc", version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to TOML config file")
	rootCmd.AddCommand(serveCmd, calcCmd, defaultsCmd, versionCmd)
}
