package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "ruleforge",
	Short: "Unified rule compiler for social-simulation dialects",
	Long: `ruleforge parses behavioral rules written in any of the four supported
surface syntaxes (insimul, ensemble, kismet, tott) into one canonical
representation, validates it, and re-emits it as any dialect.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.InfoLevel)
		}
	},
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.AddCommand(compileCmd, exportCmd, validateCmd, switchCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
