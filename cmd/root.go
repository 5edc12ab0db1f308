package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"oniazusa/internal/logging"
)

var (
	debugLogging bool
	logger       *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:           "oniazusa",
	Short:         "oniazusa - turn photos into visual-novel background art",
	Long:          "oniazusa flattens photographs into palette-graded illustrations with ink outlines and paper grain.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(debugLogging, os.Stderr)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug logging to stderr")
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
}
