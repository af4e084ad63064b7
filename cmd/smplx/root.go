package main

import (
	"github.com/spf13/cobra"

	"github.com/quastix/smplx/internal/logging"
)

var (
	logLevel string
	logger   *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "smplx",
	Short: "Derivative-free minimization with the Nelder-Mead simplex method",
	Long: `SMPLX minimizes scalar objective functions without gradients using the
Nelder-Mead downhill simplex method, with optional box constraints enforced
through a quadratic penalty.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.NewLogger(&logging.Config{
			Level:  logLevel,
			Format: "json",
			Output: "stderr",
		})
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
