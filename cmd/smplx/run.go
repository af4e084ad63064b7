package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quastix/smplx/internal/optimization"
	"github.com/quastix/smplx/internal/optimization/neldermead"
	"github.com/quastix/smplx/internal/optimization/objectives"
)

var (
	objectiveName string
	startFlag     string
	lowerFlag     string
	upperFlag     string
	ftol          float64
	ptol          float64
	maxIters      int
	simplexSize   float64
	pooled        bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Minimize a named benchmark objective",
	Long: `Runs the Nelder-Mead engine against one of the registered benchmark
objectives and prints the result as JSON.`,
	RunE: runMinimize,
}

func init() {
	runCmd.Flags().StringVar(&objectiveName, "objective", "", "Objective name (required); one of: "+strings.Join(objectives.Names(), ", "))
	runCmd.Flags().StringVar(&startFlag, "start", "", "Comma-separated initial guess (required)")
	runCmd.Flags().StringVar(&lowerFlag, "lower", "", "Comma-separated lower bounds")
	runCmd.Flags().StringVar(&upperFlag, "upper", "", "Comma-separated upper bounds")
	runCmd.Flags().Float64Var(&ftol, "ftol", optimization.DefaultFunctionTolerance, "Function tolerance")
	runCmd.Flags().Float64Var(&ptol, "ptol", optimization.DefaultParameterTolerance, "Parameter tolerance")
	runCmd.Flags().IntVar(&maxIters, "max-iters", optimization.DefaultMaxIterations, "Maximum iterations")
	runCmd.Flags().Float64Var(&simplexSize, "simplex-size", optimization.DefaultInitialSimplexSize, "Relative initial simplex size")
	runCmd.Flags().BoolVar(&pooled, "pooled", false, "Reuse scratch buffers through a pool")

	runCmd.MarkFlagRequired("objective")
	runCmd.MarkFlagRequired("start")
	rootCmd.AddCommand(runCmd)
}

func runMinimize(cmd *cobra.Command, args []string) error {
	objective, ok := objectives.Lookup(objectiveName)
	if !ok {
		return fmt.Errorf("unknown objective %q, expected one of: %s", objectiveName, strings.Join(objectives.Names(), ", "))
	}

	start, err := parseFloats(startFlag)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}

	cfg := optimization.DefaultConfig[float64]()
	cfg.FunctionTolerance = ftol
	cfg.ParameterTolerance = ptol
	cfg.MaxIterations = maxIters
	cfg.InitialSimplexSize = simplexSize
	if lowerFlag != "" {
		if cfg.LowerBounds, err = parseFloats(lowerFlag); err != nil {
			return fmt.Errorf("invalid --lower: %w", err)
		}
	}
	if upperFlag != "" {
		if cfg.UpperBounds, err = parseFloats(upperFlag); err != nil {
			return fmt.Errorf("invalid --upper: %w", err)
		}
	}

	minimizer := neldermead.New[float64]()
	if pooled {
		minimizer = neldermead.NewPooled[float64]()
	}

	logger.Info("Starting minimization", map[string]interface{}{
		"objective": objectiveName,
		"dims":      len(start),
		"max_iters": maxIters,
	})

	result, err := minimizer.Minimize(objective, start, cfg)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// parseFloats parses a comma-separated list of numbers.
func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, nil
}
