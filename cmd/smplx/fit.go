package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quastix/smplx/internal/optimization/gaussfit"
)

var dataPath string

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a double-Gaussian model to sampled data",
	Long: `Reads "x,y" samples from a CSV file, fits a two-peak Gaussian mixture by
minimizing the sum of squared residuals, and prints the result as JSON.`,
	RunE: runFit,
}

func init() {
	fitCmd.Flags().StringVar(&dataPath, "data", "", "CSV file of x,y samples (required)")
	fitCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(fitCmd)
}

func runFit(cmd *cobra.Command, args []string) error {
	xs, ys, err := readSamples(dataPath)
	if err != nil {
		return fmt.Errorf("failed to read samples: %w", err)
	}

	logger.Info("Starting fit", map[string]interface{}{
		"samples": len(xs),
	})

	result, err := gaussfit.Fit(xs, ys)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// readSamples reads x,y pairs from a CSV file and returns them ordered by x.
func readSamples(path string) (xs, ys []float64, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	type sample struct{ x, y float64 }
	var samples []sample

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			return nil, nil, fmt.Errorf("malformed line %q", line)
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, nil, err
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, nil, err
		}
		samples = append(samples, sample{x, y})
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}

	sort.Slice(samples, func(i, j int) bool { return samples[i].x < samples[j].x })

	xs = make([]float64, len(samples))
	ys = make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.x
		ys[i] = s.y
	}
	return xs, ys, nil
}
