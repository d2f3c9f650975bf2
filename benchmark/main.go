// Package main measures how long the prdash read commands take against a populated fact store.
// Each command runs several times per output format. The first successful run counts as cold
// and the rest are averaged as warm. Results are written to a CSV file.
//
// Prerequisites:
// - prdash binary installed and available in PATH
// - a SQLite fact store filled by `prdash scrape`
//
// Usage: go run benchmark/main.go [db-path] [pr-number]
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// BenchmarkResult holds the timings of one command in one output format.
type BenchmarkResult struct {
	Command  string
	Output   string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	DBPath   string
	PRNumber int
	Timeout  time.Duration
	Runs     int
	Outputs  []string
}

func main() {
	if len(os.Args) != 3 {
		fmt.Printf("Usage: %s [db-path] [pr-number]\n", os.Args[0])
		os.Exit(1)
	}
	prNumber, err := strconv.Atoi(os.Args[2])
	if err != nil || prNumber <= 0 {
		fmt.Printf("Invalid PR number %q\n", os.Args[2])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		DBPath:   os.Args[1],
		PRNumber: prNumber,
		Timeout:  time.Minute,
		Runs:     5,
		Outputs:  []string{"text", "json", "csv"},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the prdash binary and the fact store exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("prdash"); err != nil {
		return errors.New("prdash binary not found in PATH")
	}
	if _, err := os.Stat(config.DBPath); err != nil {
		return fmt.Errorf("fact store not found at %s: %w", config.DBPath, err)
	}
	return nil
}

// runBenchmarks times every read command in every output format
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	commands := [][]string{
		{"stats"},
		{"prs"},
		{"failures", strconv.Itoa(config.PRNumber)},
	}

	fmt.Printf("Starting benchmark: %s, %d runs per command, %v timeout\n", config.DBPath, config.Runs, config.Timeout)

	var results []BenchmarkResult
	for _, command := range commands {
		for _, output := range config.Outputs {
			cold, warm := runBenchmark(config, command, output)
			result := BenchmarkResult{
				Command:  command[0],
				Output:   output,
				ColdTime: formatSeconds(cold),
				WarmTime: formatSeconds(average(warm)),
			}
			fmt.Printf("  %-9s %-5s cold: %s, warm: %s\n", result.Command, output, result.ColdTime, result.WarmTime)
			results = append(results, result)
		}
	}
	return results
}

// runBenchmark executes one command config.Runs times and returns the cold time and the warm times
func runBenchmark(config BenchmarkConfig, command []string, output string) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, command...)
	args = append(args, "--output", output, "--db-backend", "sqlite", "--db-connect", config.DBPath, "--color", "no")

	var times []float64
	for run := 0; run < config.Runs; run++ {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		cmd := exec.CommandContext(ctx, "prdash", args...)
		err := cmd.Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func average(times []float64) float64 {
	if len(times) == 0 {
		return 0
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return sum / float64(len(times))
}

// formatSeconds renders a duration in seconds, or TIMEOUT when nothing succeeded
func formatSeconds(seconds float64) string {
	if seconds <= 0 {
		return "TIMEOUT"
	}
	return fmt.Sprintf("%.3fs", seconds)
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	filename := fmt.Sprintf("%s/prdash_benchmark_%s.csv", os.TempDir(), time.Now().Format("20060102_150405"))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"cmd", "output", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Command, result.Output, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the timings grouped by command
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"stats", "prs", "failures"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-5s: Cold: %s, Warm: %s\n", result.Output, result.ColdTime, result.WarmTime)
			}
		}
	}
}
