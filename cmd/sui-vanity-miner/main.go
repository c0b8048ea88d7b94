package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/screa/sui-vanity-miner/internal/config"
	"github.com/screa/sui-vanity-miner/internal/keygen"
	logpkg "github.com/screa/sui-vanity-miner/internal/logger"
	"github.com/screa/sui-vanity-miner/pkg/match"
	"github.com/screa/sui-vanity-miner/pkg/searcher"
	"github.com/screa/sui-vanity-miner/pkg/types"
	"github.com/spf13/cobra"
)

var (
	cfg        = config.NewConfig()
	configFile string
	logger     *logpkg.Logger
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "sui-vanity-miner",
		Short: "Concurrent Sui vanity address miner",
		Long: `A command line utility for mining Sui vanity addresses.
This tool generates BIP39 keypairs until the derived address matches the
requested hex prefix and/or suffix, then prints the address together with
its recovery mnemonic.`,
		Run: runSearch,
	}

	rootCmd.Flags().StringVarP(&cfg.Prefix, "prefix", "p", "", "Address prefix to match (hex, without 0x)")
	rootCmd.Flags().StringVarP(&cfg.Suffix, "suffix", "s", "", "Address suffix to match (hex)")
	rootCmd.Flags().IntVarP(&cfg.WordSize, "word-size", "w", 24, "Mnemonic word count (12, 15, 18, 21, or 24)")
	rootCmd.Flags().IntVarP(&cfg.Threads, "threads", "t", runtime.NumCPU(), "Number of worker goroutines")
	rootCmd.Flags().IntVarP(&cfg.BatchSize, "batch-size", "b", 1000, "Keys generated per worker between termination checks")
	rootCmd.Flags().IntVarP(&cfg.LogInterval, "log-interval", "i", 2, "Progress interval in seconds (default: 2)")
	rootCmd.Flags().StringVarP(&cfg.LogFile, "log-file", "l", "", "Log file for progress tracking (default: stdout)")
	rootCmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML config file (explicit flags take precedence)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runSearch(cmd *cobra.Command, args []string) {
	// Overlay config file values under explicit flags
	if configFile != "" {
		if err := applyConfigFile(cmd, configFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	mode, err := match.New(cfg.Prefix, cfg.Suffix)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	// Setup logging
	setupLogging()
	difficulty := mode.Difficulty()
	logger.Printf("Starting Sui vanity address miner with %d workers...", cfg.Threads)
	logger.Printf("Target: %s", mode.Description())
	logger.Printf("Word size: %d", cfg.WordSize)
	logger.Printf("Batch size: %d", cfg.BatchSize)
	logger.Printf("Estimated attempts needed: ~%s (1 in %s)",
		searcher.FormatNumber(difficulty), searcher.FormatNumber(difficulty))

	s := searcher.New(cfg, logger, mode, keygen.Generate)

	// Set up signal handling for Ctrl+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start searching in a goroutine
	type outcome struct {
		result *types.Result
		err    error
	}
	outcomeChan := make(chan outcome, 1)
	go func() {
		result, err := s.Run(context.Background())
		outcomeChan <- outcome{result, err}
	}()

	// Wait for either completion or signal
	select {
	case out := <-outcomeChan:
		printOutcome(out.result, out.err)
		if code := searchExitCode(out.result, out.err, false); code != 0 {
			os.Exit(code)
		}
	case <-sigChan:
		// Interrupted by Ctrl+C
		logger.Println("\nReceived interrupt signal (Ctrl+C). Stopping workers...")
		s.Stop()
		out := <-outcomeChan
		if out.result != nil {
			// A worker found a match in the same window as the signal
			printOutcome(out.result, nil)
			return
		}
		logger.Printf("Search stopped after %s attempts.", searcher.FormatNumber(s.TotalAttempts()))
		os.Exit(searchExitCode(nil, nil, true))
	}
}

// searchExitCode maps a search outcome to the process exit status: a
// found match exits zero, a failed search or an interrupted run
// without a result exits non-zero.
func searchExitCode(result *types.Result, err error, interrupted bool) int {
	if err != nil {
		return 1
	}
	if result == nil && interrupted {
		return 1
	}
	return 0
}

// printOutcome prints the final banner for a finished search.
func printOutcome(result *types.Result, err error) {
	if err != nil {
		logger.Printf("Search failed: %v", err)
		return
	}
	if result == nil {
		logger.Println("No match found.")
		return
	}

	logger.Printf("🎉 Found matching address!")
	logger.Printf("Address:  %s", result.Address)
	logger.Printf("Mnemonic: %s", result.Mnemonic)
	logger.Printf("Total attempts: %s", searcher.FormatNumber(result.Attempts))
	logger.Printf("Duration: %v", result.Duration)

	// Calculate rate safely
	rate := 0.0
	if result.Duration.Seconds() > 0 {
		rate = float64(result.Attempts) / result.Duration.Seconds()
	}
	logger.Printf("Rate: %.2f keys/sec", rate)
}

// applyConfigFile loads a YAML config and applies it to every field
// whose flag was not set explicitly on the command line.
func applyConfigFile(cmd *cobra.Command, path string) error {
	fileCfg := config.NewConfig()
	if err := fileCfg.LoadFile(path); err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("prefix") {
		cfg.Prefix = fileCfg.Prefix
	}
	if !flags.Changed("suffix") {
		cfg.Suffix = fileCfg.Suffix
	}
	if !flags.Changed("word-size") {
		cfg.WordSize = fileCfg.WordSize
	}
	if !flags.Changed("threads") {
		cfg.Threads = fileCfg.Threads
	}
	if !flags.Changed("batch-size") {
		cfg.BatchSize = fileCfg.BatchSize
	}
	if !flags.Changed("log-interval") {
		cfg.LogInterval = fileCfg.LogInterval
	}
	if !flags.Changed("log-file") {
		cfg.LogFile = fileCfg.LogFile
	}
	return nil
}

func setupLogging() {
	if cfg.LogFile != "" {
		// Log to file
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			os.Exit(1)
		}
		logger = logpkg.NewWriter(file)
		logger.SetFlags(log.LstdFlags | log.Lmicroseconds)
	} else {
		// Log to stdout
		logger = logpkg.New()
		logger.SetFlags(log.LstdFlags)
	}
}
