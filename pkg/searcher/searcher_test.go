package searcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/screa/sui-vanity-miner/internal/config"
	"github.com/screa/sui-vanity-miner/internal/logger"
	"github.com/screa/sui-vanity-miner/pkg/match"
)

func testConfig(threads, batchSize int) *config.Config {
	cfg := config.NewConfig()
	cfg.Prefix = "ab"
	cfg.WordSize = 12
	cfg.Threads = threads
	cfg.BatchSize = batchSize
	cfg.LogInterval = 1
	return cfg
}

func testLogger() *logger.Logger {
	return logger.NewWriter(io.Discard)
}

func mustPrefix(t *testing.T, p string) match.Mode {
	t.Helper()
	mode, err := match.NewPrefix(p)
	if err != nil {
		t.Fatalf("NewPrefix(%q) error: %v", p, err)
	}
	return mode
}

// matchAfter returns a stub generator that yields a matching address
// on exactly the nth call across all workers and non-matching
// addresses otherwise.
func matchAfter(n uint64, calls *atomic.Uint64) GenerateFunc {
	return func(wordCount int) (string, string, error) {
		if calls.Add(1) == n {
			return "0xab12cd34", "winning mnemonic", nil
		}
		return "0x0012cd34", "losing mnemonic", nil
	}
}

func TestRunFindsMatch(t *testing.T) {
	cfg := testConfig(1, 1)
	var calls atomic.Uint64
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(5, &calls))

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil result")
	}
	if !strings.HasPrefix(result.Address, "0xab") {
		t.Errorf("Address = %q, want 0xab prefix", result.Address)
	}
	if result.Mnemonic != "winning mnemonic" {
		t.Errorf("Mnemonic = %q, want the winning worker's", result.Mnemonic)
	}
}

func TestExactCountWithBatchOne(t *testing.T) {
	// With batchSize=1 nothing is coalesced: the counter must equal
	// the exact number of generator calls.
	cfg := testConfig(1, 1)
	var calls atomic.Uint64
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(5, &calls))

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", result.Attempts)
	}
	if got := calls.Load(); got != 5 {
		t.Errorf("generator calls = %d, want 5", got)
	}
}

func TestPartialBatchCounted(t *testing.T) {
	// A match mid-batch adds only the completed cycles of that batch.
	cfg := testConfig(1, 100)
	var calls atomic.Uint64
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(5, &calls))

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result.Attempts != 5 {
		t.Errorf("Attempts = %d, want 5", result.Attempts)
	}
}

func TestWorkersStopWithinOneBatch(t *testing.T) {
	threads, batchSize := 4, 50
	cfg := testConfig(threads, batchSize)
	var calls atomic.Uint64
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(100, &calls))

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil result")
	}

	// Losing workers may finish their current batch before observing
	// termination, never more.
	limit := uint64(100 + threads*batchSize)
	if got := calls.Load(); got > limit {
		t.Errorf("generator calls = %d, want at most %d", got, limit)
	}
	if result.Attempts > limit {
		t.Errorf("Attempts = %d, want at most %d", result.Attempts, limit)
	}
}

func TestSingleResultUnderContention(t *testing.T) {
	// Every call matches, so every worker races to report. Exactly one
	// result may come through the capacity-one channel.
	cfg := testConfig(8, 1)
	var calls atomic.Uint64
	gen := func(wordCount int) (string, string, error) {
		n := calls.Add(1)
		return "0xab12cd34", fmt.Sprintf("mnemonic %d", n), nil
	}
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), gen)

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil result")
	}
	if !strings.HasPrefix(result.Mnemonic, "mnemonic ") {
		t.Errorf("Mnemonic = %q, want one of the workers'", result.Mnemonic)
	}
}

func TestRunReturnsPromptlyAfterMatch(t *testing.T) {
	// The reporter must wake on termination instead of holding the
	// join (and so the result) until its next interval elapses.
	cfg := testConfig(1, 1)
	cfg.LogInterval = 5
	var calls atomic.Uint64
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(1, &calls))

	start := time.Now()
	result, err := s.Run(context.Background())
	elapsed := time.Since(start)

	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result == nil {
		t.Fatal("Run() returned nil result")
	}
	if elapsed > 2*time.Second {
		t.Errorf("Run() took %v, want a prompt return well under the %ds log interval", elapsed, cfg.LogInterval)
	}
}

func TestGeneratorFailureAborts(t *testing.T) {
	cfg := testConfig(4, 10)
	genErr := errors.New("entropy source broken")
	gen := func(wordCount int) (string, string, error) {
		return "", "", genErr
	}
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), gen)

	result, err := s.Run(context.Background())
	if result != nil {
		t.Fatalf("Run() result = %v, want nil", result)
	}
	if !errors.Is(err, genErr) {
		t.Fatalf("Run() error = %v, want wrapped %v", err, genErr)
	}
}

func TestStopEndsSearch(t *testing.T) {
	cfg := testConfig(2, 10)
	gen := func(wordCount int) (string, string, error) {
		return "0x0012cd34", "never matches", nil
	}
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), gen)

	go func() {
		time.Sleep(50 * time.Millisecond)
		s.Stop()
	}()

	result, err := s.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result != nil {
		t.Fatalf("Run() result = %v, want nil after Stop", result)
	}
	if s.TotalAttempts() == 0 {
		t.Error("TotalAttempts() = 0, want some progress before Stop")
	}
}

func TestContextCancelEndsSearch(t *testing.T) {
	cfg := testConfig(2, 10)
	gen := func(wordCount int) (string, string, error) {
		return "0x0012cd34", "never matches", nil
	}
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.Run(ctx)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if result != nil {
		t.Fatalf("Run() result = %v, want nil after cancel", result)
	}
}

func TestDefaultThreads(t *testing.T) {
	cfg := testConfig(0, 1)
	s := New(cfg, testLogger(), mustPrefix(t, "ab"), matchAfter(1, &atomic.Uint64{}))
	if s.config.Threads <= 0 {
		t.Errorf("Threads = %d, want positive default", s.config.Threads)
	}
}
