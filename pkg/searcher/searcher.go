package searcher

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screa/sui-vanity-miner/internal/config"
	"github.com/screa/sui-vanity-miner/internal/logger"
	"github.com/screa/sui-vanity-miner/pkg/match"
	"github.com/screa/sui-vanity-miner/pkg/types"
)

// GenerateFunc produces one candidate keypair: the derived address and
// its recovery mnemonic. It is treated as opaque; an error means the
// generator itself is broken and aborts the invoking worker.
type GenerateFunc func(wordCount int) (address, mnemonic string, err error)

// Searcher coordinates the brute-force search across a pool of
// workers.
type Searcher struct {
	config   *config.Config
	logger   *logger.Logger
	mode     match.Mode
	generate GenerateFunc
	state    State
	resultCh chan types.Result
	done     chan struct{}
	once     sync.Once
}

// New creates a new searcher instance
func New(cfg *config.Config, log *logger.Logger, mode match.Mode, generate GenerateFunc) *Searcher {
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}

	return &Searcher{
		config:   cfg,
		logger:   log,
		mode:     mode,
		generate: generate,
		resultCh: make(chan types.Result, 1),
		done:     make(chan struct{}),
	}
}

// terminate sets the shared flag workers poll between batches and
// closes the done channel that wakes the reporter. Idempotent.
func (s *Searcher) terminate() {
	s.state.MarkFound()
	s.once.Do(func() { close(s.done) })
}

// Run starts the workers and the progress reporter, blocks until a
// match is delivered or every worker has exited, then joins all of
// them. It returns nil without error when the search was stopped
// before a match. Run may be called at most once per Searcher.
func (s *Searcher) Run(ctx context.Context) (*types.Result, error) {
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < s.config.Threads; i++ {
		g.Go(func() error {
			return s.worker(ctx)
		})
	}

	reporterDone := make(chan struct{})
	go s.reportProgress(start, reporterDone)

	// Close the result channel once every worker has exited so the
	// receive below also unblocks when nothing was ever sent.
	workersDone := make(chan error, 1)
	go func() {
		workersDone <- g.Wait()
		close(s.resultCh)
	}()

	result, ok := <-s.resultCh

	// Wind down whoever is still running, then join everything. The
	// reporter wakes on the done channel, so joining it is immediate.
	s.terminate()
	err := <-workersDone
	<-reporterDone

	if !ok {
		if err != nil && !errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, nil
	}

	// Re-read after the winning worker's final add so the printed
	// total includes its partial batch.
	result.Attempts = s.state.TotalAttempts()
	result.Duration = time.Since(start)
	return &result, nil
}

// Stop asks every worker to wind down cooperatively. Each observes the
// flag within one batch. Safe to call more than once.
func (s *Searcher) Stop() {
	s.terminate()
}

// TotalAttempts returns the global attempt count so far.
func (s *Searcher) TotalAttempts() uint64 {
	return s.state.TotalAttempts()
}

// worker runs generate-and-test batches until it finds a match or
// observes termination. The flag is only re-checked between batches,
// trading cancellation latency for fewer atomic reads.
func (s *Searcher) worker(ctx context.Context) error {
	batchSize := s.config.BatchSize

	for !s.state.Found() {
		if err := ctx.Err(); err != nil {
			return err
		}

		for i := 0; i < batchSize; i++ {
			address, mnemonic, err := s.generate(s.config.WordSize)
			if err != nil {
				s.state.AddAttempts(uint64(i))
				return fmt.Errorf("generate keypair: %w", err)
			}

			if s.mode.Matches(address) {
				s.terminate()
				s.state.AddAttempts(uint64(i + 1))
				select {
				case s.resultCh <- types.Result{Address: address, Mnemonic: mnemonic}:
				default:
					// Another worker won the race in the same window;
					// only the first accepted send is observed.
				}
				return nil
			}
		}

		s.state.AddAttempts(uint64(batchSize))
	}

	return nil
}

// reportProgress emits one status line per interval: delta-based rate,
// total elapsed time and an ETA against the difficulty estimate. The
// done channel wakes it as soon as the search terminates.
func (s *Searcher) reportProgress(start time.Time, reporterDone chan<- struct{}) {
	defer close(reporterDone)

	ticker := time.NewTicker(time.Duration(s.config.LogInterval) * time.Second)
	defer ticker.Stop()

	difficulty := s.mode.Difficulty()
	lastAttempts := uint64(0)
	lastTime := start

	for {
		select {
		case <-ticker.C:
			attempts := s.state.TotalAttempts()
			now := time.Now()

			elapsed := now.Sub(lastTime).Seconds()
			rate := 0.0
			if elapsed > 0 {
				rate = float64(attempts-lastAttempts) / elapsed
			}

			eta := "calculating..."
			if attempts > 0 && rate > 0 {
				var remaining uint64
				if difficulty > attempts {
					remaining = difficulty - attempts
				}
				etaSecs := float64(remaining) / rate
				if etaSecs > math.MaxInt64/2 {
					etaSecs = math.MaxInt64 / 2
				}
				eta = FormatSeconds(uint64(etaSecs))
			}

			s.logger.Progressf("%s attempts | %s/sec | elapsed: %s | ETA: %s",
				FormatNumber(attempts),
				FormatNumber(uint64(rate)),
				FormatSeconds(uint64(now.Sub(start).Seconds())),
				eta)

			lastAttempts = attempts
			lastTime = now
		case <-s.done:
			return
		}
	}
}
