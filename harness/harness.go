// Package harness runs an execution spec once, N times, or for a wall-clock
// duration across a pool of workers, and aggregates per-attempt results into
// a summary.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hypernetix/rclib/domain"
	"github.com/hypernetix/rclib/logger"
	"github.com/hypernetix/rclib/ports"
	"github.com/hypernetix/rclib/scenario"
)

// SpecBuilder produces a fresh execution spec for each attempt, so per-build
// values like the uuid built-in differ between attempts.
type SpecBuilder func() domain.ExecutionSpec

// Harness dispatches execution specs and drives repeated runs.
type Harness struct {
	exec      ports.RequestExecutor
	scenarios *scenario.Runner
	handlers  ports.HandlerRegistry
	log       *slog.Logger
	out       io.Writer
	sink      func(domain.Response)
}

type Option func(*Harness)

// WithScenarioRunner sets the runner used for scenario specs. Without one,
// the harness builds a default runner over its executor.
func WithScenarioRunner(r *scenario.Runner) Option {
	return func(h *Harness) { h.scenarios = r }
}

// WithHandlerRegistry supplies the custom handlers the embedding application
// registered.
func WithHandlerRegistry(reg ports.HandlerRegistry) Option {
	return func(h *Harness) { h.handlers = reg }
}

// WithLogger routes diagnostics to the given logger.
func WithLogger(log *slog.Logger) Option {
	return func(h *Harness) { h.log = log }
}

// WithOutput redirects the summary block and status notes.
func WithOutput(w io.Writer) Option {
	return func(h *Harness) { h.out = w }
}

// WithResponseSink receives the raw response of a single (non-repeated)
// simple or scenario run, so the caller can render it. Repeated runs only
// produce the aggregate summary.
func WithResponseSink(sink func(domain.Response)) Option {
	return func(h *Harness) { h.sink = sink }
}

func New(exec ports.RequestExecutor, opts ...Option) *Harness {
	h := &Harness{
		exec: exec,
		log:  logger.Discard(),
		out:  os.Stdout,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.scenarios == nil {
		h.scenarios = scenario.NewRunner(h.exec,
			scenario.WithLogger(h.log),
			scenario.WithOutput(h.out),
		)
	}
	return h
}

// Run executes the spec according to the config's repeat options and returns
// a process exit code: 0 when every attempt succeeded, 1 otherwise.
func (h *Harness) Run(ctx context.Context, build SpecBuilder, cfg domain.ExecutionConfig) int {
	repeat := cfg.DurationMode() || cfg.Count > 1

	// Custom handlers carry imperative logic the harness cannot assume is
	// reentrant, so they are never parallelized or repeated.
	if repeat && build().Kind() == domain.SpecCustomHandler {
		h.log.Warn("custom handler commands do not support repeated execution; running once")
		repeat = false
	}

	if !repeat {
		if _, err := h.runOnce(ctx, build(), cfg.Output); err != nil {
			h.log.Error("execution failed", "error", err)
			return 1
		}
		return 0
	}

	return h.runLoop(ctx, build, cfg)
}

// runOnce dispatches a single attempt of whichever variant the spec carries.
func (h *Harness) runOnce(ctx context.Context, spec domain.ExecutionSpec, mode domain.OutputMode) (domain.Response, error) {
	switch spec.Kind() {
	case domain.SpecSimple:
		resp, err := h.exec.Do(ctx, *spec.Simple())
		if err != nil {
			return domain.Response{}, err
		}
		if h.sink != nil {
			h.sink(resp)
		}
		if !resp.OK() {
			return resp, &domain.OpError{
				Op:   "harness.run",
				Kind: domain.KindScenario,
				Err:  fmt.Errorf("request failed with status %d", resp.Status),
			}
		}
		return resp, nil

	case domain.SpecScenario:
		resp, err := h.scenarios.Run(ctx, *spec.Scenario(), mode)
		if err != nil {
			return domain.Response{}, err
		}
		if h.sink != nil {
			h.sink(resp)
		}
		return resp, nil

	case domain.SpecCustomHandler:
		hs := spec.Handler()
		if h.handlers == nil {
			return domain.Response{}, &domain.OpError{
				Op:   "harness.handler",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%w: %q (no registry configured)", domain.ErrHandlerNotFound, hs.Name),
			}
		}
		fn, ok := h.handlers.Lookup(hs.Name)
		if !ok {
			return domain.Response{}, &domain.OpError{
				Op:   "harness.handler",
				Kind: domain.KindInvalidConfig,
				Err:  fmt.Errorf("%w: %q", domain.ErrHandlerNotFound, hs.Name),
			}
		}
		return domain.Response{}, fn(hs.Vars, hs.BaseURL, mode)

	default:
		return domain.Response{}, &domain.OpError{
			Op:   "harness.run",
			Kind: domain.KindInvalidConfig,
			Err:  fmt.Errorf("unknown spec kind %d", spec.Kind()),
		}
	}
}

// runLoop drives count- or duration-bounded execution across a worker pool.
func (h *Harness) runLoop(ctx context.Context, build SpecBuilder, cfg domain.ExecutionConfig) int {
	workers := int(cfg.NormalizedConcurrency())

	var attempts atomic.Uint32
	var stop atomic.Bool
	results := make(chan domain.ExecutionResult, workers)

	durationMode := cfg.DurationMode()
	target := cfg.Count

	if durationMode {
		timer := time.AfterFunc(time.Duration(cfg.DurationSeconds)*time.Second, func() {
			stop.Store(true)
		})
		defer timer.Stop()
	}

	start := time.Now()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if ctx.Err() != nil || stop.Load() {
					return
				}
				if durationMode {
					// In-flight attempts finish and still count.
					attempts.Add(1)
				} else {
					if idx := attempts.Add(1); idx > uint32(target) {
						return
					}
				}

				began := time.Now()
				_, err := h.runOnce(ctx, build(), domain.ModeQuiet)
				results <- domain.ExecutionResult{
					Elapsed: time.Since(began),
					Success: err == nil,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var (
		total, succeeded uint
		minE, maxE, sumE time.Duration
	)
	for res := range results {
		total++
		if res.Success {
			succeeded++
		}
		if total == 1 || res.Elapsed < minE {
			minE = res.Elapsed
		}
		if res.Elapsed > maxE {
			maxE = res.Elapsed
		}
		sumE += res.Elapsed
	}
	elapsed := time.Since(start)
	failed := total - succeeded

	if cfg.Output == domain.ModeHuman {
		h.writeSummary(cfg, total, succeeded, failed, elapsed, minE, maxE, sumE)
	}
	h.log.Debug("load run finished",
		"total", total, "succeeded", succeeded, "failed", failed,
		"elapsed_ms", elapsed.Milliseconds())

	if failed > 0 {
		return 1
	}
	return 0
}

func (h *Harness) writeSummary(cfg domain.ExecutionConfig, total, succeeded, failed uint, elapsed, minE, maxE, sumE time.Duration) {
	fmt.Fprintln(h.out)
	fmt.Fprintln(h.out, "=== Execution summary ===")
	fmt.Fprintf(h.out, "Concurrency:        %d\n", cfg.NormalizedConcurrency())
	fmt.Fprintf(h.out, "Total time:         %.2fs\n", elapsed.Seconds())
	fmt.Fprintf(h.out, "Requests executed:  %d\n", total)
	if total > 0 {
		fmt.Fprintf(h.out, "Succeeded:          %d (%.1f%%)\n", succeeded, 100*float64(succeeded)/float64(total))
		fmt.Fprintf(h.out, "Failed:             %d (%.1f%%)\n", failed, 100*float64(failed)/float64(total))
		avg := sumE / time.Duration(total)
		fmt.Fprintf(h.out, "Avg/min/max:        %s / %s / %s\n", avg.Round(time.Millisecond), minE.Round(time.Millisecond), maxE.Round(time.Millisecond))
		if elapsed > 0 {
			fmt.Fprintf(h.out, "Requests per second: %.1f\n", float64(total)/elapsed.Seconds())
		}
	}
}
