// Package scenario drives the schedule-then-poll workflow: execute the
// schedule step, extract variables, then poll until a completion condition
// or the deadline fires.
package scenario

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hypernetix/rclib/domain"
	"github.com/hypernetix/rclib/logger"
	"github.com/hypernetix/rclib/ports"
	"github.com/hypernetix/rclib/template"
)

// Runner executes scenarios against an injected request executor. The clock
// and sleep function are injectable so polling is testable without waiting.
type Runner struct {
	exec  ports.RequestExecutor
	log   *slog.Logger
	out   io.Writer
	sleep func(time.Duration)
	now   func() time.Time
}

type Option func(*Runner)

// WithLogger routes diagnostics to the given logger.
func WithLogger(log *slog.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithOutput redirects human-oriented status notes.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithSleep overrides the poll-interval sleep (useful for tests).
func WithSleep(sleep func(time.Duration)) Option {
	return func(r *Runner) { r.sleep = sleep }
}

// WithClock overrides the clock (useful for tests).
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

func NewRunner(exec ports.RequestExecutor, opts ...Option) *Runner {
	r := &Runner{
		exec:  exec,
		log:   logger.Discard(),
		out:   os.Stdout,
		sleep: time.Sleep,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the scenario and returns the final poll response. The
// returned error carries the terminal state: nil for success, a
// scenario-kinded error for an error condition or failed extraction, a
// timeout-kinded error when the polling deadline passes. The caller renders
// the final body.
func (r *Runner) Run(ctx context.Context, spec domain.ScenarioSpec, mode domain.OutputMode) (domain.Response, error) {
	if err := spec.Scenario.Validate(); err != nil {
		return domain.Response{}, err
	}

	vars := spec.Vars.Clone()
	schedule := spec.Scenario.Steps[0]
	poll := spec.Scenario.Steps[1]

	resp, err := r.runStep(ctx, spec.BaseURL, schedule, vars)
	if err != nil {
		return domain.Response{}, err
	}
	if err := Apply([]byte(resp.Body), schedule.Extract, vars); err != nil {
		return domain.Response{}, err
	}

	if mode == domain.ModeHuman {
		if jobID, ok := vars["job_id"]; ok {
			fmt.Fprintf(r.out, "Job scheduled with ID: %s\n", jobID)
		}
		fmt.Fprintln(r.out, "Waiting for job to complete...")
	}

	policy := poll.Polling
	deadline := r.now().Add(time.Duration(policy.TimeoutSeconds) * time.Second)

	for {
		if err := ctx.Err(); err != nil {
			return domain.Response{}, err
		}
		if r.now().After(deadline) {
			return domain.Response{}, &domain.OpError{
				Op:   "scenario.poll",
				Kind: domain.KindTimeout,
				Err:  fmt.Errorf("polling timeout after %d seconds", policy.TimeoutSeconds),
			}
		}

		// Re-substitute from the current bindings every iteration so
		// extracted variables like the job id are visible.
		resp, err := r.runStep(ctx, spec.BaseURL, poll, vars)
		if err != nil {
			return domain.Response{}, err
		}

		doc, err := parseJSON([]byte(resp.Body))
		if err != nil {
			return domain.Response{}, &domain.OpError{
				Op:   "scenario.poll",
				Kind: domain.KindParse,
				Err:  fmt.Errorf("polling response is not valid JSON: %w", err),
			}
		}

		status, _ := field(doc, "status").(string)
		for _, cond := range policy.CompletionConditions {
			if status == "" || status != cond.Status {
				continue
			}
			switch cond.Action {
			case domain.ActionSuccess:
				if mode == domain.ModeHuman {
					fmt.Fprintln(r.out, "Operation completed successfully")
				}
				return resp, nil
			case domain.ActionError:
				return resp, &domain.OpError{
					Op:   "scenario.poll",
					Kind: domain.KindScenario,
					Err:  fmt.Errorf("%s", errorMessage(doc, cond)),
				}
			default:
				return domain.Response{}, &domain.OpError{
					Op:   "scenario.poll",
					Kind: domain.KindInvalidConfig,
					Err:  fmt.Errorf("unknown completion action: %q", cond.Action),
				}
			}
		}

		if mode == domain.ModeHuman {
			if progress, ok := field(doc, "progress").(float64); ok {
				fmt.Fprintf(r.out, "\rProgress: %.1f%%", progress)
			}
		}
		r.log.Debug("poll iteration", "status", status)

		r.sleep(time.Duration(policy.IntervalSeconds) * time.Second)
	}
}

// runStep builds the step's descriptor from the current bindings and
// executes it. Any non-2xx response aborts the scenario.
func (r *Runner) runStep(ctx context.Context, baseURL string, step domain.Step, vars domain.Vars) (domain.Response, error) {
	var body *string
	if step.Body != nil {
		b := template.Substitute(*step.Body, vars)
		body = &b
	}
	desc := domain.RequestDescriptor{
		BaseURL:  baseURL,
		Method:   step.Method,
		Endpoint: template.Substitute(step.Endpoint, vars),
		Headers:  template.SubstituteHeaders(step.Headers, vars),
		Body:     body,
	}

	resp, err := r.exec.Do(ctx, desc)
	if err != nil {
		return domain.Response{}, err
	}
	if !resp.OK() {
		return domain.Response{}, &domain.OpError{
			Op:   "scenario." + step.Name,
			Kind: domain.KindScenario,
			Err:  fmt.Errorf("step %q failed with status %d: %s", step.Name, resp.Status, resp.Body),
		}
	}
	return resp, nil
}

// errorMessage resolves the failure text for an error condition: the
// error_field JSONPath when present, else the static error_message, else a
// generic fallback.
func errorMessage(doc any, cond domain.CompletionCondition) string {
	if cond.ErrorField != nil {
		if msg, ok := Lookup(doc, *cond.ErrorField); ok {
			return msg
		}
	}
	if cond.ErrorMessage != nil {
		return *cond.ErrorMessage
	}
	return "operation failed"
}

func field(doc any, name string) any {
	m, ok := doc.(map[string]any)
	if !ok {
		return nil
	}
	return m[name]
}
