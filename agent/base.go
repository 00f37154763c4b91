package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/logging"
	"github.com/ascend-ai/ascend/metrics"
	"github.com/ascend-ai/ascend/model"
)

// Options configures an agent instance. Use functional options with the
// agent constructors to override defaults.
type Options struct {
	// Description overrides the generated agent description used in the
	// system prompt and status reports.
	Description string
	// Instruction replaces the default system prompt entirely.
	Instruction string
	// RetryPolicy governs the request executor. Defaults to
	// core.DefaultRetryPolicy.
	RetryPolicy core.RetryPolicy
	// Logger receives retry, failure and task logs. Defaults to NoOp.
	Logger logging.Logger
	// Metrics receives fire-and-forget observations. Nil disables them.
	Metrics *metrics.Metrics
	// History receives one record per completed operation. Nil disables
	// persistence.
	History core.HistoryStore
}

// domainLogger is the richer reporting surface of logging.AscendLogger.
// When the configured Logger provides it, the executor reports model calls,
// retries and task outcomes through it instead of the plain level methods.
type domainLogger interface {
	LogModelCall(model string, attempt int, dur time.Duration, success bool, err error)
	LogRetry(agent string, attempt int, err error)
	LogTaskExecution(agent string, taskType string, dur time.Duration, success bool, err error)
}

// BaseAgent bundles the request executor shared by every agent: prompt
// preparation, the bounded retry loop around the backend, envelope
// production and observability reporting. Embed it in concrete agents and
// supply ProcessTask to satisfy core.Agent.
//
// All fields are set at construction and never mutated, so the executor is
// safe for concurrent use; the specialized agents layer their own
// single-owner state on top.
type BaseAgent struct {
	name        string
	description string
	instruction string
	backend     model.Model
	policy      core.RetryPolicy
	logger      logging.Logger
	domain      domainLogger
	metrics     *metrics.Metrics
	history     core.HistoryStore
}

// NewBaseAgent constructs the shared agent core. A nil backend or an invalid
// retry policy is a configuration error and fails here — construction is the
// only place errors are raised rather than wrapped in envelopes.
func NewBaseAgent(name string, backend model.Model, optFns ...func(o *Options)) (BaseAgent, error) {
	opts := Options{
		Description: fmt.Sprintf("Agent %s", name),
		RetryPolicy: core.DefaultRetryPolicy(),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if backend == nil {
		return BaseAgent{}, fmt.Errorf("agent %s: no backend model configured", name)
	}
	if err := opts.RetryPolicy.Validate(); err != nil {
		return BaseAgent{}, fmt.Errorf("agent %s: %w", name, err)
	}

	b := BaseAgent{
		name:        name,
		description: opts.Description,
		instruction: opts.Instruction,
		backend:     backend,
		policy:      opts.RetryPolicy,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		history:     opts.History,
	}
	if dl, ok := opts.Logger.(domainLogger); ok {
		b.domain = dl
	}

	b.logger.Info("Agent initialized",
		"agent", name,
		"provider", backend.Info().Provider,
		"max_retries", opts.RetryPolicy.MaxRetries,
		"timeout", opts.RetryPolicy.Timeout,
	)

	return b, nil
}

// Name returns the human-readable name for this agent.
func (b *BaseAgent) Name() string { return b.name }

// Description returns a detailed description of this agent's purpose.
func (b *BaseAgent) Description() string { return b.description }

// Capabilities returns the capability descriptions of this agent.
func (b *BaseAgent) Capabilities() []string { return []string{b.description} }

// Policy returns the immutable retry policy governing this agent.
func (b *BaseAgent) Policy() core.RetryPolicy { return b.policy }

// Status reports a point-in-time snapshot for monitoring.
func (b *BaseAgent) Status() core.Status {
	return core.Status{
		Name:        b.name,
		Description: b.description,
		Provider:    b.backend.Info().Provider,
		MaxRetries:  b.policy.MaxRetries,
		Timeout:     b.policy.Timeout.String(),
	}
}

// ProcessMessage executes one logical backend request: it prepares the
// role-tagged prompt, calls the backend under the per-attempt timeout, and
// retries on timeout or any other error up to MaxRetries times with a fixed
// delay between attempts. Timeouts and other backend errors are deliberately
// retried identically — the uniform-retry behavior of the policy is part of
// the contract even where a stricter policy might skip non-retriable faults.
//
// The returned envelope is the only outcome: success carries the backend
// text plus the 1-based attempt number in metadata, exhaustion carries the
// last attempt's error text. Cancelling ctx aborts the in-flight attempt and
// skips any pending retry delay.
func (b *BaseAgent) ProcessMessage(ctx context.Context, message string, taskCtx map[string]any) core.Response {
	start := time.Now()
	messages := b.prepareMessages(message, taskCtx)

	var content string
	attempt := 0

	err := retry.Do(
		func() error {
			attempt++
			b.metrics.ObserveAttempt(b.name)

			attemptCtx, cancel := context.WithTimeout(ctx, b.policy.Timeout)
			defer cancel()

			attemptStart := time.Now()
			resp, err := b.backend.Complete(attemptCtx, model.Request{Messages: messages})
			if b.domain != nil {
				b.domain.LogModelCall(b.backend.Info().Name, attempt, time.Since(attemptStart), err == nil, err)
			}
			if err != nil {
				return err
			}
			content = resp.Content
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(b.policy.Attempts())),
		retry.Delay(b.policy.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			// n is the zero-based index of the attempt that just failed; a
			// retry only follows when the budget is not yet exhausted.
			if int(n) < b.policy.MaxRetries {
				b.metrics.ObserveRetry(b.name)
				if b.domain != nil {
					b.domain.LogRetry(b.name, int(n)+1, err)
				} else {
					b.logger.Warn("Agent error, retrying",
						"agent", b.name,
						"attempt", n+1,
						"error", err.Error(),
					)
				}
			}
		}),
	)

	elapsed := time.Since(start)
	b.metrics.ObserveDuration(b.name, elapsed)

	if err != nil {
		b.metrics.ObserveFailure(b.name)
		b.logger.Error("Agent request exhausted all attempts",
			"agent", b.name,
			"attempts", attempt,
			"error", err.Error(),
		)
		return core.NewErrorResponse(err, map[string]any{
			"agent":   b.name,
			"context": taskCtx,
		}).WithExecutionTime(elapsed)
	}

	return core.NewResponse(content, map[string]any{
		"agent":   b.name,
		"attempt": attempt,
		"context": taskCtx,
	}).WithExecutionTime(elapsed)
}

// prepareMessages assembles the backend prompt: system instruction, optional
// rendered context block, then the caller's message.
func (b *BaseAgent) prepareMessages(message string, taskCtx map[string]any) []core.Message {
	instruction := b.instruction
	if instruction == "" {
		instruction = fmt.Sprintf(`You are %s, %s.

Your role is to assist students with their academic needs by providing personalized support and guidance.

Please be helpful, accurate, and supportive in your responses.`, b.name, b.description)
	}

	messages := []core.Message{core.SystemMessage(instruction)}
	if ctxMsg, ok := core.ContextMessage(taskCtx); ok {
		messages = append(messages, ctxMsg)
	}
	return append(messages, core.UserMessage(message))
}

// HealthCheck verifies backend connectivity with a trivial prompt.
func (b *BaseAgent) HealthCheck(ctx context.Context) bool {
	resp := b.ProcessMessage(ctx, "Hello, this is a health check.", nil)
	return resp.Success
}

// validationFailure converts a missing-field error into a failure envelope.
// Validation failures are detected before any backend call and never
// retried.
func (b *BaseAgent) validationFailure(task core.Task, err error) core.Response {
	b.logger.Warn("Task validation failed",
		"agent", b.name,
		"task_type", string(task.Type),
		"error", err.Error(),
	)
	return core.NewErrorResponse(err, map[string]any{
		"agent": b.name,
		"task":  string(task.Type),
	})
}

// unknownTask converts an unmatched type tag into a failure envelope. Logged
// as a warning since it indicates caller misuse, not system malfunction.
func (b *BaseAgent) unknownTask(task core.Task) core.Response {
	err := task.UnknownTypeError()
	b.logger.Warn("Unknown task type",
		"agent", b.name,
		"task_type", string(task.Type),
	)
	return core.NewErrorResponse(err, map[string]any{
		"agent": b.name,
	})
}

// observeTask reports a completed dispatch to the metrics sink and, when the
// logger carries the domain surface, as a structured task record.
func (b *BaseAgent) observeTask(task core.Task, resp core.Response) {
	b.metrics.ObserveTask(b.name, string(task.Type), resp.Success)
	if b.domain != nil {
		var taskErr error
		if resp.Error != "" {
			taskErr = errors.New(resp.Error)
		}
		b.domain.LogTaskExecution(b.name, string(task.Type), resp.ExecutionTime, resp.Success, taskErr)
	}
}

// record appends one history record for a completed operation. Persistence
// is best effort: a failing store is logged and otherwise ignored so it can
// never affect the envelope already produced.
func (b *BaseAgent) record(ctx context.Context, ownerID string, kind core.RecordKind, task core.Task, input string, resp core.Response) {
	if b.history == nil || ownerID == "" {
		return
	}

	rec := core.NewRecord(ownerID, kind, task.Type)
	rec.Input = input
	rec.Output = resp.Content
	rec.Success = resp.Success
	rec.Error = resp.Error
	rec.Duration = resp.ExecutionTime

	if err := b.history.Append(ctx, rec); err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Failed to append history record",
			"agent", b.name,
			"owner_id", ownerID,
			"error", err.Error(),
		)
	}
}
