// Package ascend provides a high-level façade over the multi-agent academic
// assistant: a coordinator routing typed tasks to a planner, a notewriter and
// an advisor, all sharing one backend model and one retry policy. Most
// applications interact with this package by:
//  1. Creating an Ascend via New() with a backend model (optionally
//     overriding the default in-memory history, logger or retry policy)
//  2. Dispatching typed tasks (ProcessTask) or routing through the
//     coordinator (Dispatch)
//
// All defaults are safe for local development and testing; production
// deployments typically supply a durable history store and a structured
// logger.
package ascend

import (
	"context"
	"fmt"

	"github.com/ascend-ai/ascend/agent"
	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/history"
	"github.com/ascend-ai/ascend/logging"
	"github.com/ascend-ai/ascend/metrics"
	"github.com/ascend-ai/ascend/model"
)

// Options configures the Ascend instance.
type Options struct {
	// RetryPolicy governs every agent's request executor. Defaults to
	// core.DefaultRetryPolicy.
	RetryPolicy core.RetryPolicy

	// History persists completed operations per student. Defaults to an
	// in-memory store.
	History core.HistoryStore

	// Logger receives structured logs from every agent. Defaults to NoOp.
	Logger logging.Logger

	// Metrics receives fire-and-forget observations. Nil disables them.
	Metrics *metrics.Metrics

	// MaxCallsPerWorkflow bounds backend usage of a single coordinator
	// workflow run. Zero means unlimited.
	MaxCallsPerWorkflow int
}

// Ascend is the high-level façade aggregating the coordinator and the
// specialized agents.
type Ascend struct {
	opts        Options
	coordinator *agent.Coordinator
	planner     *agent.Planner
	notewriter  *agent.Notewriter
	advisor     *agent.Advisor
}

// New creates an Ascend instance over the given backend model. Construction
// is the only place errors surface as errors; once built, every operation
// answers with a result envelope.
func New(backend model.Model, optFns ...func(o *Options)) (*Ascend, error) {
	opts := Options{
		RetryPolicy: core.DefaultRetryPolicy(),
		History:     history.NewInMemoryStore(),
		Logger:      logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	agentOpts := func(o *agent.Options) {
		o.RetryPolicy = opts.RetryPolicy
		o.Logger = opts.Logger
		o.Metrics = opts.Metrics
		o.History = opts.History
	}

	planner, err := agent.NewPlanner(backend, agentOpts)
	if err != nil {
		return nil, fmt.Errorf("build planner: %w", err)
	}
	notewriter, err := agent.NewNotewriter(backend, agentOpts)
	if err != nil {
		return nil, fmt.Errorf("build notewriter: %w", err)
	}
	advisor, err := agent.NewAdvisor(backend, agentOpts)
	if err != nil {
		return nil, fmt.Errorf("build advisor: %w", err)
	}

	coordinator, err := agent.NewCoordinator(backend, func(o *agent.CoordinatorOptions) {
		agentOpts(&o.Options)
		o.MaxCallsPerWorkflow = opts.MaxCallsPerWorkflow
	})
	if err != nil {
		return nil, fmt.Errorf("build coordinator: %w", err)
	}
	if err := coordinator.Register(planner, notewriter, advisor); err != nil {
		return nil, err
	}

	return &Ascend{
		opts:        opts,
		coordinator: coordinator,
		planner:     planner,
		notewriter:  notewriter,
		advisor:     advisor,
	}, nil
}

// ProcessTask dispatches a typed task directly to a named agent. The
// coordinator itself answers to "Coordinator".
func (a *Ascend) ProcessTask(ctx context.Context, agentName string, task core.Task, taskCtx map[string]any) core.Response {
	if agentName == a.coordinator.Name() {
		return a.coordinator.ProcessTask(ctx, task, taskCtx)
	}
	target, ok := a.coordinator.Agent(agentName)
	if !ok {
		return core.NewErrorResponse(
			fmt.Errorf("agent %q not found in registry", agentName), nil)
	}
	return target.ProcessTask(ctx, task, taskCtx)
}

// Dispatch routes a task through the coordinator, which handles workflow
// execution, routing, state and monitoring task types.
func (a *Ascend) Dispatch(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	return a.coordinator.ProcessTask(ctx, task, taskCtx)
}

// History returns the configured history store.
func (a *Ascend) History() core.HistoryStore { return a.opts.History }

// Coordinator returns the coordinator agent for direct use.
func (a *Ascend) Coordinator() *agent.Coordinator { return a.coordinator }

// Planner returns the planner agent for direct use.
func (a *Ascend) Planner() *agent.Planner { return a.planner }

// Notewriter returns the notewriter agent for direct use.
func (a *Ascend) Notewriter() *agent.Notewriter { return a.notewriter }

// Advisor returns the advisor agent for direct use.
func (a *Ascend) Advisor() *agent.Advisor { return a.advisor }

// HealthCheck verifies backend connectivity through the coordinator.
func (a *Ascend) HealthCheck(ctx context.Context) bool {
	return a.coordinator.HealthCheck(ctx)
}
