package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ascend-ai/ascend/core"
	"github.com/ascend-ai/ascend/model"
)

// CoordinatorOptions configures the coordinator beyond the shared Options.
type CoordinatorOptions struct {
	Options
	// MaxCallsPerWorkflow bounds backend usage of a single workflow run.
	// Zero means unlimited.
	MaxCallsPerWorkflow int
}

// Coordinator is the central router of the system. It owns an explicit
// registry of specialized agents and dispatches coordination tasks:
// multi-step workflows, single-task routing, workflow state management and
// agent monitoring. Every agent node returns control here; there is no
// agent-to-agent branching.
//
// The registry is mutated only through Register, before dispatch begins.
type Coordinator struct {
	BaseAgent
	registry     map[string]core.Agent
	states       map[string]map[string]any
	maxCallsPerW int
}

// NewCoordinator constructs the coordinator agent.
func NewCoordinator(backend model.Model, optFns ...func(o *CoordinatorOptions)) (*Coordinator, error) {
	opts := CoordinatorOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}

	base, err := NewBaseAgent("Coordinator", backend, func(o *Options) {
		*o = opts.Options
		if o.Description == "" {
			o.Description = "Central orchestrator managing workflow and agent communication"
		}
	})
	if err != nil {
		return nil, err
	}

	return &Coordinator{
		BaseAgent:    base,
		registry:     make(map[string]core.Agent),
		states:       make(map[string]map[string]any),
		maxCallsPerW: opts.MaxCallsPerWorkflow,
	}, nil
}

// Register adds an agent to the registry. Registering the same name twice is
// a configuration mistake and fails.
func (c *Coordinator) Register(agents ...core.Agent) error {
	for _, a := range agents {
		if _, exists := c.registry[a.Name()]; exists {
			return fmt.Errorf("agent %q already registered", a.Name())
		}
		c.registry[a.Name()] = a
	}
	return nil
}

// Agent looks up a registered agent by name.
func (c *Coordinator) Agent(name string) (core.Agent, bool) {
	a, ok := c.registry[name]
	return a, ok
}

// ProcessTask dispatches a coordination task to its handler.
func (c *Coordinator) ProcessTask(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	var resp core.Response

	switch task.Type {
	case core.TaskWorkflowExecution:
		resp = c.executeWorkflow(ctx, task, taskCtx)
	case core.TaskAgentCoordination:
		resp = c.coordinateAgents(ctx, task, taskCtx)
	case core.TaskStateManagement:
		resp = c.manageState(task)
	case core.TaskPerformanceMonitoring:
		resp = c.monitorPerformance(task)
	default:
		resp = c.unknownTask(task)
	}

	c.observeTask(task, resp)
	return resp
}

// workflowStep is one decoded step of a workflow_execution task.
type workflowStep struct {
	agentName          string
	task               core.Task
	terminateOnFailure bool
}

// executeWorkflow runs ordered steps against registered agents, threading a
// state map through step metadata and bounding backend usage with a call
// limiter. The compiled envelope succeeds only when every executed step did.
func (c *Coordinator) executeWorkflow(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	workflowID := task.StringField("workflow_id", "")
	if workflowID == "" {
		workflowID = uuid.NewString()
	}

	rawSteps, ok := task.Fields["steps"].([]any)
	if !ok || len(rawSteps) == 0 {
		return c.validationFailure(task, fmt.Errorf("%w: steps", core.ErrMissingField))
	}

	steps := make([]workflowStep, 0, len(rawSteps))
	for i, raw := range rawSteps {
		step, err := decodeStep(raw)
		if err != nil {
			// Steps are numbered 1-based everywhere they surface to callers.
			return c.validationFailure(task, fmt.Errorf("step %d: %w", i+1, err))
		}
		steps = append(steps, step)
	}

	c.logger.Info("Executing workflow",
		"workflow_id", workflowID,
		"steps", len(steps),
	)

	limiter := core.NewCallLimiter(c.maxCallsPerW)
	state := c.states[workflowID]
	if state == nil {
		state = make(map[string]any)
	}
	for k, v := range taskCtx {
		state[k] = v
	}

	var (
		results  []core.Response
		summary  strings.Builder
		allOK    = true
		executed int
	)

	for i, step := range steps {
		if err := limiter.Reserve(); err != nil {
			allOK = false
			fmt.Fprintf(&summary, "step %d (%s): aborted: %v\n", i+1, step.agentName, err)
			break
		}

		target, ok := c.registry[step.agentName]
		if !ok {
			allOK = false
			results = append(results, core.NewErrorResponse(
				fmt.Errorf("agent %q not found in registry", step.agentName), nil))
			fmt.Fprintf(&summary, "step %d (%s): agent not registered\n", i+1, step.agentName)
			if step.terminateOnFailure {
				break
			}
			continue
		}

		stepResp := target.ProcessTask(ctx, step.task, state)
		results = append(results, stepResp)
		executed++

		if stepResp.Success {
			if updates, ok := stepResp.Metadata["state_updates"].(map[string]any); ok {
				for k, v := range updates {
					state[k] = v
				}
			}
			fmt.Fprintf(&summary, "step %d (%s/%s): ok\n", i+1, step.agentName, step.task.Type)
		} else {
			allOK = false
			fmt.Fprintf(&summary, "step %d (%s/%s): failed: %s\n", i+1, step.agentName, step.task.Type, stepResp.Error)
			if step.terminateOnFailure {
				break
			}
		}

		if ctx.Err() != nil {
			allOK = false
			break
		}
	}

	c.states[workflowID] = state

	metadata := map[string]any{
		"agent":          c.Name(),
		"workflow_id":    workflowID,
		"steps_executed": executed,
		"step_results":   results,
		"final_state":    state,
	}

	if !allOK {
		return core.NewErrorResponse(
			fmt.Errorf("workflow %s completed with failures", workflowID), metadata)
	}
	return core.NewResponse(strings.TrimRight(summary.String(), "\n"), metadata)
}

// coordinateAgents routes one embedded task to a named registered agent.
func (c *Coordinator) coordinateAgents(ctx context.Context, task core.Task, taskCtx map[string]any) core.Response {
	agentName, err := task.RequireString("agent")
	if err != nil {
		return c.validationFailure(task, err)
	}

	embedded, ok := task.Fields["task"].(map[string]any)
	if !ok {
		return c.validationFailure(task, fmt.Errorf("%w: task", core.ErrMissingField))
	}

	target, ok := c.registry[agentName]
	if !ok {
		return core.NewErrorResponse(
			fmt.Errorf("agent %q not found in registry", agentName),
			map[string]any{"agent": c.Name()},
		)
	}

	return target.ProcessTask(ctx, taskFromMap(embedded), taskCtx)
}

// manageState reads or merges a workflow state snapshot.
func (c *Coordinator) manageState(task core.Task) core.Response {
	workflowID, err := task.RequireString("workflow_id")
	if err != nil {
		return c.validationFailure(task, err)
	}

	state := c.states[workflowID]
	if state == nil {
		state = make(map[string]any)
		c.states[workflowID] = state
	}

	if updates := task.MapField("updates"); len(updates) > 0 {
		for k, v := range updates {
			state[k] = v
		}
	}

	encoded, err := json.Marshal(state)
	if err != nil {
		return core.NewErrorResponse(err, map[string]any{"agent": c.Name()})
	}

	return core.NewResponse(string(encoded), map[string]any{
		"agent":       c.Name(),
		"workflow_id": workflowID,
		"keys":        len(state),
	})
}

// monitorPerformance reports the status of every registered agent.
func (c *Coordinator) monitorPerformance(core.Task) core.Response {
	type reporter interface{ Status() core.Status }

	statuses := make([]core.Status, 0, len(c.registry))
	for _, a := range c.registry {
		if r, ok := a.(reporter); ok {
			statuses = append(statuses, r.Status())
		} else {
			statuses = append(statuses, core.Status{Name: a.Name(), Description: a.Description()})
		}
	}

	encoded, err := json.Marshal(statuses)
	if err != nil {
		return core.NewErrorResponse(err, map[string]any{"agent": c.Name()})
	}

	return core.NewResponse(string(encoded), map[string]any{
		"agent":  c.Name(),
		"agents": len(statuses),
	})
}

// decodeStep converts one raw workflow step into its typed form.
func decodeStep(raw any) (workflowStep, error) {
	m, ok := raw.(map[string]any)
	if !ok {
		return workflowStep{}, fmt.Errorf("step must be a mapping")
	}
	agentName, _ := m["agent"].(string)
	if agentName == "" {
		return workflowStep{}, fmt.Errorf("%w: agent", core.ErrMissingField)
	}
	embedded, ok := m["task"].(map[string]any)
	if !ok {
		return workflowStep{}, fmt.Errorf("%w: task", core.ErrMissingField)
	}
	terminate, _ := m["terminate_on_failure"].(bool)
	return workflowStep{
		agentName:          agentName,
		task:               taskFromMap(embedded),
		terminateOnFailure: terminate,
	}, nil
}

// taskFromMap rebuilds a core.Task from its decoded JSON form.
func taskFromMap(m map[string]any) core.Task {
	taskType, _ := m["type"].(string)
	fields, _ := m["fields"].(map[string]any)
	return core.NewTask(core.TaskType(taskType), fields)
}
