// Package team composes the Zoom, Google Calendar and Slack agents into a
// scheduling team led by a routing agent. The leader turns a user request
// into a delegation plan; the team executes the plan in order, threading
// each step's result into the next step's task.
package team

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bububa/instructor-go"
	"github.com/rs/xid"

	"github.com/bububa/atomic-agents/agents"
	"github.com/bububa/atomic-agents/components"

	"github.com/softworldpro/scheduling-team/tools/googlecalendar"
	"github.com/softworldpro/scheduling-team/tools/slack"
	"github.com/softworldpro/scheduling-team/tools/zoom"
)

// Member is a team member agent: it receives a natural language task and
// answers with a final textual result.
type Member interface {
	Run(ctx context.Context, input *Input, output *Output, llmResp *components.LLMResponse) error
	ResetMemory()
}

// Team routes user requests through the leader agent to its members.
type Team struct {
	leader  *agents.Agent[Input, RoutePlan]
	members map[AgentName]Member
	logger  *slog.Logger
}

type Option func(*Team)

func WithLogger(l *slog.Logger) Option {
	return func(t *Team) {
		t.logger = l
	}
}

// New builds the scheduling team: the three member agents around their
// tools, and the leader that delegates between them.
func New(clt instructor.Instructor, model string, zoomTool *zoom.Tool, calendarTool *googlecalendar.Tool, slackTool *slack.Tool, opts ...Option) *Team {
	t := &Team{
		members: make(map[AgentName]Member, 3),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.logger == nil {
		t.logger = slog.Default()
	}
	t.leader = newLeaderAgent(clt, model)
	t.members[ZoomMeetingManager] = newZoomAgent(clt, model, zoomTool)
	t.members[GoogleCalendarAssistant] = newCalendarAgent(clt, model, calendarTool)
	t.members[SlackCommunicationManager] = newSlackAgent(clt, model, slackTool)
	return t
}

// StepResult records one executed delegation.
type StepResult struct {
	// Agent the member the step was delegated to
	Agent AgentName `json:"agent"`
	// Task the task the leader assigned
	Task string `json:"task"`
	// Content the member's answer
	Content string `json:"content"`
}

// Response is the team's answer to a request.
type Response struct {
	// ID identifies this run
	ID string `json:"id"`
	// Content the final textual answer
	Content string `json:"content"`
	// Steps the executed delegations in order
	Steps []StepResult `json:"steps,omitempty"`
	// Usage accumulated token usage across the leader and all steps
	Usage *components.LLMUsage `json:"usage,omitempty"`
}

func (r *Response) mergeUsage(llmResp *components.LLMResponse) {
	if llmResp == nil || llmResp.Usage == nil {
		return
	}
	if r.Usage == nil {
		r.Usage = new(components.LLMUsage)
	}
	r.Usage.Merge(llmResp.Usage)
}

// Run asks the leader for a delegation plan and executes it. When the
// leader asks for clarification instead of delegating, the clarification
// question comes back as the response content with no steps executed.
func (t *Team) Run(ctx context.Context, request string) (*Response, error) {
	resp := &Response{
		ID: xid.New().String(),
	}
	plan := new(RoutePlan)
	llmResp := new(components.LLMResponse)
	if err := t.leader.Run(ctx, NewInput(request), plan, llmResp); err != nil {
		return nil, fmt.Errorf("team: leader: %w", err)
	}
	resp.mergeUsage(llmResp)
	t.logger.Info("team: plan ready", "run_id", resp.ID, "steps", len(plan.Steps))
	if len(plan.Steps) == 0 {
		if plan.Clarification == "" {
			return nil, errors.New("team: leader produced an empty plan")
		}
		resp.Content = plan.Clarification
		return resp, nil
	}
	if err := t.execute(ctx, plan, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (t *Team) execute(ctx context.Context, plan *RoutePlan, resp *Response) error {
	var prior string
	for _, step := range plan.Steps {
		member, ok := t.members[step.Agent]
		if !ok {
			return fmt.Errorf("team: no agent named %q", step.Agent)
		}
		task := step.Task
		if prior != "" {
			task = fmt.Sprintf("%s\n\nResult of the previous step:\n%s", step.Task, prior)
		}
		t.logger.Info("team: delegating", "run_id", resp.ID, "agent", step.Agent, "task", step.Task)
		out := new(Output)
		llmResp := new(components.LLMResponse)
		if err := member.Run(ctx, NewInput(task), out, llmResp); err != nil {
			return fmt.Errorf("team: agent %s: %w", step.Agent, err)
		}
		resp.mergeUsage(llmResp)
		resp.Steps = append(resp.Steps, StepResult{
			Agent:   step.Agent,
			Task:    step.Task,
			Content: out.ChatMessage,
		})
		prior = out.ChatMessage
	}
	resp.Content = prior
	return nil
}

// ResetMemory clears the chat history of every member agent.
func (t *Team) ResetMemory() {
	t.leader.ResetMemory()
	for _, member := range t.members {
		member.ResetMemory()
	}
}
