package team

import (
	"encoding/json"

	"github.com/bububa/atomic-agents/schema"
)

// AgentName identifies a member of the scheduling team.
type AgentName = string

const (
	ZoomMeetingManager        AgentName = "zoom-meeting-manager"
	GoogleCalendarAssistant   AgentName = "google-calendar-assistant"
	SlackCommunicationManager AgentName = "slack-communication-manager"
)

// Input carries a natural language request for the team or one of its
// agents.
type Input struct {
	schema.Base
	// Request the user request in natural language.
	Request string `json:"request" jsonschema:"title=request,description=The user request in natural language." validate:"required"`
}

func NewInput(request string) *Input {
	return &Input{
		Request: request,
	}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Output is the final textual answer produced by an agent.
type Output struct {
	schema.Base
	// ChatMessage the answer to the request, Markdown formatted.
	ChatMessage string `json:"chat_message" jsonschema:"title=chat_message,description=The answer to the request in Markdown format." validate:"required"`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// RouteStep is a single delegation decided by the team leader.
type RouteStep struct {
	// Agent the team member the task is delegated to.
	Agent AgentName `json:"agent" jsonschema:"title=agent,enum=zoom-meeting-manager,enum=google-calendar-assistant,enum=slack-communication-manager,description=The team member the task is delegated to." validate:"required"`
	// Task the task for the selected agent, in natural language.
	Task string `json:"task" jsonschema:"title=task,description=The task for the selected agent in natural language." validate:"required"`
}

// RoutePlan is the team leader's delegation plan: the selected agents in
// execution order, each with its task. When the request is too unclear to
// delegate the plan carries a clarification question instead.
type RoutePlan struct {
	schema.Base
	// Steps the delegations to perform, in order.
	Steps []RouteStep `json:"steps,omitempty" jsonschema:"title=steps,description=The delegations to perform in order."`
	// Clarification a question back to the user when the request is too unclear to delegate.
	Clarification string `json:"clarification,omitempty" jsonschema:"title=clarification,description=A question back to the user when the request is too unclear to delegate."`
}

func (s RoutePlan) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}
