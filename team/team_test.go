package team

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/bububa/instructor-go"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/bububa/atomic-agents/components"

	"github.com/softworldpro/scheduling-team/tools/googlecalendar"
	"github.com/softworldpro/scheduling-team/tools/slack"
	"github.com/softworldpro/scheduling-team/tools/zoom"
)

type fakeMember struct {
	tasks []string
	reply func(task string) string
	err   error
}

func (m *fakeMember) Run(ctx context.Context, input *Input, output *Output, llmResp *components.LLMResponse) error {
	m.tasks = append(m.tasks, input.Request)
	if m.err != nil {
		return m.err
	}
	output.ChatMessage = m.reply(input.Request)
	llmResp.Usage = &components.LLMUsage{InputTokens: 10, OutputTokens: 5}
	return nil
}

func (m *fakeMember) ResetMemory() {}

func newFakeTeam(members map[AgentName]Member) *Team {
	return &Team{
		members: members,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExecuteThreadsStepResults(t *testing.T) {
	zoomMember := &fakeMember{reply: func(string) string {
		return "Meeting 789 scheduled, join URL https://zoom.us/j/789"
	}}
	slackMember := &fakeMember{reply: func(task string) string {
		return "Notified #all-softworldpro"
	}}
	crew := newFakeTeam(map[AgentName]Member{
		ZoomMeetingManager:        zoomMember,
		SlackCommunicationManager: slackMember,
	})
	plan := &RoutePlan{
		Steps: []RouteStep{
			{Agent: ZoomMeetingManager, Task: "Schedule a standup at 11.30 AM"},
			{Agent: SlackCommunicationManager, Task: "Notify the team about the meeting"},
		},
	}
	resp := &Response{ID: "run-1"}
	require.NoError(t, crew.execute(context.Background(), plan, resp))

	require.Len(t, resp.Steps, 2)
	assert.Equal(t, "Notified #all-softworldpro", resp.Content)
	// The second step's task carries the first step's result.
	require.Len(t, slackMember.tasks, 1)
	assert.Contains(t, slackMember.tasks[0], "Notify the team about the meeting")
	assert.Contains(t, slackMember.tasks[0], "Meeting 789 scheduled")
	// Usage accumulates across steps.
	require.NotNil(t, resp.Usage)
	assert.EqualValues(t, 20, resp.Usage.InputTokens)
	assert.EqualValues(t, 10, resp.Usage.OutputTokens)
}

func TestExecuteUnknownAgent(t *testing.T) {
	crew := newFakeTeam(map[AgentName]Member{})
	plan := &RoutePlan{
		Steps: []RouteStep{{Agent: "email-agent", Task: "send an email"}},
	}
	err := crew.execute(context.Background(), plan, &Response{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email-agent")
}

func TestExecuteMemberFailureAborts(t *testing.T) {
	failing := &fakeMember{err: fmt.Errorf("zoom: authorization unavailable")}
	after := &fakeMember{reply: func(string) string { return "should not run" }}
	crew := newFakeTeam(map[AgentName]Member{
		ZoomMeetingManager:        failing,
		SlackCommunicationManager: after,
	})
	plan := &RoutePlan{
		Steps: []RouteStep{
			{Agent: ZoomMeetingManager, Task: "List upcoming meetings"},
			{Agent: SlackCommunicationManager, Task: "Post the list"},
		},
	}
	err := crew.execute(context.Background(), plan, &Response{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), ZoomMeetingManager)
	assert.Empty(t, after.tasks)
}

func TestNewRegistersAllMembers(t *testing.T) {
	ctx := context.Background()
	clt := instructor.FromOpenAI(openai.NewClient("test-key"))
	auth := zoom.NewAuthorizer("account-id", "client-id", "client-secret")
	calendarTool, err := googlecalendar.New(ctx, googlecalendar.WithClientOptions(option.WithoutAuthentication()))
	require.NoError(t, err)

	crew := New(clt, "gpt-4", zoom.New(auth), calendarTool, slack.New("xoxb-test"))
	require.NotNil(t, crew.leader)
	for _, name := range []AgentName{ZoomMeetingManager, GoogleCalendarAssistant, SlackCommunicationManager} {
		assert.Contains(t, crew.members, name)
	}
}

// Example_schedulingTeam wires the full team against live services. It
// needs OPENAI_API_KEY plus the Zoom, Slack and Google credentials in the
// environment.
func Example_schedulingTeam() {
	ctx := context.Background()
	clt := instructor.FromOpenAI(
		openai.NewClient(os.Getenv("OPENAI_API_KEY")),
		instructor.WithMode(instructor.ModeJSON),
		instructor.WithMaxRetries(3),
		instructor.WithValidation(),
	)
	auth := zoom.NewAuthorizer(os.Getenv("ZOOM_ACCOUNT_ID"), os.Getenv("ZOOM_CLIENT_ID"), os.Getenv("ZOOM_CLIENT_SECRET"))
	calendarTool, err := googlecalendar.New(ctx, googlecalendar.WithCredentialsFile("client_secret_assistant.json"))
	if err != nil {
		fmt.Println(err)
		return
	}
	crew := New(clt, "gpt-4", zoom.New(auth), calendarTool, slack.New(os.Getenv("SLACK_TOKEN")))
	resp, err := crew.Run(ctx, "List all my upcoming Zoom meetings")
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(resp.Content)
}
