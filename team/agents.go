package team

import (
	"fmt"
	"time"

	"github.com/bububa/instructor-go"

	"github.com/bububa/atomic-agents/agents"
	"github.com/bububa/atomic-agents/components/systemprompt/cot"

	"github.com/softworldpro/scheduling-team/tools/googlecalendar"
	"github.com/softworldpro/scheduling-team/tools/slack"
	"github.com/softworldpro/scheduling-team/tools/zoom"
)

const (
	agentTemperature = 0.2
	agentMaxTokens   = 1024
)

func newZoomAgent(clt instructor.Instructor, model string, tool *zoom.Tool) Member {
	gen := cot.New(
		cot.WithBackground([]string{
			"- You are an expert at managing Zoom meetings using the Zoom API.",
			"- You can schedule new meetings (schedule_meeting), get meeting details (get_meeting), list all meetings (list_meetings), get upcoming meetings (get_upcoming_meetings), delete meetings (delete_meeting) and get meeting recordings (get_meeting_recordings).",
			"- For recordings, you can retrieve recordings for any past meeting using the meeting ID, include download tokens if needed, and get recording details like duration, size, download link and file types.",
		}),
		cot.WithSteps([]string{
			"- Map the request to exactly one Zoom operation and fill in its parameters.",
			"- Use ISO 8601 format for dates (e.g. '2024-12-28T10:00:00Z').",
			"- Ensure meeting times are in the future.",
			"- Compose the final answer from the tool results.",
		}),
		cot.WithOutputInstructs([]string{
			"- Provide meeting details after scheduling (ID, URL, time).",
			"- Handle errors gracefully.",
			"- Confirm successful operations.",
		}),
	)
	agent := agents.NewToolAgent[Input, zoom.Input, Output](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithName("Zoom Meeting Manager"),
		agents.WithSystemPromptGenerator(gen),
		agents.WithTemperature(agentTemperature),
		agents.WithMaxTokens(agentMaxTokens),
	)
	agent.SetTool(tool)
	return agent
}

func newCalendarAgent(clt instructor.Instructor, model string, tool *googlecalendar.Tool) Member {
	gen := cot.New(
		cot.WithBackground([]string{
			"- You are a scheduling assistant for the user's Google Calendar.",
		}),
		cot.WithSteps([]string{
			"- Retrieve scheduled events from Google Calendar (list_events) or create new calendar events based on user input (create_event).",
			"- Resolve relative dates against the current datetime and the user's timezone.",
			"- Compose the final answer from the tool results.",
		}),
		cot.WithContextProviders(datetimeProvider{now: time.Now}),
	)
	agent := agents.NewToolAgent[Input, googlecalendar.Input, Output](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithName("Google Calendar Assistant"),
		agents.WithSystemPromptGenerator(gen),
		agents.WithTemperature(agentTemperature),
		agents.WithMaxTokens(agentMaxTokens),
	)
	agent.SetTool(tool)
	return agent
}

func newSlackAgent(clt instructor.Instructor, model string, tool *slack.Tool) Member {
	gen := cot.New(
		cot.WithBackground([]string{
			"- You are responsible for managing Slack communications.",
			"- You can send messages to Slack channels or users, retrieve recent Slack messages from a specific channel, get a list of Slack channels and members, and notify users about upcoming meetings.",
		}),
		cot.WithSteps([]string{
			"- Map the request to exactly one Slack operation and fill in its parameters.",
			"- Ensure messages are formatted correctly in Markdown when needed.",
		}),
		cot.WithOutputInstructs([]string{
			"- Confirm successful message delivery and provide response summaries.",
			"- Use clear and concise messaging to improve communication.",
		}),
	)
	agent := agents.NewToolAgent[Input, slack.Input, Output](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithName("Slack Communication Manager"),
		agents.WithSystemPromptGenerator(gen),
		agents.WithTemperature(agentTemperature),
		agents.WithMaxTokens(agentMaxTokens),
	)
	agent.SetTool(tool)
	return agent
}

func newLeaderAgent(clt instructor.Instructor, model string) *agents.Agent[Input, RoutePlan] {
	gen := cot.New(
		cot.WithBackground([]string{
			"- You are responsible for delegating tasks to the appropriate agent(s) in the Scheduling Team.",
			"- Your goal is to optimize performance by selecting the correct agent(s) for each request while minimizing unnecessary API calls.",
		}),
		cot.WithSteps([]string{
			"- If the request is ONLY about Zoom meetings (scheduling, listing, retrieving recordings, etc.), delegate to the zoom-meeting-manager and ignore the other agents.",
			"- If the request is ONLY about Google Calendar (getting events, adding events, modifying events), delegate to the google-calendar-assistant and ignore the other agents.",
			"- If the request is ONLY about Slack (sending messages, retrieving messages, notifying users), delegate to the slack-communication-manager and ignore the other agents.",
			"- If the request involves BOTH Zoom and Google Calendar (e.g. scheduling a Zoom meeting and adding it to Google Calendar), first delegate to the zoom-meeting-manager, then pass the meeting details on to the google-calendar-assistant as a following step.",
			"- If the request involves notifying users on Slack after scheduling a Zoom meeting or adding a Google Calendar event, complete the scheduling step(s) first, then pass the relevant details to the slack-communication-manager as the final step.",
		}),
		cot.WithOutputInstructs([]string{
			"- Select the fewest agents that can complete the request.",
			"- Give each selected agent a precise, self-contained task.",
			"- If a task is unclear, leave the steps empty and ask for clarification instead of delegating.",
		}),
	)
	return agents.NewAgent[Input, RoutePlan](
		agents.WithClient(clt),
		agents.WithModel(model),
		agents.WithName("Team Leader"),
		agents.WithSystemPromptGenerator(gen),
		agents.WithTemperature(agentTemperature),
		agents.WithMaxTokens(agentMaxTokens),
	)
}

// datetimeProvider injects the current datetime and local timezone into a
// system prompt so relative dates in requests resolve correctly.
type datetimeProvider struct {
	now func() time.Time
}

func (p datetimeProvider) Title() string {
	return "Current datetime"
}

func (p datetimeProvider) Info() string {
	now := p.now()
	zone, _ := now.Zone()
	return fmt.Sprintf("Today is %s and the user's timezone is %s.", now.Format(time.RFC3339), zone)
}
