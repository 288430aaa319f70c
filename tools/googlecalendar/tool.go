package googlecalendar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/bububa/atomic-agents/schema"
	"github.com/bububa/atomic-agents/tools"
)

type Operation = string

const (
	ListEvents  Operation = "list_events"
	CreateEvent Operation = "create_event"
)

const defaultMaxResults = 10

// Input Schema for input to a tool for Google Calendar scheduling:
// retrieving upcoming events and creating new calendar events.
type Input struct {
	schema.Base
	// Operation the calendar operation to perform.
	Operation Operation `json:"operation" jsonschema:"title=operation,enum=list_events,enum=create_event,description=The Google Calendar operation to perform." validate:"required"`
	// Summary the event title. Required for create_event.
	Summary string `json:"summary,omitempty" jsonschema:"title=summary,description=The event title. Required when creating an event."`
	// Description the event description.
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The event description."`
	// Location the event location.
	Location string `json:"location,omitempty" jsonschema:"title=location,description=The event location."`
	// StartTime the event start in ISO 8601 format. Required for create_event.
	StartTime string `json:"start_time,omitempty" jsonschema:"title=start_time,description=The event start in ISO 8601 format (e.g. '2025-02-20T18:00:00+05:30'). Required when creating an event."`
	// EndTime the event end in ISO 8601 format. Required for create_event.
	EndTime string `json:"end_time,omitempty" jsonschema:"title=end_time,description=The event end in ISO 8601 format. Required when creating an event."`
	// Timezone the IANA timezone for the event times (e.g. 'Asia/Colombo').
	Timezone string `json:"timezone,omitempty" jsonschema:"title=timezone,description=The IANA timezone for the event times (e.g. 'Asia/Colombo')."`
	// Attendees email addresses to invite to the event.
	Attendees []string `json:"attendees,omitempty" jsonschema:"title=attendees,description=Email addresses to invite to the event."`
	// MaxResults the maximum number of events to return for list_events.
	MaxResults int `json:"max_results,omitempty" jsonschema:"title=max_results,description=The maximum number of events to return for list_events."`
}

func NewInput(operation Operation) *Input {
	return &Input{
		Operation: operation,
	}
}

func (s Input) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

// Event represents a Google Calendar event
type Event struct {
	// ID the event ID
	ID string `json:"id,omitempty" jsonschema:"title=id,description=The event ID."`
	// Summary the event title
	Summary string `json:"summary,omitempty" jsonschema:"title=summary,description=The event title."`
	// Description the event description
	Description string `json:"description,omitempty" jsonschema:"title=description,description=The event description."`
	// Location the event location
	Location string `json:"location,omitempty" jsonschema:"title=location,description=The event location."`
	// Start the event start time
	Start string `json:"start,omitempty" jsonschema:"title=start,description=The event start time."`
	// End the event end time
	End string `json:"end,omitempty" jsonschema:"title=end,description=The event end time."`
	// Status the event status
	Status string `json:"status,omitempty" jsonschema:"title=status,description=The event status."`
	// HTMLLink link to the event in the Google Calendar UI
	HTMLLink string `json:"html_link,omitempty" jsonschema:"title=html_link,description=Link to the event in the Google Calendar UI."`
	// Attendees email addresses invited to the event
	Attendees []string `json:"attendees,omitempty" jsonschema:"title=attendees,description=Email addresses invited to the event."`
}

// Output represents the output of the Google Calendar tool.
type Output struct {
	schema.Base
	// Message human readable confirmation of the operation outcome
	Message string `json:"message,omitempty" jsonschema:"title=message,description=Human readable confirmation of the operation outcome."`
	// Event the event created by create_event
	Event *Event `json:"event,omitempty" jsonschema:"title=event,description=The event created by the operation."`
	// Events the events returned by list_events
	Events []Event `json:"events,omitempty" jsonschema:"title=events,description=The events returned by list_events."`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

type Config struct {
	tools.Config
	calendarID      string
	credentialsFile string
	maxResults      int
	clientOptions   []option.ClientOption
	svc             *calendar.Service
	now             func() time.Time
}

// Tool manages Google Calendar events through the Calendar API.
type Tool struct {
	Config
}

func New(ctx context.Context, opts ...Option) (*Tool, error) {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("GoogleCalendarTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Tool for retrieving scheduled events from Google Calendar and creating new calendar events.")
	}
	if ret.calendarID == "" {
		ret.calendarID = "primary"
	}
	if ret.maxResults == 0 {
		ret.maxResults = defaultMaxResults
	}
	if ret.now == nil {
		ret.now = time.Now
	}
	if ret.svc == nil {
		clientOpts := make([]option.ClientOption, 0, len(ret.clientOptions)+2)
		if ret.credentialsFile != "" {
			clientOpts = append(clientOpts, option.WithCredentialsFile(ret.credentialsFile), option.WithScopes(calendar.CalendarScope))
		}
		clientOpts = append(clientOpts, ret.clientOptions...)
		svc, err := calendar.NewService(ctx, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("googlecalendar: create service: %w", err)
		}
		ret.svc = svc
	}
	return ret, nil
}

// Run runs the Google Calendar tool synchronously with the given parameters
func (t *Tool) Run(ctx context.Context, input *Input, output *Output) error {
	switch input.Operation {
	case ListEvents:
		events, err := t.listEvents(ctx, input.MaxResults)
		if err != nil {
			return err
		}
		output.Events = events
		output.Message = fmt.Sprintf("%d upcoming events", len(events))
	case CreateEvent:
		event, err := t.createEvent(ctx, input)
		if err != nil {
			return err
		}
		output.Event = event
		output.Message = fmt.Sprintf("Event %q created, starts %s", event.Summary, event.Start)
	default:
		return fmt.Errorf("googlecalendar: unknown operation %q", input.Operation)
	}
	return nil
}

// RunOrchestration returns tool results based on input for orchestration
func (t *Tool) RunOrchestration(ctx context.Context, input any) (any, error) {
	in, ok := input.(*Input)
	if !ok {
		return nil, errors.New("invalid tool input schema")
	}
	out := new(Output)
	if err := t.Run(ctx, in, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tool) listEvents(ctx context.Context, maxResults int) ([]Event, error) {
	if maxResults <= 0 {
		maxResults = t.maxResults
	}
	res, err := t.svc.Events.List(t.calendarID).
		ShowDeleted(false).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(t.now().Format(time.RFC3339)).
		MaxResults(int64(maxResults)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: list events: %w", err)
	}
	events := make([]Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromAPIEvent(item))
	}
	return events, nil
}

func (t *Tool) createEvent(ctx context.Context, input *Input) (*Event, error) {
	if input.Summary == "" {
		return nil, errors.New("googlecalendar: create_event requires a summary")
	}
	if input.StartTime == "" || input.EndTime == "" {
		return nil, errors.New("googlecalendar: create_event requires start_time and end_time")
	}
	ev := &calendar.Event{
		Summary:     input.Summary,
		Description: input.Description,
		Location:    input.Location,
		Start: &calendar.EventDateTime{
			DateTime: input.StartTime,
			TimeZone: input.Timezone,
		},
		End: &calendar.EventDateTime{
			DateTime: input.EndTime,
			TimeZone: input.Timezone,
		},
	}
	for _, email := range input.Attendees {
		ev.Attendees = append(ev.Attendees, &calendar.EventAttendee{Email: email})
	}
	created, err := t.svc.Events.Insert(t.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("googlecalendar: create event: %w", err)
	}
	event := fromAPIEvent(created)
	return &event, nil
}

func fromAPIEvent(item *calendar.Event) Event {
	event := Event{
		ID:          item.Id,
		Summary:     item.Summary,
		Description: item.Description,
		Location:    item.Location,
		Status:      item.Status,
		HTMLLink:    item.HtmlLink,
	}
	if item.Start != nil {
		event.Start = item.Start.DateTime
		if event.Start == "" {
			event.Start = item.Start.Date
		}
	}
	if item.End != nil {
		event.End = item.End.DateTime
		if event.End == "" {
			event.End = item.End.Date
		}
	}
	for _, att := range item.Attendees {
		event.Attendees = append(event.Attendees, att.Email)
	}
	return event
}
