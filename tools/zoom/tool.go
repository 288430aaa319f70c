package zoom

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/bububa/atomic-agents/schema"
	"github.com/bububa/atomic-agents/tools"
)

type Operation = string

const (
	ScheduleMeeting      Operation = "schedule_meeting"
	GetMeeting           Operation = "get_meeting"
	ListMeetings         Operation = "list_meetings"
	GetUpcomingMeetings  Operation = "get_upcoming_meetings"
	DeleteMeeting        Operation = "delete_meeting"
	GetMeetingRecordings Operation = "get_meeting_recordings"
)

// scheduledMeetingType is the Zoom meeting type for a meeting with a fixed
// start time.
const scheduledMeetingType = 2

// Input Schema for input to a tool for managing Zoom meetings: scheduling,
// retrieving, listing and deleting meetings, and fetching cloud recordings.
type Input struct {
	schema.Base
	// Operation the meeting operation to perform.
	Operation Operation `json:"operation" jsonschema:"title=operation,enum=schedule_meeting,enum=get_meeting,enum=list_meetings,enum=get_upcoming_meetings,enum=delete_meeting,enum=get_meeting_recordings,description=The Zoom meeting operation to perform." validate:"required"`
	// Topic the meeting topic. Required for schedule_meeting.
	Topic string `json:"topic,omitempty" jsonschema:"title=topic,description=The meeting topic. Required when scheduling a meeting."`
	// StartTime the meeting start time in ISO 8601 format (e.g. '2024-12-28T10:00:00Z'). Required for schedule_meeting.
	StartTime string `json:"start_time,omitempty" jsonschema:"title=start_time,description=The meeting start time in ISO 8601 format (e.g. '2024-12-28T10:00:00Z'). Must be in the future."`
	// Duration the meeting duration in minutes.
	Duration int `json:"duration,omitempty" jsonschema:"title=duration,description=The meeting duration in minutes."`
	// Timezone the timezone for the meeting start time (e.g. 'Asia/Colombo').
	Timezone string `json:"timezone,omitempty" jsonschema:"title=timezone,description=The timezone for the meeting start time (e.g. 'Asia/Colombo')."`
	// Agenda the meeting agenda.
	Agenda string `json:"agenda,omitempty" jsonschema:"title=agenda,description=The meeting agenda."`
	// MeetingID the numeric meeting ID. Required for get_meeting, delete_meeting and get_meeting_recordings.
	MeetingID int64 `json:"meeting_id,omitempty" jsonschema:"title=meeting_id,description=The numeric Zoom meeting ID. Required for get_meeting, delete_meeting and get_meeting_recordings."`
	// IncludeDownloadToken include a download access token with recordings.
	IncludeDownloadToken bool `json:"include_download_token,omitempty" jsonschema:"title=include_download_token,description=Include a download access token with meeting recordings."`
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

// Meeting represents a Zoom meeting
type Meeting struct {
	// ID the numeric meeting ID
	ID int64 `json:"id,omitempty" jsonschema:"title=id,description=The numeric Zoom meeting ID."`
	// UUID the meeting UUID
	UUID string `json:"uuid,omitempty" jsonschema:"title=uuid,description=The meeting UUID."`
	// Topic the meeting topic
	Topic string `json:"topic,omitempty" jsonschema:"title=topic,description=The meeting topic."`
	// StartTime the meeting start time in ISO 8601 format
	StartTime string `json:"start_time,omitempty" jsonschema:"title=start_time,description=The meeting start time in ISO 8601 format."`
	// Duration the meeting duration in minutes
	Duration int `json:"duration,omitempty" jsonschema:"title=duration,description=The meeting duration in minutes."`
	// Timezone the meeting timezone
	Timezone string `json:"timezone,omitempty" jsonschema:"title=timezone,description=The meeting timezone."`
	// Agenda the meeting agenda
	Agenda string `json:"agenda,omitempty" jsonschema:"title=agenda,description=The meeting agenda."`
	// JoinURL the URL participants use to join
	JoinURL string `json:"join_url,omitempty" jsonschema:"title=join_url,description=The URL participants use to join the meeting."`
	// Status the meeting status
	Status string `json:"status,omitempty" jsonschema:"title=status,description=The meeting status."`
}

// RecordingFile represents a single recording file of a past meeting
type RecordingFile struct {
	// ID the recording file ID
	ID string `json:"id,omitempty" jsonschema:"title=id,description=The recording file ID."`
	// RecordingStart recording start time
	RecordingStart string `json:"recording_start,omitempty" jsonschema:"title=recording_start,description=The recording start time."`
	// RecordingEnd recording end time
	RecordingEnd string `json:"recording_end,omitempty" jsonschema:"title=recording_end,description=The recording end time."`
	// FileType the recording file type (e.g. MP4, M4A)
	FileType string `json:"file_type,omitempty" jsonschema:"title=file_type,description=The recording file type (e.g. MP4, M4A)."`
	// FileSize the recording file size in bytes
	FileSize int64 `json:"file_size,omitempty" jsonschema:"title=file_size,description=The recording file size in bytes."`
	// DownloadURL the recording download link
	DownloadURL string `json:"download_url,omitempty" jsonschema:"title=download_url,description=The recording download link."`
	// RecordingType the recording content type
	RecordingType string `json:"recording_type,omitempty" jsonschema:"title=recording_type,description=The recording content type."`
}

// Output represents the output of the Zoom meeting tool.
type Output struct {
	schema.Base
	// Message human readable confirmation of the operation outcome
	Message string `json:"message,omitempty" jsonschema:"title=message,description=Human readable confirmation of the operation outcome."`
	// Meeting the meeting affected by schedule_meeting or returned by get_meeting
	Meeting *Meeting `json:"meeting,omitempty" jsonschema:"title=meeting,description=The meeting affected or retrieved by the operation."`
	// Meetings the meetings returned by list_meetings or get_upcoming_meetings
	Meetings []Meeting `json:"meetings,omitempty" jsonschema:"title=meetings,description=The meetings returned by a list operation."`
	// Recordings the recording files returned by get_meeting_recordings
	Recordings []RecordingFile `json:"recordings,omitempty" jsonschema:"title=recordings,description=The recording files returned by get_meeting_recordings."`
	// RecordingDuration total duration of the recordings in minutes
	RecordingDuration int `json:"recording_duration,omitempty" jsonschema:"title=recording_duration,description=Total duration of the recordings in minutes."`
	// RecordingTotalSize total size of the recordings in bytes
	RecordingTotalSize int64 `json:"recording_total_size,omitempty" jsonschema:"title=recording_total_size,description=Total size of the recordings in bytes."`
	// DownloadAccessToken token for downloading recordings when requested
	DownloadAccessToken string `json:"download_access_token,omitempty" jsonschema:"title=download_access_token,description=Token for downloading recordings when requested."`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

type Config struct {
	tools.Config
	baseURL    string
	userID     string
	httpClient *http.Client
	auth       *Authorizer
}

// Tool manages Zoom meetings through the Zoom REST API, authorizing each
// request with a bearer token obtained from its Authorizer.
type Tool struct {
	Config
}

func New(auth *Authorizer, opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	ret.auth = auth
	if ret.Title() == "" {
		ret.SetTitle("ZoomTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Tool for scheduling, retrieving, listing and deleting Zoom meetings and fetching meeting recordings.")
	}
	if ret.baseURL == "" {
		ret.baseURL = "https://api.zoom.us/v2"
	}
	if ret.userID == "" {
		ret.userID = "me"
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	return ret
}

// Run runs the Zoom tool synchronously with the given parameters
func (t *Tool) Run(ctx context.Context, input *Input, output *Output) error {
	switch input.Operation {
	case ScheduleMeeting:
		meeting, err := t.scheduleMeeting(ctx, input)
		if err != nil {
			return err
		}
		output.Meeting = meeting
		output.Message = fmt.Sprintf("Meeting %q scheduled, ID %d, join URL %s, starts %s", meeting.Topic, meeting.ID, meeting.JoinURL, meeting.StartTime)
	case GetMeeting:
		meeting, err := t.getMeeting(ctx, input.MeetingID)
		if err != nil {
			return err
		}
		output.Meeting = meeting
	case ListMeetings:
		meetings, err := t.listMeetings(ctx, "scheduled")
		if err != nil {
			return err
		}
		output.Meetings = meetings
		output.Message = fmt.Sprintf("%d scheduled meetings", len(meetings))
	case GetUpcomingMeetings:
		meetings, err := t.listMeetings(ctx, "upcoming")
		if err != nil {
			return err
		}
		output.Meetings = meetings
		output.Message = fmt.Sprintf("%d upcoming meetings", len(meetings))
	case DeleteMeeting:
		if err := t.deleteMeeting(ctx, input.MeetingID); err != nil {
			return err
		}
		output.Message = fmt.Sprintf("Meeting %d deleted", input.MeetingID)
	case GetMeetingRecordings:
		if err := t.meetingRecordings(ctx, input.MeetingID, input.IncludeDownloadToken, output); err != nil {
			return err
		}
	default:
		return fmt.Errorf("zoom: unknown operation %q", input.Operation)
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

func (t *Tool) scheduleMeeting(ctx context.Context, input *Input) (*Meeting, error) {
	if input.Topic == "" {
		return nil, errors.New("zoom: schedule_meeting requires a topic")
	}
	if input.StartTime == "" {
		return nil, errors.New("zoom: schedule_meeting requires a start_time")
	}
	body := map[string]any{
		"topic":      input.Topic,
		"type":       scheduledMeetingType,
		"start_time": input.StartTime,
	}
	if input.Duration > 0 {
		body["duration"] = input.Duration
	}
	if input.Timezone != "" {
		body["timezone"] = input.Timezone
	}
	if input.Agenda != "" {
		body["agenda"] = input.Agenda
	}
	meeting := new(Meeting)
	if err := t.call(ctx, http.MethodPost, fmt.Sprintf("/users/%s/meetings", t.userID), nil, body, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (t *Tool) getMeeting(ctx context.Context, meetingID int64) (*Meeting, error) {
	if meetingID == 0 {
		return nil, errors.New("zoom: get_meeting requires a meeting_id")
	}
	meeting := new(Meeting)
	if err := t.call(ctx, http.MethodGet, "/meetings/"+strconv.FormatInt(meetingID, 10), nil, nil, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

func (t *Tool) listMeetings(ctx context.Context, meetingType string) ([]Meeting, error) {
	values := url.Values{}
	values.Set("type", meetingType)
	var page struct {
		TotalRecords int       `json:"total_records"`
		Meetings     []Meeting `json:"meetings"`
	}
	if err := t.call(ctx, http.MethodGet, fmt.Sprintf("/users/%s/meetings", t.userID), values, nil, &page); err != nil {
		return nil, err
	}
	return page.Meetings, nil
}

func (t *Tool) deleteMeeting(ctx context.Context, meetingID int64) error {
	if meetingID == 0 {
		return errors.New("zoom: delete_meeting requires a meeting_id")
	}
	return t.call(ctx, http.MethodDelete, "/meetings/"+strconv.FormatInt(meetingID, 10), nil, nil, nil)
}

func (t *Tool) meetingRecordings(ctx context.Context, meetingID int64, includeToken bool, output *Output) error {
	if meetingID == 0 {
		return errors.New("zoom: get_meeting_recordings requires a meeting_id")
	}
	var values url.Values
	if includeToken {
		values = url.Values{}
		values.Set("include_fields", "download_access_token")
	}
	var recordings struct {
		Duration            int             `json:"duration"`
		TotalSize           int64           `json:"total_size"`
		RecordingFiles      []RecordingFile `json:"recording_files"`
		DownloadAccessToken string          `json:"download_access_token"`
	}
	if err := t.call(ctx, http.MethodGet, fmt.Sprintf("/meetings/%d/recordings", meetingID), values, nil, &recordings); err != nil {
		return err
	}
	output.Recordings = recordings.RecordingFiles
	output.RecordingDuration = recordings.Duration
	output.RecordingTotalSize = recordings.TotalSize
	output.DownloadAccessToken = recordings.DownloadAccessToken
	output.Message = fmt.Sprintf("%d recording files for meeting %d", len(recordings.RecordingFiles), meetingID)
	return nil
}

// call issues an authorized request against the Zoom REST API and decodes
// the JSON response into result when result is non-nil. A token cache
// failure aborts the request before anything goes on the wire.
func (t *Tool) call(ctx context.Context, method, path string, query url.Values, body any, result any) error {
	token, err := t.auth.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("zoom: authorization unavailable: %w", err)
	}
	reqURL := t.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}
	var reqBody io.Reader
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("zoom: encode request: %w", err)
		}
		reqBody = bytes.NewReader(bs)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return fmt.Errorf("zoom: create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := t.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("zoom: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var apiErr struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		}
		bs, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		if err := json.Unmarshal(bs, &apiErr); err == nil && apiErr.Message != "" {
			return fmt.Errorf("zoom: api error %d: %s", apiErr.Code, apiErr.Message)
		}
		return fmt.Errorf("zoom: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(bs)))
	}
	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("zoom: decode response: %w", err)
	}
	return nil
}
