package slack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	slackapi "github.com/slack-go/slack"

	"github.com/bububa/atomic-agents/schema"
	"github.com/bububa/atomic-agents/tools"
)

type Operation = string

const (
	SendMessage       Operation = "send_message"
	ListChannels      Operation = "list_channels"
	GetChannelHistory Operation = "get_channel_history"
)

const defaultHistoryLimit = 10

// Input Schema for input to a tool for Slack communications: sending
// messages, listing channels and retrieving recent channel messages.
type Input struct {
	schema.Base
	// Operation the Slack operation to perform.
	Operation Operation `json:"operation" jsonschema:"title=operation,enum=send_message,enum=list_channels,enum=get_channel_history,description=The Slack operation to perform." validate:"required"`
	// Channel the channel name or ID. Required for send_message and get_channel_history.
	Channel string `json:"channel,omitempty" jsonschema:"title=channel,description=The Slack channel name or ID. Required for send_message and get_channel_history."`
	// Text the message text, Markdown formatted when needed. Required for send_message.
	Text string `json:"text,omitempty" jsonschema:"title=text,description=The message text. Required for send_message."`
	// Limit the maximum number of messages to retrieve for get_channel_history.
	Limit int `json:"limit,omitempty" jsonschema:"title=limit,description=The maximum number of messages to retrieve for get_channel_history."`
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

// Channel represents a Slack conversation
type Channel struct {
	// ID the channel ID
	ID string `json:"id" jsonschema:"title=id,description=The channel ID."`
	// Name the channel name
	Name string `json:"name" jsonschema:"title=name,description=The channel name."`
	// IsPrivate whether the channel is private
	IsPrivate bool `json:"is_private,omitempty" jsonschema:"title=is_private,description=Whether the channel is private."`
	// NumMembers the number of channel members
	NumMembers int `json:"num_members,omitempty" jsonschema:"title=num_members,description=The number of channel members."`
}

// Message represents a message in a channel history
type Message struct {
	// User the ID of the user who posted the message
	User string `json:"user,omitempty" jsonschema:"title=user,description=The ID of the user who posted the message."`
	// Text the message text
	Text string `json:"text" jsonschema:"title=text,description=The message text."`
	// Timestamp the message timestamp
	Timestamp string `json:"ts,omitempty" jsonschema:"title=ts,description=The message timestamp."`
}

// Output represents the output of the Slack tool.
type Output struct {
	schema.Base
	// Message human readable confirmation of the operation outcome
	Message string `json:"message,omitempty" jsonschema:"title=message,description=Human readable confirmation of the operation outcome."`
	// Channel the channel the operation acted on
	Channel string `json:"channel,omitempty" jsonschema:"title=channel,description=The channel the operation acted on."`
	// Timestamp the timestamp of a sent message
	Timestamp string `json:"ts,omitempty" jsonschema:"title=ts,description=The timestamp of a sent message."`
	// Channels the channels returned by list_channels
	Channels []Channel `json:"channels,omitempty" jsonschema:"title=channels,description=The channels returned by list_channels."`
	// Messages the messages returned by get_channel_history
	Messages []Message `json:"messages,omitempty" jsonschema:"title=messages,description=The messages returned by get_channel_history."`
}

func (s Output) String() string {
	bs, _ := json.Marshal(s)
	return string(bs)
}

type Config struct {
	tools.Config
	apiURL       string
	historyLimit int
	client       *slackapi.Client
}

// Tool manages Slack communications through the Slack Web API.
type Tool struct {
	Config
}

func New(token string, opts ...Option) *Tool {
	ret := new(Tool)
	for _, opt := range opts {
		opt(&ret.Config)
	}
	if ret.Title() == "" {
		ret.SetTitle("SlackTool")
	}
	if ret.Description() == "" {
		ret.SetDescription("Tool for sending Slack messages, listing channels and retrieving recent channel messages.")
	}
	if ret.historyLimit == 0 {
		ret.historyLimit = defaultHistoryLimit
	}
	if ret.client == nil {
		var clientOpts []slackapi.Option
		if ret.apiURL != "" {
			clientOpts = append(clientOpts, slackapi.OptionAPIURL(ret.apiURL))
		}
		ret.client = slackapi.New(token, clientOpts...)
	}
	return ret
}

// Run runs the Slack tool synchronously with the given parameters
func (t *Tool) Run(ctx context.Context, input *Input, output *Output) error {
	switch input.Operation {
	case SendMessage:
		if input.Channel == "" {
			return errors.New("slack: send_message requires a channel")
		}
		if input.Text == "" {
			return errors.New("slack: send_message requires text")
		}
		channelID, err := t.resolveChannel(ctx, input.Channel)
		if err != nil {
			return err
		}
		channel, ts, err := t.client.PostMessageContext(ctx, channelID, slackapi.MsgOptionText(input.Text, false))
		if err != nil {
			return fmt.Errorf("slack: post message: %w", err)
		}
		output.Channel = channel
		output.Timestamp = ts
		output.Message = fmt.Sprintf("Message delivered to %s", input.Channel)
	case ListChannels:
		channels, err := t.listChannels(ctx)
		if err != nil {
			return err
		}
		output.Channels = channels
		output.Message = fmt.Sprintf("%d channels", len(channels))
	case GetChannelHistory:
		if input.Channel == "" {
			return errors.New("slack: get_channel_history requires a channel")
		}
		channelID, err := t.resolveChannel(ctx, input.Channel)
		if err != nil {
			return err
		}
		limit := input.Limit
		if limit <= 0 {
			limit = t.historyLimit
		}
		resp, err := t.client.GetConversationHistoryContext(ctx, &slackapi.GetConversationHistoryParameters{
			ChannelID: channelID,
			Limit:     limit,
		})
		if err != nil {
			return fmt.Errorf("slack: channel history: %w", err)
		}
		output.Channel = input.Channel
		output.Messages = make([]Message, 0, len(resp.Messages))
		for _, msg := range resp.Messages {
			output.Messages = append(output.Messages, Message{
				User:      msg.User,
				Text:      msg.Text,
				Timestamp: msg.Timestamp,
			})
		}
	default:
		return fmt.Errorf("slack: unknown operation %q", input.Operation)
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

func (t *Tool) listChannels(ctx context.Context) ([]Channel, error) {
	channels, _, err := t.client.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		ExcludeArchived: true,
		Types:           []string{"public_channel", "private_channel"},
	})
	if err != nil {
		return nil, fmt.Errorf("slack: list channels: %w", err)
	}
	list := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		list = append(list, Channel{
			ID:         ch.ID,
			Name:       ch.Name,
			IsPrivate:  ch.IsPrivate,
			NumMembers: ch.NumMembers,
		})
	}
	return list, nil
}

// resolveChannel maps a "#name" or bare channel name to its ID. Values that
// do not match a channel name pass through unchanged so channel IDs and
// direct user IDs keep working.
func (t *Tool) resolveChannel(ctx context.Context, channel string) (string, error) {
	name := strings.TrimPrefix(channel, "#")
	channels, err := t.listChannels(ctx)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Name == name {
			return ch.ID, nil
		}
	}
	return channel, nil
}
