package slack

import slackapi "github.com/slack-go/slack"

type Option func(*Config)

// WithAPIURL overrides the Slack Web API base URL. Used in tests.
func WithAPIURL(apiURL string) Option {
	return func(c *Config) {
		c.apiURL = apiURL
	}
}

// WithHistoryLimit sets the default number of messages returned by
// get_channel_history when the input does not specify one.
func WithHistoryLimit(n int) Option {
	return func(c *Config) {
		c.historyLimit = n
	}
}

func WithClient(clt *slackapi.Client) Option {
	return func(c *Config) {
		c.client = clt
	}
}
