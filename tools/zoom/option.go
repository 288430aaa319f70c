package zoom

import "net/http"

type Option func(*Config)

func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.baseURL = baseURL
	}
}

// WithUserID sets the Zoom user the meeting endpoints act on. Defaults to
// "me", the user the server-to-server OAuth app belongs to.
func WithUserID(userID string) Option {
	return func(c *Config) {
		c.userID = userID
	}
}

func WithHttpClient(clt *http.Client) Option {
	return func(c *Config) {
		c.httpClient = clt
	}
}
