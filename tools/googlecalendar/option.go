package googlecalendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

type Option func(*Config)

// WithCredentialsFile sets the path of the Google service credentials JSON
// used to authorize the Calendar API client.
func WithCredentialsFile(path string) Option {
	return func(c *Config) {
		c.credentialsFile = path
	}
}

// WithCalendarID sets the calendar the tool acts on. Defaults to "primary".
func WithCalendarID(calendarID string) Option {
	return func(c *Config) {
		c.calendarID = calendarID
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.maxResults = n
	}
}

// WithClientOptions forwards extra options to the Calendar API client.
// Used in tests to point the client at a mock endpoint.
func WithClientOptions(opts ...option.ClientOption) Option {
	return func(c *Config) {
		c.clientOptions = append(c.clientOptions, opts...)
	}
}

func WithService(svc *calendar.Service) Option {
	return func(c *Config) {
		c.svc = svc
	}
}

// WithClock overrides the time source used for the list_events lower bound.
// Used in tests.
func WithClock(now func() time.Time) Option {
	return func(c *Config) {
		c.now = now
	}
}
