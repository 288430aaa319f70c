package zoom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const defaultTokenURL = "https://zoom.us/oauth/token"

// expiryMargin is subtracted from the provider-declared token lifetime so a
// token is never presented while it may expire mid-request.
const expiryMargin = 60 * time.Second

// Authorizer performs the Zoom server-to-server OAuth exchange
// (grant_type=account_credentials) and caches the resulting bearer token
// until shortly before its declared expiry. AccessToken is safe for
// concurrent use; the check-then-refresh sequence runs under a single lock
// so concurrent callers never trigger duplicate exchanges.
type Authorizer struct {
	accountID    string
	clientID     string
	clientSecret string
	tokenURL     string
	httpClient   *http.Client
	logger       *slog.Logger
	now          func() time.Time

	mtx         sync.Mutex
	accessToken string
	expiresAt   time.Time
}

type AuthorizerOption func(a *Authorizer)

// WithTokenURL overrides the token endpoint. Used in tests.
func WithTokenURL(tokenURL string) AuthorizerOption {
	return func(a *Authorizer) {
		a.tokenURL = tokenURL
	}
}

func WithAuthorizerHttpClient(clt *http.Client) AuthorizerOption {
	return func(a *Authorizer) {
		a.httpClient = clt
	}
}

func WithAuthorizerLogger(l *slog.Logger) AuthorizerOption {
	return func(a *Authorizer) {
		a.logger = l
	}
}

// WithClock overrides the time source used for expiry checks. Used in tests.
func WithClock(now func() time.Time) AuthorizerOption {
	return func(a *Authorizer) {
		a.now = now
	}
}

// NewAuthorizer returns an Authorizer for the given server-to-server OAuth
// app credentials. The credentials are not validated locally; missing or
// wrong values surface as an authentication error from the provider on the
// first exchange.
func NewAuthorizer(accountID, clientID, clientSecret string, opts ...AuthorizerOption) *Authorizer {
	ret := &Authorizer{
		accountID:    accountID,
		clientID:     clientID,
		clientSecret: clientSecret,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.tokenURL == "" {
		ret.tokenURL = defaultTokenURL
	}
	if ret.httpClient == nil {
		ret.httpClient = http.DefaultClient
	}
	if ret.logger == nil {
		ret.logger = slog.Default()
	}
	if ret.now == nil {
		ret.now = time.Now
	}
	return ret
}

// AccessToken returns a valid bearer token for the Zoom API, performing a
// credential exchange only when no unexpired token is cached. A failed
// exchange leaves any previously cached token untouched and is reported as
// an error; callers must abort the dependent request on error rather than
// proceed without authorization.
func (a *Authorizer) AccessToken(ctx context.Context) (string, error) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.accessToken != "" && a.now().Before(a.expiresAt) {
		return a.accessToken, nil
	}
	token, expiresIn, err := a.exchange(ctx)
	if err != nil {
		a.logger.Error("zoom oauth: fetching access token failed", "error", err)
		return "", err
	}
	a.accessToken = token
	a.expiresAt = a.now().Add(expiresIn - expiryMargin)
	return a.accessToken, nil
}

// exchange posts the account credentials to the token endpoint and returns
// the new token with its declared lifetime.
func (a *Authorizer) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "account_credentials")
	form.Set("account_id", a.accountID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("zoom oauth: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.clientID, a.clientSecret)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("zoom oauth: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", 0, fmt.Errorf("zoom oauth: unexpected status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("zoom oauth: decode response: %w", err)
	}
	return payload.AccessToken, time.Duration(payload.ExpiresIn) * time.Second, nil
}
