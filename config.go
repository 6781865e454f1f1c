package apiweave

import "sync"

// Config provides thread-safe access to the process-wide client settings:
// the remote base URL, user agent, OAuth client credentials, and the current
// token pair. The token manager is the only writer of the token fields; all
// other fields are normally set once at startup but may be changed at any
// time (tests reset freely).
type Config struct {
	mu           sync.RWMutex
	baseURL      string
	userAgent    string
	clientID     string
	clientSecret string
	accessToken  string
	refreshToken string
}

// NewConfig creates a Config for the given remote base URL.
func NewConfig(baseURL string) *Config {
	return &Config{
		baseURL:   baseURL,
		userAgent: defaultUserAgent,
	}
}

// BaseURL returns the remote API base URL.
func (c *Config) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.baseURL
}

// SetBaseURL replaces the remote API base URL.
func (c *Config) SetBaseURL(u string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.baseURL = u
}

// UserAgent returns the User-Agent header value sent with every request.
func (c *Config) UserAgent() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.userAgent
}

// SetUserAgent replaces the User-Agent header value.
func (c *Config) SetUserAgent(ua string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.userAgent = ua
}

// Credentials returns the OAuth client id and secret.
func (c *Config) Credentials() (id, secret string) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.clientID, c.clientSecret
}

// SetCredentials sets the OAuth client id and secret used for the
// client-credentials exchange.
func (c *Config) SetCredentials(id, secret string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.clientID = id
	c.clientSecret = secret
}

// AccessToken returns the stored access token, or "" when none is stored.
func (c *Config) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessToken
}

// RefreshToken returns the stored refresh token, or "" when none is stored.
func (c *Config) RefreshToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.refreshToken
}

// SetTokens stores an access/refresh token pair as a single atomic update,
// so a concurrent reader never observes a token pair from two different
// exchanges.
func (c *Config) SetTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessToken = access
	c.refreshToken = refresh
}
