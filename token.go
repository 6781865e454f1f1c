package apiweave

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"golang.org/x/sync/singleflight"
)

// tokenPath is the OAuth2 token endpoint, relative to the base URL.
const tokenPath = "/oauth/token"

// tokenResponse is the body of a successful token exchange.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TokenManager guarantees a valid access token before any authenticated
// call. Concurrent callers that find no stored token join a single in-flight
// exchange and all receive its result; a failed exchange releases every
// joined caller with the same wrapped error and clears the in-flight state
// so a later call may retry.
type TokenManager struct {
	cfg      *Config
	executor *Executor
	logger   *slog.Logger
	group    singleflight.Group
}

// NewTokenManager creates a TokenManager. Token exchanges go through the
// same builder and executor path as ordinary calls.
func NewTokenManager(cfg *Config, executor *Executor, logger *slog.Logger) *TokenManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &TokenManager{cfg: cfg, executor: executor, logger: logger}
}

// EnsureToken returns the stored access token, performing a single-flight
// client-credentials exchange first if none is stored. The fast path does
// no network call. ctx applies to the exchange this caller initiates or
// joins.
func (m *TokenManager) EnsureToken(ctx context.Context) (string, error) {
	if tok := m.cfg.AccessToken(); tok != "" {
		return tok, nil
	}

	v, err, _ := m.group.Do("acquire", func() (any, error) {
		// A previous flight may have stored a token between the caller's
		// check and this one.
		if tok := m.cfg.AccessToken(); tok != "" {
			return tok, nil
		}

		return m.acquire(ctx)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// RefreshToken exchanges the stored refresh token for a new token pair,
// replacing both stored tokens. Refreshes single-flight under their own key
// so a refresh storm collapses to one exchange.
func (m *TokenManager) RefreshToken(ctx context.Context) (string, error) {
	v, err, _ := m.group.Do("refresh", func() (any, error) {
		return m.refresh(ctx)
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

// acquire performs the client-credentials exchange.
func (m *TokenManager) acquire(ctx context.Context) (string, error) {
	id, secret := m.cfg.Credentials()
	if id == "" || secret == "" {
		return "", &TokenError{Op: "acquire", Err: ErrMissingCredentials}
	}

	m.logger.Info("acquiring access token", slog.String("grant", "client_credentials"))

	return m.exchange(ctx, "acquire", map[string]any{
		"client_id":     id,
		"client_secret": secret,
		"grant_type":    "client_credentials",
	})
}

// refresh performs the refresh-token exchange. The stored refresh token is
// sent under refresh_token together with the client id, the standard wire
// shape for this grant.
func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	rt := m.cfg.RefreshToken()
	if rt == "" {
		return "", &TokenError{Op: "refresh", Err: ErrNoRefreshToken}
	}

	id, _ := m.cfg.Credentials()

	m.logger.Info("refreshing access token", slog.String("grant", "refresh_token"))

	return m.exchange(ctx, "refresh", map[string]any{
		"client_id":     id,
		"refresh_token": rt,
		"grant_type":    "refresh_token",
	})
}

// exchange posts a form-encoded grant to the token endpoint and atomically
// stores the returned token pair. The request carries no access token of
// its own.
func (m *TokenManager) exchange(ctx context.Context, op string, form map[string]any) (string, error) {
	res, err := m.executor.exec(ctx, Intent{
		Path:    tokenPath,
		Method:  http.MethodPost,
		Headers: map[string]string{"content-type": contentTypeForm},
		Payload: form,
	})
	if err != nil {
		m.logger.Warn("token exchange failed",
			slog.String("op", op),
			slog.String("error", err.Error()),
		)

		return "", &TokenError{Op: op, Err: err}
	}

	var tr tokenResponse
	if err := json.Unmarshal(res.Raw, &tr); err != nil {
		return "", &TokenError{Op: op, Err: fmt.Errorf("decoding token response: %w", err)}
	}

	if tr.AccessToken == "" {
		return "", &TokenError{Op: op, Err: fmt.Errorf("token response carries no access_token")}
	}

	m.cfg.SetTokens(tr.AccessToken, tr.RefreshToken)

	m.logger.Info("access token stored", slog.String("op", op))

	return tr.AccessToken, nil
}
