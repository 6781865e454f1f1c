package apiweave

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the manager to golang.org/x/oauth2, so the runtime's
// tokens can feed oauth2-based HTTP stacks. ctx must outlive the source; it
// governs any exchange a Token call triggers.
func (m *TokenManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, m: m}
}

type managerTokenSource struct {
	ctx context.Context
	m   *TokenManager
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.m.EnsureToken(s.ctx)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken:  tok,
		RefreshToken: s.m.cfg.RefreshToken(),
		TokenType:    "Bearer",
	}, nil
}
