// Package workspace is the typed surface of the workspace API: sessions,
// documents, chat over documents, natural language SQL, and resume scoring
// and generation. It speaks to the API only through an authenticated
// client.Client.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/papercomputeco/ragdesk/pkg/client"
	"github.com/papercomputeco/ragdesk/pkg/credentials"
	"github.com/papercomputeco/ragdesk/pkg/logger"
	"github.com/papercomputeco/ragdesk/pkg/sse"
)

var (
	// ErrNotLoggedIn is returned by operations that need a session when the
	// credential store is empty.
	ErrNotLoggedIn = errors.New("not logged in, run \"ragdesk login\" first")

	// ErrEmptyPrompt is returned when a question or job description is blank.
	ErrEmptyPrompt = errors.New("prompt is empty")
)

// API is the transport the Service depends on. *client.Client implements it.
type API interface {
	Do(ctx context.Context, req client.Request, out any) error
	Upload(ctx context.Context, up client.Upload, out any) error
	Stream(ctx context.Context, req client.Request, fn sse.Handler) error
}

// Sessions is the credential store as seen by the Service.
type Sessions interface {
	Get() credentials.Credentials
	Install(user *credentials.User, accessToken, refreshToken string) error
	Clear()
}

// Service exposes the workspace operations.
type Service struct {
	api      API
	sessions Sessions
	logger   *slog.Logger
}

// NewService creates a Service. A nil logger discards output.
func NewService(api API, sessions Sessions, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		api:      api,
		sessions: sessions,
		logger:   log,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Login exchanges an email and password for a session and installs it.
func (s *Service) Login(ctx context.Context, email, password string) (*credentials.User, error) {
	var grant client.TokenGrant
	err := s.api.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Body:   loginRequest{Email: strings.TrimSpace(email), Password: password},
	}, &grant)
	if err != nil {
		return nil, err
	}

	return s.install(grant)
}

// Register creates an account and installs its first session.
func (s *Service) Register(ctx context.Context, email, password, name string) (*credentials.User, error) {
	var grant client.TokenGrant
	err := s.api.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Body: registerRequest{
			Email:    strings.TrimSpace(email),
			Password: password,
			Name:     strings.TrimSpace(name),
		},
	}, &grant)
	if err != nil {
		return nil, err
	}

	return s.install(grant)
}

func (s *Service) install(grant client.TokenGrant) (*credentials.User, error) {
	if err := s.sessions.Install(grant.User, grant.AccessToken, grant.RefreshToken); err != nil {
		return nil, fmt.Errorf("installing session: %w", err)
	}

	s.logger.Debug("session installed", "user_id", grant.User.ID)
	return grant.User, nil
}

// Me returns the user the server associates with the current access token.
func (s *Service) Me(ctx context.Context) (*credentials.User, error) {
	if err := s.requireSession(); err != nil {
		return nil, err
	}

	user := &credentials.User{}
	if err := s.api.Do(ctx, client.Request{Path: "/auth/me"}, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the session on the server and clears it locally. The local
// session is cleared even when the server call fails; that failure is still
// returned.
func (s *Service) Logout(ctx context.Context) error {
	creds := s.sessions.Get()
	if !creds.Authenticated() {
		s.sessions.Clear()
		return nil
	}

	err := s.api.Do(ctx, client.Request{
		Method: http.MethodPost,
		Path:   "/auth/logout",
		Body:   logoutRequest{RefreshToken: creds.RefreshToken},
	}, nil)

	s.sessions.Clear()

	if err != nil {
		s.logger.Debug("server logout failed", "error", err)
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

func (s *Service) requireSession() error {
	if !s.sessions.Get().Authenticated() {
		return ErrNotLoggedIn
	}
	return nil
}

func requirePrompt(prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", ErrEmptyPrompt
	}
	return prompt, nil
}
