package auth

import (
	"context"
	"sync"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"
)

// Service is the sign-in flow of the admin panel: authenticate, then require admin access.
type Service struct {
	Provider *Provider
	Checker  *Checker

	mu        sync.Mutex
	listeners []func(*Principal)
}

func NewService(provider *Provider, checker *Checker) *Service {
	return &Service{Provider: provider, Checker: checker}
}

// OnAccessChange registers fn for every granted login (principal) and logout (nil).
// Denied sign-ins are never reported.
func (s *Service) OnAccessChange(fn func(*Principal)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(p *Principal) {
	s.mu.Lock()
	fns := append(([]func(*Principal))(nil), s.listeners...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
}

// Login signs in and checks access. A denied user is signed out again and gets ErrAccessDenied.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, *models.User, error) {
	session, err := s.Provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}

	user, d := s.Checker.CheckUser(ctx, session.Principal.UserID)
	if !d.Granted {
		if err := s.Provider.SignOut(ctx, session.Token); err != nil {
			logging.Error().Err(err).Str("user", session.Principal.UserID).Msg("Error signing out denied user")
		}
		return nil, nil, ErrAccessDenied
	}
	principal := session.Principal
	s.notify(&principal)
	return session, user, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.Provider.SignOut(ctx, token); err != nil {
		return err
	}
	s.notify(nil)
	return nil
}
