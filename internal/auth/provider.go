// Package auth signs staff in and decides whether a signed-in principal may use the admin panel.
//
// Provider is the identity side: bcrypt-checked credentials, HS256 tokens backed by a sessions
// row so they can be revoked, and an auth-state stream. Gate is the access side: it reacts to
// every auth-state change with a fresh, fail-closed lookup in the users table.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrMissingSecret      = errors.New("JWT_SECRET is required but was empty")
)

// Claims carried by an access token. Subject is the user id, ID the session id.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Principal is an authenticated user as far as the identity side knows.
type Principal struct {
	UserID    string
	Email     string
	SessionID string
	ExpiresAt time.Time
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Principal Principal
}

type Provider struct {
	db     *gorm.DB
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu        sync.Mutex
	listeners map[int]func(*Principal)
	nextID    int
}

func NewProvider(db *gorm.DB, secret string, ttl time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Provider{
		db:        db,
		secret:    []byte(secret),
		ttl:       ttl,
		now:       time.Now,
		listeners: make(map[int]func(*Principal)),
	}, nil
}

// HashPassword returns the bcrypt hash stored in users.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// SignIn checks the credentials, opens a session and notifies auth-state listeners.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := p.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		logging.Error().Err(err).Msg("Error loading user for sign-in")
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	now := p.now()
	row := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: now.Add(p.ttl),
	}
	if err := p.db.WithContext(ctx).Create(&row).Error; err != nil {
		logging.Error().Err(err).Str("user", user.ID).Msg("Error creating session")
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	claims := &Claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ID:        row.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(row.ExpiresAt),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	principal := Principal{UserID: user.ID, Email: user.Email, SessionID: row.ID, ExpiresAt: row.ExpiresAt}
	logging.Info().Str("user", user.ID).Msg("User signed in")
	p.notify(&principal)
	return &Session{Token: token, ExpiresAt: row.ExpiresAt, Principal: principal}, nil
}

// Authenticate verifies the token signature and expiry and that its session was not revoked.
func (p *Provider) Authenticate(ctx context.Context, token string) (*Principal, error) {
	claims, err := p.parse(token, true)
	if err != nil {
		return nil, err
	}

	var row models.Session
	err = p.db.WithContext(ctx).Where("id = ? AND user_id = ?", claims.ID, claims.Subject).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !row.ExpiresAt.After(p.now()) {
		return nil, ErrInvalidToken
	}

	return &Principal{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.ID,
		ExpiresAt: row.ExpiresAt,
	}, nil
}

// SignOut revokes the token's session. Expired tokens can still be signed out.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := p.parse(token, false)
	if err != nil {
		return err
	}
	if err := p.db.WithContext(ctx).Delete(&models.Session{}, "id = ?", claims.ID).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	logging.Info().Str("user", claims.Subject).Msg("User signed out")
	p.notify(nil)
	return nil
}

// OnAuthStateChange registers fn for every sign-in (principal) and sign-out (nil).
// The returned func unsubscribes.
func (p *Provider) OnAuthStateChange(fn func(*Principal)) func() {
	p.mu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *Provider) notify(principal *Principal) {
	p.mu.Lock()
	fns := make([]func(*Principal), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(principal)
	}
}

func (p *Provider) parse(token string, validate bool) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SaveUser creates or updates the user with this email. Used to provision admins; it needs
// no signing secret.
func SaveUser(ctx context.Context, db *gorm.DB, email, password, role, projectID string) (*models.User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err = db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{ID: uuid.NewString(), Email: email}
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	user.PasswordHash = hash
	user.Role = role
	user.ProjectID = projectID

	if err := db.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}
	return &user, nil
}
