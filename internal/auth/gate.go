package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/htech-wordpress/vibefit-studio-admin/internal/logging"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/metrics"
	"github.com/htech-wordpress/vibefit-studio-admin/internal/models"

	"gorm.io/gorm"
)

const RoleAdmin = "admin"

var (
	ErrUserNotFound = errors.New("user not found")
	ErrAccessDenied = errors.New("You do not have access to this admin panel")
)

type State int

const (
	StateUnverified State = iota
	StateAuthenticating
	StateNoAccess
	StateGranted
)

func (s State) String() string {
	switch s {
	case StateUnverified:
		return "unverified"
	case StateAuthenticating:
		return "authenticating"
	case StateNoAccess:
		return "no_access"
	case StateGranted:
		return "granted"
	default:
		return "unknown"
	}
}

type DenyReason string

const (
	ReasonTenantUnconfigured DenyReason = "tenant_unconfigured"
	ReasonUserNotFound       DenyReason = "user_not_found"
	ReasonNotAdmin           DenyReason = "not_admin"
	ReasonTenantMismatch     DenyReason = "tenant_mismatch"
	ReasonLookupFailed       DenyReason = "lookup_failed"
)

// Decision is the outcome of one access check. Reason is empty when Granted.
type Decision struct {
	Granted bool
	Reason  DenyReason
}

func denied(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// UserDirectory looks up users by id. FindUser returns ErrUserNotFound for unknown ids.
type UserDirectory interface {
	FindUser(ctx context.Context, id string) (*models.User, error)
}

// GormDirectory reads the users table.
type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	return &GormDirectory{db: db}
}

func (d *GormDirectory) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := d.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Checker grants access to admins of the configured tenant and denies everything else.
type Checker struct {
	users     UserDirectory
	projectID string
}

func NewChecker(users UserDirectory, projectID string) *Checker {
	return &Checker{users: users, projectID: projectID}
}

func (c *Checker) Check(ctx context.Context, uid string) Decision {
	_, d := c.CheckUser(ctx, uid)
	return d
}

// CheckUser is Check that also returns the user record when one was found.
func (c *Checker) CheckUser(ctx context.Context, uid string) (*models.User, Decision) {
	user, d := c.decide(ctx, uid)
	result := "granted"
	if !d.Granted {
		result = string(d.Reason)
		logging.Warn().Str("user", uid).Str("reason", result).Msg("Admin access denied")
	}
	metrics.RecordAccess(result)
	return user, d
}

func (c *Checker) decide(ctx context.Context, uid string) (*models.User, Decision) {
	if c.projectID == "" {
		return nil, denied(ReasonTenantUnconfigured)
	}
	user, err := c.users.FindUser(ctx, uid)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, denied(ReasonUserNotFound)
	case err != nil:
		logging.Error().Err(err).Str("user", uid).Msg("Error checking admin access")
		return nil, denied(ReasonLookupFailed)
	case user == nil:
		return nil, denied(ReasonUserNotFound)
	}
	if user.Role != RoleAdmin {
		return user, denied(ReasonNotAdmin)
	}
	if user.ProjectID != c.projectID {
		return user, denied(ReasonTenantMismatch)
	}
	return user, Decision{Granted: true}
}

// Gate tracks the access state of one auth-state stream.
type Gate struct {
	checker  *Checker
	onChange func(State)

	mu        sync.RWMutex
	gen       uint64
	state     State
	decision  Decision
	principal *Principal
	user      *models.User
}

type GateOption func(*Gate)

// OnStateChange is called after every state transition.
func OnStateChange(fn func(State)) GateOption {
	return func(g *Gate) { g.onChange = fn }
}

func NewGate(checker *Checker, opts ...GateOption) *Gate {
	g := &Gate{checker: checker, state: StateUnverified}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// HandleAuthState moves the gate for one auth-state notification and returns the settled state.
// A result for an older notification never overwrites a newer one.
func (g *Gate) HandleAuthState(ctx context.Context, principal *Principal) State {
	g.mu.Lock()
	g.gen++
	gen := g.gen
	g.principal = principal
	g.user = nil
	if principal == nil {
		g.state = StateUnverified
		g.decision = Decision{}
		g.mu.Unlock()
		g.changed(StateUnverified)
		return StateUnverified
	}
	g.state = StateAuthenticating
	g.mu.Unlock()
	g.changed(StateAuthenticating)

	user, d := g.checker.CheckUser(ctx, principal.UserID)
	next := StateNoAccess
	if d.Granted {
		next = StateGranted
	}

	g.mu.Lock()
	if gen != g.gen {
		current := g.state
		g.mu.Unlock()
		return current
	}
	g.state = next
	g.decision = d
	g.user = user
	g.mu.Unlock()
	g.changed(next)
	return next
}

func (g *Gate) changed(s State) {
	if g.onChange != nil {
		g.onChange(s)
	}
}

// Subscribe drives the gate from provider's auth-state stream until the returned func is called.
func (g *Gate) Subscribe(provider *Provider) func() {
	return provider.OnAuthStateChange(func(p *Principal) {
		g.HandleAuthState(context.Background(), p)
	})
}

func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

func (g *Gate) Decision() Decision {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.decision
}

func (g *Gate) Principal() *Principal {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.principal
}

// User is the admin record behind the current principal, nil unless the gate saw one.
func (g *Gate) User() *models.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}
