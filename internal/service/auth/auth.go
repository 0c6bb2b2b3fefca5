package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mc-consultoria/proteccion-civil/internal/events"
	"github.com/mc-consultoria/proteccion-civil/internal/fallback"
	"github.com/mc-consultoria/proteccion-civil/internal/hash"
	"github.com/mc-consultoria/proteccion-civil/internal/logging"
	"github.com/mc-consultoria/proteccion-civil/internal/models"
	"github.com/mc-consultoria/proteccion-civil/internal/repo"
	"github.com/mc-consultoria/proteccion-civil/internal/tokens"
	"github.com/mc-consultoria/proteccion-civil/internal/validation"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrCreateFailed       = errors.New("cannot create account")
	ErrUnavailable        = errors.New("store unavailable")
)

type UserStore interface {
	FindActiveByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUserIfNotExists(ctx context.Context, u *models.User) error
	Now(ctx context.Context) (string, error)
	Ping(ctx context.Context) error
}

var _ UserStore = (*repo.GormRepo)(nil)

type Service struct {
	Repo   UserStore
	Demo   *fallback.Registry
	Hasher hash.Hasher
	Tokens *tokens.Issuer
	Events events.Publisher
	Clock  func() time.Time
}

type UserView struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type Result struct {
	User      UserView
	Demo      bool
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Email           string
	Password        string
	Nombre          string
	ApellidoPaterno string
	ApellidoMaterno string
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func fullName(nombre, apellidoPaterno string) string {
	return nombre + " " + apellidoPaterno
}

func viewFromUser(u *models.User) UserView {
	return UserView{
		ID:       u.ID.String(),
		Email:    u.Email,
		FullName: fullName(u.Nombre, u.ApellidoPaterno),
		Role:     u.Role,
	}
}

func viewFromDemo(u fallback.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, FullName: u.FullName(), Role: u.Role}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login tries the primary store first and the demo table second. Any store
// outcome other than a verified match (miss, wrong hash, outage) falls through.
func (s *Service) Login(ctx context.Context, email, password string) (*Result, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		l.Warn("login_failed", "status", 400, "reason", "missing fields")
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	l = l.With("email", email)

	if s.Repo != nil {
		user, err := s.Repo.FindActiveByEmail(ctx, email)
		switch {
		case err == nil && hash.Check(user.PasswordHash, password):
			l.Info("login_successful", "source", "store")
			return s.finish(ctx, viewFromUser(user), false, "user_logged_in")
		case err == nil:
			l.Info("login_store_mismatch")
		case errors.Is(err, repo.ErrNotFound):
			l.Info("login_store_miss")
		default:
			l.Warn("login_store_unavailable", "error", err)
		}
	}

	if s.Demo != nil {
		if du, ok := s.Demo.Authenticate(email, password); ok {
			l.Info("login_successful", "source", "demo")
			return s.finish(ctx, viewFromDemo(du), true, "user_logged_in")
		}
	}

	l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
	return nil, ErrInvalidCredentials
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Result, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	in.Email = normalizeEmail(in.Email)
	in.Nombre = validation.SanitizeString(in.Nombre)
	in.ApellidoPaterno = validation.SanitizeString(in.ApellidoPaterno)
	in.ApellidoMaterno = validation.SanitizeString(in.ApellidoMaterno)

	if in.Email == "" || in.Password == "" || in.Nombre == "" || in.ApellidoPaterno == "" {
		l.Warn("register_failed", "status", 400, "reason", "missing fields")
		return nil, fmt.Errorf("%w: email, password, nombre and apellido_paterno are required", ErrValidation)
	}
	if !validation.IsEmail(in.Email) {
		l.Warn("register_failed", "status", 400, "reason", "invalid email")
		return nil, fmt.Errorf("%w: %w", ErrValidation, ErrInvalidEmail)
	}
	l = l.With("email", in.Email)

	hasher := s.Hasher
	if hasher == nil {
		hasher = hash.Simple{}
	}
	pwHash, err := hasher.Hash(in.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Email:           in.Email,
		PasswordHash:    pwHash,
		Nombre:          in.Nombre,
		ApellidoPaterno: in.ApellidoPaterno,
		Role:            models.RoleUser,
		IsActive:        true,
	}
	if in.ApellidoMaterno != "" {
		am := in.ApellidoMaterno
		user.ApellidoMaterno = &am
	}

	err = ErrUnavailable
	if s.Repo != nil {
		err = s.Repo.CreateUserIfNotExists(ctx, user)
	}

	switch {
	case err == nil:
		l.Info("register_successful", "source", "store", "user_id", user.ID)
		return s.finish(ctx, viewFromUser(user), false, "user_registered")
	case errors.Is(err, repo.ErrUserAlreadyExists):
		l.Warn("register_failed", "status", 400, "reason", "email already registered")
		return nil, ErrDuplicateEmail
	case s.Repo != nil && s.Repo.Ping(ctx) == nil:
		l.Error("register_failed", "status", 500, "reason", "cannot create user", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}

	l.Warn("register_store_unavailable", "error", err)
	if s.Demo != nil && s.Demo.Has(in.Email) {
		l.Warn("register_failed", "status", 400, "reason", "email belongs to a demo account")
		return nil, ErrDuplicateEmail
	}

	transient := UserView{
		ID:       strconv.FormatInt(s.now().UnixMilli(), 10),
		Email:    in.Email,
		FullName: fullName(in.Nombre, in.ApellidoPaterno),
		Role:     models.RoleUser,
	}
	l.Info("register_successful", "source", "demo", "user_id", transient.ID)
	return s.finish(ctx, transient, true, "user_registered")
}

// TestDB reports the store clock, proving the store answers queries.
func (s *Service) TestDB(ctx context.Context) (string, error) {
	if s.Repo == nil {
		return "", ErrUnavailable
	}
	now, err := s.Repo.Now(ctx)
	if err != nil {
		logging.FromContext(ctx).With("svc", "auth.test_db").Error("test_db_failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return now, nil
}

func (s *Service) finish(ctx context.Context, u UserView, demo bool, eventType string) (*Result, error) {
	res := &Result{User: u, Demo: demo}

	if s.Tokens != nil {
		token, exp, err := s.Tokens.Issue(tokens.Subject{
			ID:       u.ID,
			Email:    u.Email,
			FullName: u.FullName,
			Role:     u.Role,
			Demo:     demo,
		})
		if err != nil {
			logging.FromContext(ctx).Error("issue_token_failed", "status", 500, "error", err)
			return nil, fmt.Errorf("issue token: %w", err)
		}
		res.Token, res.ExpiresAt = token, exp
	}

	events.Publish(ctx, s.Events, events.TopicUsers, u.ID, map[string]any{
		"type":   eventType,
		"userID": u.ID,
		"email":  u.Email,
		"role":   u.Role,
		"demo":   demo,
	})
	return res, nil
}
