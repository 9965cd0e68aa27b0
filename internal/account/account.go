// Package account registers users, looks them up and logs them in.
package account

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"minitwitql/internal/apperr"
	"minitwitql/internal/auth"
	"minitwitql/internal/models"
	"minitwitql/internal/store"
)

// MsgInvalidCredentials is returned for every failed login, whether the
// account exists or not.
const MsgInvalidCredentials = "invalid email or password"

// Service implements registration, login and user lookups.
type Service struct {
	users  store.Users
	tokens *auth.Tokens
	log    *zap.Logger

	// dummyHash is compared against when no account matches a login, so a
	// miss costs as much as a wrong password.
	dummyHash string
	newID     func() string
}

// New returns a Service over users. It fails only if bcrypt does.
func New(users store.Users, tokens *auth.Tokens, log *zap.Logger) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := auth.HashPassword(uuid.NewString())
	if err != nil {
		return nil, errors.Wrap(err, "hashing dummy password")
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		log:       log,
		dummyHash: dummy,
		newID:     uuid.NewString,
	}, nil
}

// normalizeEmail folds the unique key so lookups ignore case and padding.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a user with a hashed password and returns the stored
// record. Email uniqueness is checked before the insert; two concurrent
// registrations of one email can still both succeed.
func (s *Service) Register(ctx context.Context, name, email, password string) (models.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	switch {
	case name == "":
		return models.User{}, apperr.NewValidation("You have to enter a name")
	case email == "" || !strings.Contains(email, "@"):
		return models.User{}, apperr.NewValidation("You have to enter a valid email address")
	case password == "":
		return models.User{}, apperr.NewValidation("You have to enter a password")
	case len(password) > auth.MaxPasswordLen:
		return models.User{}, apperr.NewValidation("The password must be at most %d bytes", auth.MaxPasswordLen)
	}

	_, err := s.users.ByEmail(ctx, email)
	switch {
	case err == nil:
		return models.User{}, apperr.NewValidation("The email %s is already registered", email)
	case !errors.Is(err, store.ErrNotFound):
		return models.User{}, s.internal(err, "users.byEmail")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, s.internal(err, "hash password")
	}
	u := models.User{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Password: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return models.User{}, s.internal(err, "users.create")
	}
	s.log.Info("user registered", zap.String("user_id", u.ID))
	return u, nil
}

// Login checks the credentials and issues a token. Unknown emails and wrong
// passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (models.Token, error) {
	u, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return models.Token{}, s.internal(err, "users.byEmail")
	}
	hash := u.Password
	if err != nil {
		hash = s.dummyHash
	}
	if !auth.CheckPassword(hash, password) || err != nil {
		return models.Token{}, apperr.NewValidation(MsgInvalidCredentials)
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return models.Token{}, s.internal(err, "issue token")
	}
	return models.Token{Token: token, UserID: u.ID}, nil
}

// ByID returns the user with id.
func (s *Service) ByID(ctx context.Context, id string) (models.User, error) {
	u, err := s.users.ByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NewNotFound("User", "id", id)
	}
	if err != nil {
		return models.User{}, s.internal(err, "users.byID")
	}
	return u, nil
}

// ByEmail returns the user registered with email.
func (s *Service) ByEmail(ctx context.Context, email string) (models.User, error) {
	u, err := s.users.ByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apperr.NewNotFound("User", "email", email)
	}
	if err != nil {
		return models.User{}, s.internal(err, "users.byEmail")
	}
	return u, nil
}

func (s *Service) internal(err error, op string) error {
	s.log.Error("store call failed", zap.String("op", op), zap.Error(err))
	return apperr.Wrap(err, op)
}
