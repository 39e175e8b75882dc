package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"warbler/internal/model"
	"warbler/internal/pkg/jwtutil"
	"warbler/internal/repository"
)

// DefaultBcryptCost is the work factor used when none is configured.
const DefaultBcryptCost = 12

// bcrypt ignores input past 72 bytes, so longer passwords are rejected.
const maxPasswordBytes = 72

// TokenRevoker stores ids of tokens that were logged out before expiry.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

type AuthConfig struct {
	JWTSecret     string
	JWTExpiration time.Duration
	BcryptCost    int
}

type AuthService struct {
	store   *repository.Store
	revoker TokenRevoker
	cfg     AuthConfig
	// missHash is compared against on unknown usernames so a miss costs
	// as much bcrypt work as a wrong password.
	missHash []byte
	compare  func(hash, password []byte) error
	notifier
}

type SignupInput struct {
	Username string `json:"username" validate:"required,max=64"`
	Email    string `json:"email" validate:"required,email,max=128"`
	Password string `json:"password" validate:"required"`
	ImageURL string `json:"image_url" validate:"omitempty,max=255"`
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *model.User
}

func NewAuthService(store *repository.Store, revoker TokenRevoker, cfg AuthConfig, publisher EventPublisher, log logrus.FieldLogger) *AuthService {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = DefaultBcryptCost
	}
	n := newNotifier(publisher, log)
	missHash, err := bcrypt.GenerateFromPassword([]byte("warbler unknown user"), cfg.BcryptCost)
	if err != nil {
		n.log.WithError(err).Warn("generate placeholder password hash failed")
	}
	return &AuthService{
		store:    store,
		revoker:  revoker,
		cfg:      cfg,
		missHash: missHash,
		compare:  bcrypt.CompareHashAndPassword,
		notifier: n,
	}
}

// Signup creates a user with a bcrypt hash of password. Collisions on
// username or email, including ones lost to a concurrent signup, return a
// *DuplicateKeyError.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)
	input.ImageURL = strings.TrimSpace(input.ImageURL)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	if len(input.Password) > maxPasswordBytes {
		return nil, &ValidationError{Field: "password", Message: "must be at most 72 bytes"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: string(hash),
		ImageURL:     input.ImageURL,
	}
	user.ApplyProfileDefaults()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := ensureUnique(ctx, tx, 0, user.Username, user.Email); err != nil {
			return err
		}
		return tx.Users.Create(ctx, user)
	})
	if err != nil {
		if isDuplicate(err) {
			return nil, &DuplicateKeyError{}
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user signed up")
	s.emit(ctx, model.EventUserSignedUp, user.ID, user.ID)
	return user, nil
}

// Authenticate returns the user when password matches the stored hash and
// nil otherwise. Only infrastructure failures are returned as errors.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.store.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = s.compare(s.missHash, []byte(password))
		return nil, nil
	}
	if err := s.compare([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.Authenticate(ctx, username, input.Password)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	token, claims, err := jwtutil.GenerateToken(s.cfg.JWTSecret, s.cfg.JWTExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

// Logout revokes tokenID until the moment the token would have expired anyway.
func (s *AuthService) Logout(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return ErrInvalidInput
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 || s.revoker == nil {
		return nil
	}
	return s.revoker.Revoke(ctx, tokenID, ttl)
}

func (s *AuthService) GetUserByID(ctx context.Context, id uint) (*model.User, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	user, err := s.store.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound(id)
	}
	return user, nil
}

// ensureUnique checks username and email against every user except selfID.
func ensureUnique(ctx context.Context, tx *repository.Store, selfID uint, username, email string) error {
	existingByName, err := tx.Users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existingByName != nil && existingByName.ID != selfID {
		return &DuplicateKeyError{Field: "username"}
	}

	existingByEmail, err := tx.Users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existingByEmail != nil && existingByEmail.ID != selfID {
		return &DuplicateKeyError{Field: "email"}
	}
	return nil
}
