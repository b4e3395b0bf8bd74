package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mealtrack/meal-tracker/internal/cache"
	"github.com/mealtrack/meal-tracker/internal/config"
	"github.com/mealtrack/meal-tracker/internal/domain"
	"github.com/mealtrack/meal-tracker/internal/logger"
	"github.com/mealtrack/meal-tracker/internal/metrics"
	"github.com/mealtrack/meal-tracker/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid username or password", domain.ErrUnauthenticated)
	ErrUsernameExists     = fmt.Errorf("%w: username already exists", domain.ErrConflict)
)

const passwordCost = 10

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// Session is the identity resolved from a token. Token is the token the
// caller should use from now on; it differs from the presented one when the
// presented token had expired and was reissued.
type Session struct {
	UserID   uuid.UUID
	Token    string
	Reissued bool
}

type RegisterInput struct {
	Username string
	Password string
	Profile  ProfileInput
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

// SessionManager issues and verifies session tokens. It consults the token
// cache first and falls back to signature verification plus a user lookup.
type SessionManager struct {
	users    repository.UserRepository
	tokens   cache.TokenCache
	secret   []byte
	ttl      time.Duration
	cacheTTL time.Duration
	now      func() time.Time
	rec      metrics.Recorder
	log      *logrus.Entry
}

func NewSessionManager(users repository.UserRepository, tokens cache.TokenCache, cfg *config.Config, rec metrics.Recorder, log *logrus.Logger) *SessionManager {
	if tokens == nil {
		tokens = cache.Noop{}
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = cfg.SessionTTL
	}
	return &SessionManager{
		users:    users,
		tokens:   tokens,
		secret:   []byte(cfg.JWTSecret),
		ttl:      cfg.SessionTTL,
		cacheTTL: cacheTTL,
		now:      time.Now,
		rec:      rec,
		log:      logger.Component(log, "session"),
	}
}

// IssueSession signs a token for userID expiring one session TTL from now.
func (s *SessionManager) IssueSession(userID uuid.UUID) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("session signing secret is not configured")
	}

	now := s.now()
	claims := SessionClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ParseSession verifies the token signature and decodes its claims. Expiry is
// not checked here; Authenticate decides what an expired token means.
func (s *SessionManager) ParseSession(tokenString string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid session token", domain.ErrUnauthenticated)
	}
	if claims.ExpiresAt == nil {
		return nil, fmt.Errorf("%w: session token has no expiry", domain.ErrUnauthenticated)
	}
	return claims, nil
}

// Authenticate resolves a token to a user. A cached snapshot short-circuits
// the lookup. Otherwise the token is verified and the user loaded; an expired
// token is replaced by a freshly issued one, which is stored on the user and
// returned in Session.Token. Cache failures never fail the call.
func (s *SessionManager) Authenticate(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		s.rec.RecordAuthFailure("missing_token")
		return nil, fmt.Errorf("%w: no session token provided", domain.ErrUnauthenticated)
	}

	if session, ok := s.fromCache(ctx, token); ok {
		return session, nil
	}

	claims, err := s.ParseSession(token)
	if err != nil {
		s.rec.RecordAuthFailure("invalid_token")
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		s.rec.RecordAuthFailure("invalid_token")
		return nil, fmt.Errorf("%w: invalid session token", domain.ErrUnauthenticated)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.rec.RecordAuthFailure("unknown_user")
			return nil, fmt.Errorf("%w: user not found", domain.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("load session user: %w", err)
	}

	if !s.now().Before(claims.ExpiresAt.Time) {
		fresh, err := s.IssueSession(user.ID)
		if err != nil {
			return nil, err
		}
		if err := s.users.UpdateSession(ctx, user.ID, &fresh); err != nil {
			return nil, fmt.Errorf("store reissued session: %w", err)
		}
		s.remember(ctx, user, fresh)
		s.rec.RecordSessionReissued()
		s.log.WithField("user_id", user.ID).Info("expired session token reissued")
		return &Session{UserID: user.ID, Token: fresh, Reissued: true}, nil
	}

	s.remember(ctx, user, token)
	return &Session{UserID: user.ID, Token: token}, nil
}

func (s *SessionManager) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if err := input.Profile.validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByUsername(ctx, input.Username)
	if err == nil && existing != nil {
		return nil, ErrUsernameExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), passwordCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		PasswordHash: string(hashed),
	}
	input.Profile.apply(user)

	token, err := s.IssueSession(user.ID)
	if err != nil {
		return nil, err
	}
	user.Session = &token

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameExists
		}
		return nil, err
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return &AuthResult{User: user, Token: token}, nil
}

// Login checks the password and returns a fresh token. The token stored on
// the user is left as is.
func (s *SessionManager) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	user, err := s.users.GetByUsername(ctx, input.Username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.rec.RecordAuthFailure("unknown_user")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		s.rec.RecordAuthFailure("bad_password")
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueSession(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// EndSession evicts the token from the cache and clears the user's stored
// token. The token itself stays signature-valid until it expires.
func (s *SessionManager) EndSession(ctx context.Context, userID uuid.UUID, token string) error {
	if token != "" {
		s.tokens.Delete(ctx, token)
	}
	if err := s.users.UpdateSession(ctx, userID, nil); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *SessionManager) fromCache(ctx context.Context, token string) (*Session, bool) {
	raw, ok := s.tokens.Get(ctx, token)
	if !ok {
		return nil, false
	}

	var snapshot domain.SessionSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil || snapshot.ID == uuid.Nil {
		s.log.WithError(err).Warn("discarding malformed cached session")
		return nil, false
	}
	return &Session{UserID: snapshot.ID, Token: token}, true
}

func (s *SessionManager) remember(ctx context.Context, user *domain.User, token string) {
	data, err := json.Marshal(user.Snapshot(token))
	if err != nil {
		s.log.WithError(err).Warn("failed to encode session snapshot")
		return
	}
	s.tokens.SetWithExpiry(ctx, token, s.cacheTTL, string(data))
}
