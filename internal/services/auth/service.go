package authservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"mdexport/internal/models"
	"mdexport/internal/validator"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"
)

const pkg = "authService/"

type AuthService struct {
	log           *slog.Logger
	userAdder     UserAdder
	userProvider  UserProvider
	sessionStorer SessionStorer
	tickets       TicketReleaser
	adminToken    string
	now           func() time.Time
}

func New(
	log *slog.Logger,
	userAdder UserAdder,
	userProvider UserProvider,
	sessionStorer SessionStorer,
	tickets TicketReleaser,
	adminToken string,
) *AuthService {
	return &AuthService{
		log:           log,
		userAdder:     userAdder,
		userProvider:  userProvider,
		sessionStorer: sessionStorer,
		tickets:       tickets,
		adminToken:    adminToken,
		now:           time.Now,
	}
}

func (a *AuthService) Register(ctx context.Context, login string, password string, token string) (string, error) {
	op := pkg + "Register"

	log := a.log.With(slog.String("op", op))

	log.Debug("attempting to register user")

	if token != a.adminToken {
		log.Warn("invalid admin token")
		return "", models.ErrForbidden
	}

	if !validator.IsValidLogin(login) || !validator.IsValidPassword(password) {
		log.Warn("invalid login or password format")
		return "", models.ErrInvalidParams
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", slog.String("error", err.Error()))
		return "", models.ErrInternal
	}

	user := models.User{
		ID:       uuid.NewV4().String(),
		Login:    login,
		PassHash: passHash,
	}

	err = a.userAdder.AddUser(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrUserExists) {
			log.Warn("user already exists", slog.String("login", user.Login))
			return "", models.ErrUserExists
		}

		log.Error("failed to add user", slog.String("error", err.Error()))
		return "", models.ErrInternal
	}

	log.Debug("user registered successfully")

	return user.Login, nil
}

// sessionRecord is what the session store keeps under a login token.
type sessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Login     string    `json:"login"`
	IssuedAt  time.Time `json:"issued_at"`
}

// Login opens a session and returns its token together with the session
// identity downloads are bound to.
func (a *AuthService) Login(ctx context.Context, login string, password string) (string, models.Session, error) {
	op := pkg + "Login"

	log := a.log.With(slog.String("op", op))

	log.Debug("attempting to login user")

	user, err := a.userProvider.UserByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Info("user not found", slog.String("login", login))
			return "", models.Session{}, fmt.Errorf("%s: %w", op, models.ErrUserNotFound)
		}

		log.Error("failed to get user", slog.String("error", err.Error()))
		return "", models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := bcrypt.CompareHashAndPassword(user.PassHash, []byte(password)); err != nil {
		log.Info("invalid credentials", slog.String("login", login))
		return "", models.Session{}, fmt.Errorf("%s: %w", op, models.ErrInvalidCredentials)
	}

	token := uuid.NewV4().String()
	session := models.NewSession(token, user.ID)

	record, err := json.Marshal(sessionRecord{
		SessionID: session.ID,
		UserID:    user.ID,
		Login:     user.Login,
		IssuedAt:  a.now().UTC(),
	})
	if err != nil {
		log.Error("failed to marshal session", slog.String("error", err.Error()))
		return "", models.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.sessionStorer.SaveSession(ctx, token, string(record)); err != nil {
		log.Error("failed to store session", slog.String("error", err.Error()))
		return "", models.Session{}, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("session opened", slog.String("user_id", user.ID))

	return token, session, nil
}

// Authenticate resolves a token into its user and session. A stored record
// that was not issued for this token is rejected like an unknown one.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*models.User, models.Session, error) {
	op := pkg + "Authenticate"

	log := a.log.With(slog.String("op", op))

	if token == "" {
		return nil, models.Session{}, models.ErrInvalidCredentials
	}

	raw, err := a.sessionStorer.UserByToken(ctx, token)
	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			log.Debug("session not found")
			return nil, models.Session{}, models.ErrInvalidCredentials
		}
		log.Error("failed to read session", slog.String("error", err.Error()))
		return nil, models.Session{}, models.ErrInternal
	}

	var record sessionRecord

	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		log.Error("failed to unmarshal session", slog.String("error", err.Error()))
		return nil, models.Session{}, models.ErrInternal
	}

	session := models.NewSession(token, record.UserID)
	if record.UserID == "" || record.SessionID != session.ID {
		log.Warn("session record does not match token", slog.String("user_id", record.UserID))
		return nil, models.Session{}, models.ErrInvalidCredentials
	}

	return &models.User{ID: record.UserID, Login: record.Login}, session, nil
}

// Logout closes the session and releases the downloads still pending on it.
// Tickets are released even when the session already expired.
func (a *AuthService) Logout(ctx context.Context, token string) error {
	op := pkg + "Logout"

	log := a.log.With(slog.String("op", op))

	if token == "" {
		return models.ErrSessionNotFound
	}

	err := a.sessionStorer.DeleteSession(ctx, token)

	if a.tickets != nil {
		if released := a.tickets.Release(models.NewSession(token, "").ID); released > 0 {
			log.Debug("pending downloads released", slog.Int("count", released))
		}
	}

	if err != nil {
		if errors.Is(err, models.ErrSessionNotFound) {
			log.Warn("session not found")
			return models.ErrSessionNotFound
		}
		log.Error("failed to delete session", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("session closed")

	return nil
}
