package services

import (
	"errors"
	"time"

	"github.com/melodyground/backend/internal/auth"
	"github.com/melodyground/backend/internal/config"
	"github.com/melodyground/backend/internal/models"
	"github.com/melodyground/backend/internal/repositories"
	"github.com/melodyground/backend/internal/types"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService implements registration, login and current-identity
// resolution on top of the user repository and the token package.
type AuthService struct {
	users         *repositories.UserRepository
	jwtSecret     []byte
	tokenValidity time.Duration
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		users:         &repositories.UserRepository{DB: db},
		jwtSecret:     []byte(cfg.JWTSecret),
		tokenValidity: cfg.TokenValidity,
	}
}

// Register creates a new user with a bcrypt-hashed password. The username
// check runs before the email check so a request conflicting on both is
// always reported as a username conflict. No token is issued; the caller
// logs in separately.
func (s *AuthService) Register(username, email, password string) (*models.User, error) {
	taken, err := s.users.UsernameExists(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, types.ErrDuplicateUsername
	}

	taken, err = s.users.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, types.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return s.users.Create(&models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
}

// Login verifies the password against the stored hash and issues a token.
// An unknown username and a wrong password produce the same failure so the
// response does not reveal which one it was.
func (s *AuthService) Login(username, password string) (string, *models.User, error) {
	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, types.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, types.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.Username, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return "", nil, err
	}

	return token, user, nil
}

// CurrentUser resolves a bearer token to the full user record. Any failure,
// expired or tampered token, or a username that no longer resolves, is
// reported as ErrUnauthenticated.
func (s *AuthService) CurrentUser(token string) (*models.User, error) {
	username, err := auth.GetUsernameFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, types.ErrUnauthenticated
	}

	user, err := s.users.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}
