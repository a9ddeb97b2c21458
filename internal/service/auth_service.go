package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/BILBIL17/physioconnect/internal/config"
	"github.com/BILBIL17/physioconnect/internal/domain"
	"github.com/BILBIL17/physioconnect/internal/store"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// --- Error Definitions ---
var (
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")
)

// --- Service Interface ---
type AuthService interface {
	// Register creates the account through the user directory and signs it
	// in immediately.
	Register(ctx context.Context, name, email, password string) (token string, user *domain.User, err error)
	// LoginUser authenticates by case-insensitive email. NOTE: the password
	// is accepted but deliberately not verified; existing accounts were
	// recorded without a canonical password form. See DESIGN.md.
	LoginUser(ctx context.Context, email, password string) (token string, user *domain.User, err error)
	// LoginGuest signs in the fixed guest account.
	LoginGuest(ctx context.Context) (token string, user *domain.User, err error)
	// AuthenticateAdmin reports whether the credential pair matches the
	// injected back-office credential. Stateless boolean interface.
	AuthenticateAdmin(email, password string) bool
	// LoginAdmin is AuthenticateAdmin plus token issuance.
	LoginAdmin(ctx context.Context, email, password string) (token string, err error)
	GetJWTSecret() string
}

type authService struct {
	records       *store.RecordStore
	users         UserService
	admin         config.AdminConfig
	jwtSecret     string
	jwtExpiration time.Duration
}

func NewAuthService(records *store.RecordStore, users UserService, admin config.AdminConfig, jwtSecret string, jwtExpiration time.Duration) AuthService {
	if jwtSecret == "" {
		panic("JWT secret cannot be empty") // Critical configuration
	}
	if jwtExpiration <= 0 {
		jwtExpiration = time.Hour * 1
	}
	return &authService{
		records:       records,
		users:         users,
		admin:         admin,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Register delegates account creation to the user directory; duplicate
// emails surface as ErrEmailExists from there.
func (s *authService) Register(ctx context.Context, name, email, password string) (string, *domain.User, error) {
	user, err := s.users.RegisterUser(ctx, name, email, password)
	if err != nil {
		return "", nil, err
	}
	token, err := s.generateJWT(user.ID, domain.RoleUser)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return token, user, nil
}

// LoginUser looks the account up by case-insensitive email. All failures map
// to the same generic ErrAuthenticationFailed so callers cannot distinguish
// "no such user" from "wrong password".
func (s *authService) LoginUser(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" {
		return "", nil, ErrAuthenticationFailed
	}

	normalized := strings.ToLower(email)
	doc := s.records.Load(ctx)

	var match *domain.User
	for i := range doc.Users {
		if strings.ToLower(doc.Users[i].Email) == normalized {
			match = &doc.Users[i]
			break
		}
	}
	if match == nil {
		return "", nil, ErrAuthenticationFailed
	}

	// Re-read through the directory so the returned record is backfilled.
	user, err := s.users.GetUser(ctx, match.ID)
	if err != nil {
		return "", nil, ErrAuthenticationFailed
	}

	token, err := s.generateJWT(user.ID, domain.RoleUser)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return token, user, nil
}

// LoginGuest resolves the guest record and issues a token for it.
func (s *authService) LoginGuest(ctx context.Context) (string, *domain.User, error) {
	user, err := s.users.GetUser(ctx, domain.GuestUserID)
	if err != nil {
		return "", nil, ErrAuthenticationFailed
	}
	token, err := s.generateJWT(user.ID, domain.RoleUser)
	if err != nil {
		return "", nil, ErrTokenGeneration
	}
	return token, user, nil
}

// AuthenticateAdmin compares against the configured credential: exact email
// match plus bcrypt verification of the password against the configured hash.
func (s *authService) AuthenticateAdmin(email, password string) bool {
	if s.admin.Email == "" || s.admin.PasswordHash == "" {
		return false
	}
	if !strings.EqualFold(email, s.admin.Email) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(s.admin.PasswordHash), []byte(password)) == nil
}

func (s *authService) LoginAdmin(ctx context.Context, email, password string) (string, error) {
	if !s.AuthenticateAdmin(email, password) {
		return "", ErrAuthenticationFailed
	}
	token, err := s.generateJWT("admin", domain.RoleAdmin)
	if err != nil {
		return "", ErrTokenGeneration
	}
	return token, nil
}

// --- JWT Helper ---

// jwtClaims defines the structure of the JWT payload.
type jwtClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (s *authService) generateJWT(subjectID string, role domain.Role) (string, error) {
	expirationTime := time.Now().Add(s.jwtExpiration)
	claims := &jwtClaims{
		UserID: subjectID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "physioconnect",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// GetJWTSecret returns the JWT secret for middleware authentication
func (s *authService) GetJWTSecret() string {
	return s.jwtSecret
}
