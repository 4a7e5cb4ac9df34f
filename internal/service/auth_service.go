package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/Ch4rC0M1n0U/osintgenerator/internal/domain"
	"github.com/Ch4rC0M1n0U/osintgenerator/internal/security/auth"
)

// matriculePattern matches a Belgian police service number: "4" followed by
// eight digits.
var matriculePattern = regexp.MustCompile(`^4\d{8}$`)

// requiredEmailDomain restricts registration to service addresses.
const requiredEmailDomain = "@police.belgium.eu"

var supportedLanguages = map[string]bool{"en": true, "fr": true, "nl": true}

// AuthService handles operator account registration and authentication.
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
	logger   *slog.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo domain.UserRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		logger:   logger,
	}
}

// RegisterInput carries the fields required to open an operator account.
type RegisterInput struct {
	FirstName string
	LastName  string
	Matricule string
	Email     string
	Password  string
	Language  string
}

// AuthResult is returned on successful registration or login.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresIn int // seconds
}

// Register creates a new operator account and signs them in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(&input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: hash password", domain.ErrPersistenceFailed)
	}

	user := &domain.User{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Matricule:    input.Matricule,
		Email:        strings.ToLower(input.Email),
		PasswordHash: string(hash),
		Language:     input.Language,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or matricule already registered", domain.ErrDuplicate)
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.Info("operator registered",
		slog.Int64("user_id", user.ID),
		slog.String("matricule", user.Matricule),
	)

	return s.issueToken(user)
}

// Login authenticates an operator by email and password. Unknown emails and
// wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Info("login attempt with unknown email", slog.String("email", email))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.Int64("user_id", user.ID))
		return nil, domain.ErrInvalidCredentials
	}

	if err := s.userRepo.TouchLastLogin(ctx, user.ID); err != nil {
		// Not worth failing the login over.
		s.logger.Warn("failed to stamp last login",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.Info("operator logged in",
		slog.Int64("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return s.issueToken(user)
}

// UpdateLanguage changes the operator's UI language preference.
func (s *AuthService) UpdateLanguage(ctx context.Context, userID int64, language string) error {
	if !supportedLanguages[language] {
		return fmt.Errorf("%w: language must be one of en, fr, nl", domain.ErrInvalidInput)
	}
	return s.userRepo.UpdateLanguage(ctx, userID, language)
}

// GetUser returns the operator account for a verified token subject.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, user.Email, user.Language, user.FirstName, user.LastName)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{
		User:      user,
		Token:     token,
		ExpiresIn: int(s.tokens.TTL().Seconds()),
	}, nil
}

func validateRegisterInput(input *RegisterInput) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return fmt.Errorf("%w: first and last name are required", domain.ErrInvalidInput)
	}
	if !matriculePattern.MatchString(input.Matricule) {
		return fmt.Errorf("%w: matricule must be '4' followed by 8 digits", domain.ErrInvalidInput)
	}
	if !strings.HasSuffix(strings.ToLower(input.Email), requiredEmailDomain) {
		return fmt.Errorf("%w: email must be a %s address", domain.ErrInvalidInput, requiredEmailDomain)
	}
	if err := validatePassword(input.Password); err != nil {
		return err
	}
	if input.Language == "" {
		input.Language = "en"
	}
	if !supportedLanguages[input.Language] {
		return fmt.Errorf("%w: language must be one of en, fr, nl", domain.ErrInvalidInput)
	}
	return nil
}

// validatePassword enforces the service password policy: at least 12
// characters with an uppercase letter, a lowercase letter, a digit, and a
// special character.
func validatePassword(password string) error {
	if len(password) < 12 {
		return fmt.Errorf("%w: password must be at least 12 characters", domain.ErrInvalidInput)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}

	if !hasUpper || !hasLower || !hasDigit || !hasSpecial {
		return fmt.Errorf("%w: password needs upper, lower, digit, and special characters", domain.ErrInvalidInput)
	}
	return nil
}
