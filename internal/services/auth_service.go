package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"github.com/yukikurage/task-tracker-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailRequired        = errors.New("email is required")
	ErrEmailInvalid         = errors.New("email is invalid")
	ErrEmailTaken           = errors.New("email already exists")
	ErrNameRequired         = errors.New("name is required")
	ErrPasswordBlank        = errors.New("password is blank")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrSignupFailed         = errors.New("failed to create user")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Email    string
	Name     string
	Mobile   *string
	Password string
}

// NormalizeEmail trims and lower-cases an email address. Emails are
// compared case-insensitively everywhere.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup validates the input, hashes the password and stores the user.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	email := NormalizeEmail(input.Email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrEmailInvalid
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(input.Password) == "" {
		return nil, ErrPasswordBlank
	}

	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Signup: failed to check email %s: %v", email, err)
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("Signup: failed to hash password for %s: %v", email, err)
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:        email,
		Name:         name,
		Mobile:       normalizeMobile(input.Mobile),
		PasswordHash: string(hashedPassword),
		IsActive:     true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		log.Printf("Signup: failed to create user %s: %v", email, err)
		return nil, fmt.Errorf("%w: %v", ErrSignupFailed, err)
	}

	log.Printf("User %s created successfully", user.Email)
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

func normalizeMobile(mobile *string) *string {
	if mobile == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*mobile)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
