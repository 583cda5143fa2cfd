package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/task-tracker-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: %v", ErrDuplicateEmail, err)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("failed to find user by id %d: %w", id, err)
	}
	return &user, nil
}

// FindByEmail finds a user by email, ignoring case
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email %s: %w", email, err)
	}
	return &user, nil
}

// FindExistingIDs returns the subset of ids that belong to stored users
func (r *GormUserRepository) FindExistingIDs(ctx context.Context, ids []uint64) ([]uint64, error) {
	existing := []uint64{}
	if len(ids) == 0 {
		return existing, nil
	}

	err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id IN ?", ids).
		Pluck("id", &existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up users: %w", err)
	}
	return existing, nil
}
