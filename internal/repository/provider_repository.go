package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	providerDomain "github.com/clinlix/service-booking/internal/domain/provider"
	"github.com/clinlix/service-booking/pkg/domain"
)

// ProviderProfileModel is the GORM model for the provider_profiles table.
type ProviderProfileModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	DisplayName string    `gorm:"not null;size:100"`
	Active      bool      `gorm:"not null;default:true"`
}

// TableName returns the table name for the GORM model.
func (ProviderProfileModel) TableName() string {
	return "provider_profiles"
}

// ProviderAvailabilityModel is the GORM model for the provider_availability table.
type ProviderAvailabilityModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProviderID uuid.UUID `gorm:"type:uuid;index:idx_provider_date;not null"`
	Date       time.Time `gorm:"index:idx_provider_date;not null"`
}

// TableName returns the table name for the GORM model.
func (ProviderAvailabilityModel) TableName() string {
	return "provider_availability"
}

// GormProviderRepository is the GORM-based implementation of the provider repository.
type GormProviderRepository struct {
	db *gorm.DB
}

// NewGormProviderRepository creates a new GormProviderRepository.
func NewGormProviderRepository(db *gorm.DB) *GormProviderRepository {
	return &GormProviderRepository{db: db}
}

// FindByID retrieves a provider profile by its identifier.
func (r *GormProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*providerDomain.Profile, error) {
	var model ProviderProfileModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Provider", id.String())
		}
		return nil, fmt.Errorf("failed to find provider: %w", err)
	}
	return toDomainProfile(&model), nil
}

// FindByUserID retrieves the provider profile owned by a platform user.
func (r *GormProviderRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*providerDomain.Profile, error) {
	var model ProviderProfileModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Provider", userID.String())
		}
		return nil, fmt.Errorf("failed to find provider by user: %w", err)
	}
	return toDomainProfile(&model), nil
}

// HasAvailability reports whether the provider has an availability record
// for the given calendar date.
func (r *GormProviderRepository) HasAvailability(ctx context.Context, providerID uuid.UUID, date time.Time) (bool, error) {
	day := time.Date(date.UTC().Year(), date.UTC().Month(), date.UTC().Day(), 0, 0, 0, 0, time.UTC)

	var count int64
	if err := r.db.WithContext(ctx).Model(&ProviderAvailabilityModel{}).
		Where("provider_id = ? AND date = ?", providerID, day).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check provider availability: %w", err)
	}
	return count > 0, nil
}

func toDomainProfile(m *ProviderProfileModel) *providerDomain.Profile {
	return &providerDomain.Profile{
		ID:          m.ID,
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Active:      m.Active,
	}
}
