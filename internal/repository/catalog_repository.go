package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/clinlix/service-booking/internal/domain/catalog"
	"github.com/clinlix/service-booking/pkg/domain"
)

// ServicePackageModel is the GORM model for the service_packages table.
type ServicePackageModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"not null;size:100"`
	Description         string    `gorm:"size:500"`
	OneTimePriceCents   int64     `gorm:"not null"`
	RecurringPriceCents int64     `gorm:"not null"`
	Active              bool      `gorm:"not null;default:true;index"`
}

// TableName returns the table name for the GORM model.
func (ServicePackageModel) TableName() string {
	return "service_packages"
}

// AddonModel is the GORM model for the addons table.
type AddonModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"not null;size:100"`
	PriceCents int64     `gorm:"not null"`
	Active     bool      `gorm:"not null;default:true;index"`
}

// TableName returns the table name for the GORM model.
func (AddonModel) TableName() string {
	return "addons"
}

// GormCatalogRepository is the GORM-based implementation of the catalog repository.
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewGormCatalogRepository creates a new GormCatalogRepository.
func NewGormCatalogRepository(db *gorm.DB) *GormCatalogRepository {
	return &GormCatalogRepository{db: db}
}

// FindPackageByID retrieves a service package by its identifier.
func (r *GormCatalogRepository) FindPackageByID(ctx context.Context, id uuid.UUID) (*catalog.ServicePackage, error) {
	var model ServicePackageModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("ServicePackage", id.String())
		}
		return nil, fmt.Errorf("failed to find service package: %w", err)
	}
	return toDomainPackage(&model), nil
}

// FindAddonsByIDs retrieves the addons matching the given identifiers.
func (r *GormCatalogRepository) FindAddonsByIDs(ctx context.Context, ids []uuid.UUID) ([]*catalog.Addon, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var models []AddonModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find addons: %w", err)
	}

	addons := make([]*catalog.Addon, len(models))
	for i, m := range models {
		addons[i] = toDomainAddon(&m)
	}
	return addons, nil
}

// ListPackages retrieves all active packages.
func (r *GormCatalogRepository) ListPackages(ctx context.Context) ([]*catalog.ServicePackage, error) {
	var models []ServicePackageModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list service packages: %w", err)
	}

	packages := make([]*catalog.ServicePackage, len(models))
	for i, m := range models {
		packages[i] = toDomainPackage(&m)
	}
	return packages, nil
}

// ListAddons retrieves all active addons.
func (r *GormCatalogRepository) ListAddons(ctx context.Context) ([]*catalog.Addon, error) {
	var models []AddonModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list addons: %w", err)
	}

	addons := make([]*catalog.Addon, len(models))
	for i, m := range models {
		addons[i] = toDomainAddon(&m)
	}
	return addons, nil
}

func toDomainPackage(m *ServicePackageModel) *catalog.ServicePackage {
	return &catalog.ServicePackage{
		ID:                  m.ID,
		Name:                m.Name,
		Description:         m.Description,
		OneTimePriceCents:   m.OneTimePriceCents,
		RecurringPriceCents: m.RecurringPriceCents,
		Active:              m.Active,
	}
}

func toDomainAddon(m *AddonModel) *catalog.Addon {
	return &catalog.Addon{
		ID:         m.ID,
		Name:       m.Name,
		PriceCents: m.PriceCents,
		Active:     m.Active,
	}
}
