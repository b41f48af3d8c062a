package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	addressDomain "github.com/clinlix/service-booking/internal/domain/address"
	"github.com/clinlix/service-booking/pkg/domain"
)

// AddressModel is the GORM model for the addresses table.
type AddressModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Label     string    `gorm:"size:50"`
	Line1     string    `gorm:"not null;size:255"`
	Line2     string    `gorm:"size:255"`
	City      string    `gorm:"not null;size:100"`
	Postcode  string    `gorm:"size:20"`
	Country   string    `gorm:"not null;size:2"`
	Currency  string    `gorm:"not null;size:3"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (AddressModel) TableName() string {
	return "addresses"
}

// GormAddressRepository is the GORM-based implementation of the address repository.
type GormAddressRepository struct {
	db *gorm.DB
}

// NewGormAddressRepository creates a new GormAddressRepository.
func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

// FindByID retrieves an address by its identifier.
func (r *GormAddressRepository) FindByID(ctx context.Context, id uuid.UUID) (*addressDomain.Address, error) {
	var model AddressModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Address", id.String())
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return toDomainAddress(&model), nil
}

// FindByUserID retrieves all addresses owned by a user.
func (r *GormAddressRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*addressDomain.Address, error) {
	var models []AddressModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user addresses: %w", err)
	}

	addresses := make([]*addressDomain.Address, len(models))
	for i, m := range models {
		addresses[i] = toDomainAddress(&m)
	}
	return addresses, nil
}

// Save persists a new address.
func (r *GormAddressRepository) Save(ctx context.Context, addr *addressDomain.Address) error {
	if err := r.db.WithContext(ctx).Create(toAddressModel(addr)).Error; err != nil {
		return fmt.Errorf("failed to save address: %w", err)
	}
	return nil
}

// Update persists changes to an existing address.
func (r *GormAddressRepository) Update(ctx context.Context, addr *addressDomain.Address) error {
	result := r.db.WithContext(ctx).
		Model(&AddressModel{}).
		Where("id = ?", addr.ID()).
		Updates(map[string]interface{}{
			"label":      addr.Label(),
			"line1":      addr.Line1(),
			"line2":      addr.Line2(),
			"city":       addr.City(),
			"postcode":   addr.Postcode(),
			"updated_at": addr.UpdatedAt(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Address", addr.ID().String())
	}
	return nil
}

// Delete removes an address.
func (r *GormAddressRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&AddressModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Address", id.String())
	}
	return nil
}

func toAddressModel(addr *addressDomain.Address) *AddressModel {
	return &AddressModel{
		ID:        addr.ID(),
		UserID:    addr.UserID(),
		Label:     addr.Label(),
		Line1:     addr.Line1(),
		Line2:     addr.Line2(),
		City:      addr.City(),
		Postcode:  addr.Postcode(),
		Country:   addr.Country(),
		Currency:  addr.Currency(),
		CreatedAt: addr.CreatedAt(),
		UpdatedAt: addr.UpdatedAt(),
	}
}

func toDomainAddress(m *AddressModel) *addressDomain.Address {
	return addressDomain.Reconstruct(
		m.ID,
		m.UserID,
		m.Label,
		m.Line1,
		m.Line2,
		m.City,
		m.Postcode,
		m.Country,
		m.Currency,
		m.CreatedAt,
		m.UpdatedAt,
	)
}
