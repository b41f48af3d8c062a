package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	addressDomain "github.com/clinlix/service-booking/internal/domain/address"
	"github.com/clinlix/service-booking/pkg/domain"
)

// CreateAddressRequest holds the data needed to register a service location.
type CreateAddressRequest struct {
	Label    string `json:"label"`
	Line1    string `json:"line1" binding:"required"`
	Line2    string `json:"line2"`
	City     string `json:"city" binding:"required"`
	Postcode string `json:"postcode"`
	Country  string `json:"country" binding:"required"`
	Currency string `json:"currency" binding:"required"`
}

// UpdateAddressRequest holds the mutable address fields.
type UpdateAddressRequest struct {
	Label    string `json:"label"`
	Line1    string `json:"line1" binding:"required"`
	Line2    string `json:"line2"`
	City     string `json:"city" binding:"required"`
	Postcode string `json:"postcode"`
}

// AddressDTO is the response representation of an address.
type AddressDTO struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Label     string    `json:"label"`
	Line1     string    `json:"line1"`
	Line2     string    `json:"line2,omitempty"`
	City      string    `json:"city"`
	Postcode  string    `json:"postcode"`
	Country   string    `json:"country"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AddressService manages a customer's service locations.
type AddressService struct {
	addresses addressDomain.Repository
	logger    *zap.Logger
}

// NewAddressService creates a new AddressService.
func NewAddressService(addresses addressDomain.Repository, logger *zap.Logger) *AddressService {
	return &AddressService{addresses: addresses, logger: logger}
}

// CreateAddress registers a new address for the calling user.
func (s *AddressService) CreateAddress(ctx context.Context, userID uuid.UUID, req CreateAddressRequest) (*AddressDTO, error) {
	addr, err := addressDomain.NewAddress(userID, req.Label, req.Line1, req.Line2, req.City, req.Postcode, req.Country, req.Currency)
	if err != nil {
		return nil, err
	}

	if err := s.addresses.Save(ctx, addr); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	result := toAddressDTO(addr)
	return &result, nil
}

// GetUserAddresses lists the calling user's addresses.
func (s *AddressService) GetUserAddresses(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	addrs, err := s.addresses.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	dtos := make([]AddressDTO, len(addrs))
	for i, addr := range addrs {
		dtos[i] = toAddressDTO(addr)
	}
	return dtos, nil
}

// UpdateAddress applies changes to an address owned by the calling user.
func (s *AddressService) UpdateAddress(ctx context.Context, addressID, userID uuid.UUID, req UpdateAddressRequest) (*AddressDTO, error) {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if !addr.BelongsTo(userID) {
		return nil, domain.NewUnauthorizedError("address does not belong to this user")
	}

	if err := addr.UpdateDetails(req.Label, req.Line1, req.Line2, req.City, req.Postcode); err != nil {
		return nil, err
	}
	if err := s.addresses.Update(ctx, addr); err != nil {
		return nil, domain.NewPersistenceError(err)
	}

	result := toAddressDTO(addr)
	return &result, nil
}

// DeleteAddress removes an address owned by the calling user.
func (s *AddressService) DeleteAddress(ctx context.Context, addressID, userID uuid.UUID) error {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return err
	}
	if !addr.BelongsTo(userID) {
		return domain.NewUnauthorizedError("address does not belong to this user")
	}
	return s.addresses.Delete(ctx, addressID)
}

func toAddressDTO(addr *addressDomain.Address) AddressDTO {
	return AddressDTO{
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
