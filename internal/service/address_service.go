package service

import (
	"context"
	"strings"

	"github.com/RoyceAzure/lab/storefront/internal/apperr"
	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

const defaultCountry = "Nepal"

type IAddressService interface {
	ListAddresses(ctx context.Context, userID uint) ([]model.Address, error)
	// CreateAddress stores an address owned by userID, country defaults to Nepal.
	//
	// Errors:
	//   - apperr.BadRequestCode 400: street, city, state or zip code missing
	CreateAddress(ctx context.Context, userID uint, address model.Address) (*model.Address, error)
}

type AddressService struct {
	addresses db.IAddressRepository
}

func NewAddressService(addresses db.IAddressRepository) *AddressService {
	mustNotNil(addresses, "address service initialization failed: address repository cannot be nil")
	return &AddressService{addresses: addresses}
}

func (s *AddressService) ListAddresses(ctx context.Context, userID uint) ([]model.Address, error) {
	addresses, err := s.addresses.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}
	if addresses == nil {
		addresses = []model.Address{}
	}
	return addresses, nil
}

func (s *AddressService) CreateAddress(ctx context.Context, userID uint, address model.Address) (*model.Address, error) {
	address.ID = 0
	address.UserID = userID
	address.Street = strings.TrimSpace(address.Street)
	address.City = strings.TrimSpace(address.City)
	address.State = strings.TrimSpace(address.State)
	address.ZipCode = strings.TrimSpace(address.ZipCode)
	address.Country = strings.TrimSpace(address.Country)

	var missing []string
	for _, f := range []struct{ name, value string }{
		{"street", address.Street},
		{"city", address.City},
		{"state", address.State},
		{"zip_code", address.ZipCode},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, apperr.New(apperr.BadRequestCode, "%s: This field is required.", strings.Join(missing, ", "))
	}
	if address.Country == "" {
		address.Country = defaultCountry
	}

	if err := s.addresses.CreateAddress(ctx, &address); err != nil {
		return nil, err
	}
	return &address, nil
}

var _ IAddressService = (*AddressService)(nil)
