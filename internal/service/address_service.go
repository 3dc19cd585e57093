package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/babyshop/api/internal/apperr"
	"github.com/babyshop/api/internal/location"
	"github.com/babyshop/api/internal/repository"
)

// maxAddressesPerUser caps the address book size.
const maxAddressesPerUser = 3

// AddressInput is the create/update payload after binding. Province and ward
// are codes from the location catalog.
type AddressInput struct {
	FullName          string
	Phone             string
	Label             string
	Province          string
	Ward              string
	AddressLine1      string
	AddressLine2      string
	PostalCode        string
	IsDefaultShipping bool
}

// AddressService manages a user's address book. Every operation is scoped to
// the owning user; cross-user lookups come back as NotFound, never Forbidden,
// so address ids leak nothing.
type AddressService struct {
	repo      *repository.AddressRepo
	locations *location.Index
}

func NewAddressService(repo *repository.AddressRepo, locations *location.Index) *AddressService {
	return &AddressService{repo: repo, locations: locations}
}

// List returns the user's addresses, default first.
func (s *AddressService) List(ctx context.Context, userID string) ([]repository.Address, error) {
	addrs, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Internal("")
	}
	return addrs, nil
}

// Get returns one of the user's addresses.
func (s *AddressService) Get(ctx context.Context, userID string, addressID uint64) (repository.Address, error) {
	a, err := s.repo.GetByID(ctx, userID, addressID)
	if err != nil {
		return repository.Address{}, apperr.Internal("")
	}
	if a == nil {
		return repository.Address{}, apperr.NotFound("address not found")
	}
	return *a, nil
}

// Create adds an address, enforcing the per-user cap and validating the
// province/ward pair against the location catalog.
func (s *AddressService) Create(ctx context.Context, userID string, in AddressInput) (repository.Address, error) {
	if err := s.validate(in); err != nil {
		return repository.Address{}, err
	}
	n, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return repository.Address{}, apperr.Internal("")
	}
	if n >= maxAddressesPerUser {
		return repository.Address{}, apperr.Validation("", "address limit reached")
	}

	a := buildAddress(userID, in)
	// First address becomes the default regardless of the flag, so a user
	// always has exactly one default once they have any address at all.
	if n == 0 {
		a.IsDefaultShipping = true
	}
	id, err := s.repo.Create(ctx, a)
	if err != nil {
		return repository.Address{}, apperr.Internal("could not create address")
	}
	return s.Get(ctx, userID, id)
}

// Update overwrites one of the user's addresses.
func (s *AddressService) Update(ctx context.Context, userID string, addressID uint64, in AddressInput) (repository.Address, error) {
	if err := s.validate(in); err != nil {
		return repository.Address{}, err
	}
	found, err := s.repo.GetByID(ctx, userID, addressID)
	if err != nil {
		return repository.Address{}, apperr.Internal("")
	}
	if found == nil {
		return repository.Address{}, apperr.NotFound("address not found")
	}
	// Unsetting the only default is rejected rather than silently leaving
	// the user without one.
	if found.IsDefaultShipping && !in.IsDefaultShipping {
		return repository.Address{}, apperr.Validation("", "set another address as default first")
	}

	a := buildAddress(userID, in)
	a.ID = addressID
	if err := s.repo.Update(ctx, a); err != nil {
		return repository.Address{}, apperr.Internal("")
	}
	return s.Get(ctx, userID, addressID)
}

// Delete removes one of the user's addresses. Deleting the default promotes
// nothing; the user picks a new default explicitly.
func (s *AddressService) Delete(ctx context.Context, userID string, addressID uint64) error {
	if err := s.repo.Delete(ctx, userID, addressID); err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("address not found")
		}
		return apperr.Internal("")
	}
	return nil
}

func (s *AddressService) validate(in AddressInput) error {
	details := []string{}
	if strings.TrimSpace(in.FullName) == "" {
		details = append(details, "fullName is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		details = append(details, "phone is required")
	}
	if strings.TrimSpace(in.AddressLine1) == "" {
		details = append(details, "addressLine1 is required")
	}
	if len(details) > 0 {
		return apperr.Validation("", details...)
	}
	if !s.locations.IsValidLocation(in.Province, in.Ward) {
		return apperr.Validation("", "province and ward do not match the location catalog")
	}
	return nil
}

func buildAddress(userID string, in AddressInput) repository.Address {
	a := repository.Address{
		UserID:            userID,
		FullName:          strings.TrimSpace(in.FullName),
		Phone:             strings.TrimSpace(in.Phone),
		Province:          in.Province,
		Ward:              in.Ward,
		AddressLine1:      strings.TrimSpace(in.AddressLine1),
		IsDefaultShipping: in.IsDefaultShipping,
	}
	if in.Label != "" {
		a.Label = sql.NullString{String: in.Label, Valid: true}
	}
	if in.AddressLine2 != "" {
		a.AddressLine2 = sql.NullString{String: in.AddressLine2, Valid: true}
	}
	if in.PostalCode != "" {
		a.PostalCode = sql.NullString{String: in.PostalCode, Valid: true}
	}
	return a
}
