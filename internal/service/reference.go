package service

import (
	"context"

	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/model"
)

// Saved-address and saved-package reference data.

func (s *ShipmentService) ListSavedAddresses(ctx context.Context) ([]*model.SavedAddress, error) {
	return s.addresses.FindAll(ctx)
}

func (s *ShipmentService) CreateSavedAddress(ctx context.Context, req dto.SavedAddressRequest) (*model.SavedAddress, error) {
	addr := &model.SavedAddress{
		Name:      req.Name,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
		Address2:  req.Address2,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Phone:     req.Phone,
		IsDefault: req.IsDefault,
	}
	if err := s.addresses.Insert(ctx, addr); err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *ShipmentService) DeleteSavedAddress(ctx context.Context, id string) error {
	return s.addresses.Delete(ctx, id)
}

func (s *ShipmentService) ListSavedPackages(ctx context.Context) ([]*model.SavedPackage, error) {
	return s.packages.FindAll(ctx)
}

func (s *ShipmentService) CreateSavedPackage(ctx context.Context, req dto.SavedPackageRequest) (*model.SavedPackage, error) {
	pkg := &model.SavedPackage{
		Name:      req.Name,
		Length:    req.Length,
		Width:     req.Width,
		Height:    req.Height,
		WeightLbs: req.WeightLbs,
		WeightOz:  req.WeightOz,
	}
	if err := s.packages.Insert(ctx, pkg); err != nil {
		return nil, err
	}
	return pkg, nil
}

func (s *ShipmentService) DeleteSavedPackage(ctx context.Context, id string) error {
	return s.packages.Delete(ctx, id)
}
