package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipping-label-service/internal/model"
)

// SeedReferenceData inserts the starter saved addresses and packages
// when the collections are empty, so a fresh deployment has a default
// ship-from address for the import autofill.
func SeedReferenceData(ctx context.Context, addresses *MongoSavedAddressRepository, packages *MongoSavedPackageRepository, logger *zap.Logger) error {
	existing, err := addresses.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		for _, a := range seedAddresses() {
			addr := a
			if err := addresses.Insert(ctx, &addr); err != nil {
				return err
			}
		}
		logger.Info("seeded saved addresses", zap.Int("count", len(seedAddresses())))
	}

	existingPkgs, err := packages.FindAll(ctx)
	if err != nil {
		return err
	}
	if len(existingPkgs) == 0 {
		for _, p := range seedPackages() {
			pkg := p
			if err := packages.Insert(ctx, &pkg); err != nil {
				return err
			}
		}
		logger.Info("seeded saved packages", zap.Int("count", len(seedPackages())))
	}

	return nil
}

func seedAddresses() []model.SavedAddress {
	return []model.SavedAddress{
		{
			Name:      "Print TTS",
			FirstName: "Print",
			LastName:  "TTS",
			Address:   "502 W Arrow Hwy, STE P",
			City:      "San Dimas",
			State:     "CA",
			ZipCode:   "91773",
			IsDefault: true,
		},
		{
			Name:      "Print TTS",
			FirstName: "Print",
			LastName:  "TTS",
			Address:   "500 W Foothill Blvd, STE P",
			City:      "Claremont",
			State:     "CA",
			ZipCode:   "91711",
		},
		{
			Name:      "Print TTS",
			FirstName: "Print",
			LastName:  "TTS",
			Address:   "1170 Grove Ave",
			City:      "Ontario",
			State:     "CA",
			ZipCode:   "91764",
		},
	}
}

func seedPackages() []model.SavedPackage {
	return []model.SavedPackage{
		{
			Name:      "Light Package",
			Length:    decimal.NewFromInt(6),
			Width:     decimal.NewFromInt(6),
			Height:    decimal.NewFromInt(6),
			WeightLbs: 1,
			WeightOz:  0,
		},
		{
			Name:      "Medium Package",
			Length:    decimal.NewFromInt(12),
			Width:     decimal.NewFromInt(10),
			Height:    decimal.NewFromInt(8),
			WeightLbs: 5,
			WeightOz:  8,
		},
		{
			Name:      "Heavy Package",
			Length:    decimal.NewFromInt(18),
			Width:     decimal.NewFromInt(14),
			Height:    decimal.NewFromInt(12),
			WeightLbs: 20,
			WeightOz:  0,
		},
	}
}
