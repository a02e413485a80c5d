package service

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/model"
	"shipping-label-service/internal/pricing"
)

// BulkApply overwrites the ship-from block and/or the package fields
// for every targeted shipment. Each target is mutated and saved
// independently; a failed member is itemized, never rolled back over.
func (s *ShipmentService) BulkApply(ctx context.Context, req dto.BulkUpdateRequest) (*dto.BulkResultResponse, error) {
	if req.AddressID == "" && req.PackageID == "" {
		return nil, ErrNothingToApply
	}

	addr, pkg, err := s.loadBulkSources(ctx, req.AddressID, req.PackageID)
	if err != nil {
		return nil, err
	}

	shipments, err := s.shipments.FindByIDs(ctx, req.ShipmentIDs)
	if err != nil {
		return nil, err
	}

	targetErrs := notFoundTargets(req.ShipmentIDs, shipments)
	processed := 0

	for _, shipment := range shipments {
		if addr != nil {
			applySavedAddress(shipment, addr)
		}
		if pkg != nil {
			applySavedPackage(shipment, pkg)
		}
		shipment.Status = deriveStatus(shipment)

		if err := s.shipments.Save(ctx, shipment); err != nil {
			targetErrs = append(targetErrs, targetError(shipment.ID, err))
			continue
		}
		processed++
	}

	s.logger.Info("bulk update completed",
		zap.Int("targets", len(req.ShipmentIDs)),
		zap.Int("processed", processed),
		zap.Int("errors", len(targetErrs)),
	)

	return bulkResult(processed, targetErrs), nil
}

func (s *ShipmentService) loadBulkSources(ctx context.Context, addressID, packageID string) (addr *model.SavedAddress, pkg *model.SavedPackage, err error) {
	if addressID != "" {
		addr, err = s.addresses.FindByID(ctx, addressID)
		if err != nil {
			return nil, nil, err
		}
	}
	if packageID != "" {
		pkg, err = s.packages.FindByID(ctx, packageID)
		if err != nil {
			return nil, nil, err
		}
	}
	return addr, pkg, nil
}

// BulkService assigns a shipping service (or resolves most_affordable)
// and locks in the price per target. Targets without a usable weight
// are skipped and itemized rather than aborting the batch.
func (s *ShipmentService) BulkService(ctx context.Context, req dto.BulkServiceUpdateRequest) (*dto.BulkResultResponse, error) {
	shipments, err := s.shipments.FindByIDs(ctx, req.ShipmentIDs)
	if err != nil {
		return nil, err
	}

	targetErrs := notFoundTargets(req.ShipmentIDs, shipments)
	processed := 0

	for _, shipment := range shipments {
		serviceID := req.Service
		price := decimal.Zero

		if req.Service == pricing.MostAffordable {
			svc, cheapest, err := pricing.CheapestService(shipment.WeightLbs, shipment.WeightOz)
			if err != nil {
				targetErrs = append(targetErrs, targetError(shipment.ID, ErrServiceNotAssignable))
				continue
			}
			serviceID = svc.ID
			price = cheapest
		} else {
			p, err := pricing.Price(req.Service, shipment.WeightLbs, shipment.WeightOz)
			if err != nil {
				if errors.Is(err, pricing.ErrMissingWeight) {
					targetErrs = append(targetErrs, targetError(shipment.ID, ErrServiceNotAssignable))
					continue
				}
				return nil, err
			}
			price = p
		}

		shipment.ShippingService = serviceID
		locked := price
		shipment.CalculatedPrice = &locked

		if err := s.shipments.Save(ctx, shipment); err != nil {
			targetErrs = append(targetErrs, targetError(shipment.ID, err))
			continue
		}
		processed++
	}

	s.logger.Info("bulk service update completed",
		zap.String("service", req.Service),
		zap.Int("processed", processed),
		zap.Int("errors", len(targetErrs)),
	)

	return bulkResult(processed, targetErrs), nil
}

// BulkDelete removes the targeted shipments in one store operation.
func (s *ShipmentService) BulkDelete(ctx context.Context, ids []string) (*dto.BulkDeleteResponse, error) {
	deleted, err := s.shipments.DeleteMany(ctx, ids)
	if err != nil {
		return nil, err
	}

	s.logger.Info("bulk delete completed", zap.Int64("deleted", deleted))
	return &dto.BulkDeleteResponse{Success: true, Deleted: deleted}, nil
}

func bulkResult(processed int, targetErrs []dto.TargetError) *dto.BulkResultResponse {
	if targetErrs == nil {
		targetErrs = []dto.TargetError{}
	}
	return &dto.BulkResultResponse{
		Success:   len(targetErrs) == 0,
		Processed: processed,
		Errors:    targetErrs,
	}
}
