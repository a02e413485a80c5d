package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipping-label-service/internal/addressval"
	"shipping-label-service/internal/csvimport"
	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/model"
	"shipping-label-service/internal/pricing"
	"shipping-label-service/internal/repository"
)

// Interfaces the repository layer must implement.
type ShipmentRepository interface {
	InsertMany(ctx context.Context, shipments []*model.Shipment) error
	FindByID(ctx context.Context, id string) (*model.Shipment, error)
	FindByIDs(ctx context.Context, ids []string) ([]*model.Shipment, error)
	Find(ctx context.Context, filter repository.ShipmentFilter) ([]*model.Shipment, int64, error)
	FindAll(ctx context.Context) ([]*model.Shipment, error)
	Save(ctx context.Context, s *model.Shipment) error
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	MarkPurchased(ctx context.Context, ids []string, at time.Time) error
}

type SavedAddressRepository interface {
	FindAll(ctx context.Context) ([]*model.SavedAddress, error)
	FindByID(ctx context.Context, id string) (*model.SavedAddress, error)
	FindDefault(ctx context.Context) (*model.SavedAddress, error)
	Insert(ctx context.Context, a *model.SavedAddress) error
	Delete(ctx context.Context, id string) error
}

type SavedPackageRepository interface {
	FindAll(ctx context.Context) ([]*model.SavedPackage, error)
	FindByID(ctx context.Context, id string) (*model.SavedPackage, error)
	Insert(ctx context.Context, p *model.SavedPackage) error
	Delete(ctx context.Context, id string) error
}

// AddressValidator is the provider chain. It never fails; total
// provider failure degrades to a pending result.
type AddressValidator interface {
	Validate(ctx context.Context, addr addressval.Address) addressval.Result
}

// Business errors exported for the controller.
var (
	ErrTermsNotAccepted     = errors.New("terms must be accepted")
	ErrUnpricedShipment     = errors.New("shipment has no shipping service selected")
	ErrNothingToApply       = errors.New("bulk update requires an address_id or a package_id")
	ErrServiceNotAssignable = errors.New("service not assignable: package weight is missing")
)

type ShipmentService struct {
	shipments ShipmentRepository
	addresses SavedAddressRepository
	packages  SavedPackageRepository
	validator AddressValidator
	publisher PurchasePublisher
	logger    *zap.Logger
}

func NewShipmentService(
	shipments ShipmentRepository,
	addresses SavedAddressRepository,
	packages SavedPackageRepository,
	validator AddressValidator,
	publisher PurchasePublisher,
	logger *zap.Logger,
) *ShipmentService {
	return &ShipmentService{
		shipments: shipments,
		addresses: addresses,
		packages:  packages,
		validator: validator,
		publisher: publisher,
		logger:    logger,
	}
}

// Import parses a CSV upload, normalizes every row into a shipment and
// persists the batch. Row-scoped failures come back as data; only a
// file-level problem (no headers, nothing parseable) is an error.
func (s *ShipmentService) Import(ctx context.Context, content []byte) (*dto.UploadResponse, error) {
	rows, rowErrs, err := csvimport.ParseFile(content)
	if err != nil {
		return nil, err
	}

	defaultAddr, err := s.addresses.FindDefault(ctx)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	shipments := make([]*model.Shipment, 0, len(rows))
	for _, row := range rows {
		shipments = append(shipments, s.normalizeRow(row, defaultAddr))
	}

	if err := s.shipments.InsertMany(ctx, shipments); err != nil {
		return nil, err
	}

	s.logger.Info("csv import completed",
		zap.Int("created", len(shipments)),
		zap.Int("row_errors", len(rowErrs)),
	)

	// Ship-to address validation is best-effort and independent per
	// record, so fan it out.
	s.validateShipments(ctx, shipments)

	ids := make([]string, 0, len(shipments))
	for _, sh := range shipments {
		ids = append(ids, sh.ID)
	}

	errDetails := rowErrs
	if errDetails == nil {
		errDetails = []csvimport.RowError{}
	}

	return &dto.UploadResponse{
		Success:      true,
		Created:      len(shipments),
		Errors:       len(rowErrs),
		ErrorDetails: errDetails,
		ShipmentIDs:  ids,
	}, nil
}

func (s *ShipmentService) Get(ctx context.Context, id string) (*model.Shipment, error) {
	return s.shipments.FindByID(ctx, id)
}

func (s *ShipmentService) List(ctx context.Context, filter repository.ShipmentFilter) ([]*model.Shipment, int64, error) {
	return s.shipments.Find(ctx, filter)
}

func (s *ShipmentService) Delete(ctx context.Context, id string) error {
	return s.shipments.Delete(ctx, id)
}

// Patch applies a partial update and re-derives status. Selecting a
// shipping service locks in the price at the current weight; editing
// package fields afterward deliberately leaves that price untouched
// until the service is selected again.
func (s *ShipmentService) Patch(ctx context.Context, id string, req dto.ShipmentPatchRequest) (*model.Shipment, error) {
	shipment, err := s.shipments.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(shipment, req)

	if req.ShippingService != nil {
		price, err := pricing.Price(*req.ShippingService, shipment.WeightLbs, shipment.WeightOz)
		if err != nil {
			if errors.Is(err, pricing.ErrMissingWeight) {
				return nil, ErrServiceNotAssignable
			}
			return nil, err
		}
		shipment.ShippingService = *req.ShippingService
		shipment.CalculatedPrice = &price
	}

	shipment.Status = deriveStatus(shipment)

	if err := s.shipments.Save(ctx, shipment); err != nil {
		return nil, err
	}
	return shipment, nil
}

// ValidateAddresses runs the provider chain for the targeted shipments
// (all of them when the id list is empty) and records each verdict.
func (s *ShipmentService) ValidateAddresses(ctx context.Context, ids []string) (*dto.ValidateAddressesResponse, error) {
	var shipments []*model.Shipment
	var err error
	if len(ids) == 0 {
		shipments, err = s.shipments.FindAll(ctx)
	} else {
		shipments, err = s.shipments.FindByIDs(ctx, ids)
	}
	if err != nil {
		return nil, err
	}

	validated := s.validateShipments(ctx, shipments)

	return &dto.ValidateAddressesResponse{Success: true, Validated: validated}, nil
}

// validateShipments fans the provider chain out over the batch. Each
// shipment is updated and saved independently; failures are logged and
// skipped, never propagated.
func (s *ShipmentService) validateShipments(ctx context.Context, shipments []*model.Shipment) int {
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		validated int
	)

	for _, shipment := range shipments {
		if shipment.ShipToAddress == "" {
			continue
		}

		wg.Add(1)
		go func(sh *model.Shipment) {
			defer wg.Done()

			result := s.validator.Validate(ctx, addressval.Address{
				Address:  sh.ShipToAddress,
				Address2: sh.ShipToAddress2,
				City:     sh.ShipToCity,
				State:    sh.ShipToState,
				Zip:      sh.ShipToZip,
			})

			sh.AddressValidationStatus = result.Status
			sh.AddressValidationSource = result.Source
			sh.AddressValidationMessage = result.Message

			if err := s.shipments.Save(ctx, sh); err != nil {
				s.logger.Warn("failed to save address validation result",
					zap.String("shipment_id", sh.ID),
					zap.Error(err),
				)
				return
			}

			mu.Lock()
			validated++
			mu.Unlock()
		}(shipment)
	}

	wg.Wait()
	return validated
}

func targetError(id string, err error) dto.TargetError {
	return dto.TargetError{ShipmentID: id, Error: err.Error()}
}

func notFoundTargets(requested []string, found []*model.Shipment) []dto.TargetError {
	seen := make(map[string]bool, len(found))
	for _, sh := range found {
		seen[sh.ID] = true
	}

	var out []dto.TargetError
	for _, id := range requested {
		if !seen[id] {
			out = append(out, targetError(id, fmt.Errorf("shipment not found")))
		}
	}
	return out
}

func newShipmentID() string {
	return uuid.New().String()
}
