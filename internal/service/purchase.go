package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/repository"
)

// PurchaseEvent is published after a successful checkout. Label
// generation and payment stay simulated; the event is the only outward
// side effect.
type PurchaseEvent struct {
	OrderID     string          `json:"order_id"`
	ShipmentIDs []string        `json:"shipment_ids"`
	LabelSize   string          `json:"label_size"`
	GrandTotal  decimal.Decimal `json:"grand_total"`
	PurchasedAt time.Time       `json:"purchased_at"`
}

// PurchasePublisher emits purchase events. Publishing is best-effort;
// a failed publish never fails the purchase.
type PurchasePublisher interface {
	PublishLabelsPurchased(ctx context.Context, event PurchaseEvent) error
}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishLabelsPurchased(context.Context, PurchaseEvent) error { return nil }

// Purchase finalizes the targeted shipments. Terms must be accepted
// and every target needs a locked-in service and price; otherwise the
// whole request fails and no order id is created.
func (s *ShipmentService) Purchase(ctx context.Context, req dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	if !req.TermsAccepted {
		return nil, ErrTermsNotAccepted
	}

	shipments, err := s.shipments.FindByIDs(ctx, req.ShipmentIDs)
	if err != nil {
		return nil, err
	}
	if missing := notFoundTargets(req.ShipmentIDs, shipments); len(missing) > 0 {
		return nil, fmt.Errorf("%w: shipment %s", repository.ErrNotFound, missing[0].ShipmentID)
	}

	grandTotal := decimal.Zero
	for _, shipment := range shipments {
		if shipment.ShippingService == "" || shipment.CalculatedPrice == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnpricedShipment, shipment.ID)
		}
		grandTotal = grandTotal.Add(*shipment.CalculatedPrice)
	}

	now := time.Now().UTC()
	if err := s.shipments.MarkPurchased(ctx, req.ShipmentIDs, now); err != nil {
		return nil, err
	}

	orderID := uuid.New().String()

	// Label generation and payment capture are simulated no-ops.
	s.logger.Info("labels generated",
		zap.String("order_id", orderID),
		zap.String("label_size", req.LabelSize),
		zap.Int("shipment_count", len(shipments)),
	)
	s.logger.Info("payment processed",
		zap.String("order_id", orderID),
		zap.String("grand_total", grandTotal.StringFixed(2)),
	)

	event := PurchaseEvent{
		OrderID:     orderID,
		ShipmentIDs: req.ShipmentIDs,
		LabelSize:   req.LabelSize,
		GrandTotal:  grandTotal,
		PurchasedAt: now,
	}
	if err := s.publisher.PublishLabelsPurchased(ctx, event); err != nil {
		s.logger.Warn("failed to publish purchase event",
			zap.String("order_id", orderID),
			zap.Error(err),
		)
	}

	return &dto.PurchaseResponse{
		Success:       true,
		OrderID:       orderID,
		LabelSize:     req.LabelSize,
		ShipmentCount: len(shipments),
		GrandTotal:    grandTotal.Round(2),
		Message:       "Labels created successfully",
	}, nil
}
