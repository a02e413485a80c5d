// dto.go
package dto

import (
	"github.com/shopspring/decimal"

	"shipping-label-service/internal/csvimport"
	"shipping-label-service/internal/model"
	"shipping-label-service/internal/pricing"
)

// ShipmentPatchRequest carries a partial update. Nil pointers mean
// "leave the field alone"; empty strings clear text fields.
type ShipmentPatchRequest struct {
	ShipFromFirstName *string `json:"ship_from_first_name"`
	ShipFromLastName  *string `json:"ship_from_last_name"`
	ShipFromAddress   *string `json:"ship_from_address"`
	ShipFromAddress2  *string `json:"ship_from_address2"`
	ShipFromCity      *string `json:"ship_from_city"`
	ShipFromState     *string `json:"ship_from_state"`
	ShipFromZip       *string `json:"ship_from_zip"`
	ShipFromPhone     *string `json:"ship_from_phone"`

	ShipToFirstName *string `json:"ship_to_first_name"`
	ShipToLastName  *string `json:"ship_to_last_name"`
	ShipToAddress   *string `json:"ship_to_address"`
	ShipToAddress2  *string `json:"ship_to_address2"`
	ShipToCity      *string `json:"ship_to_city"`
	ShipToState     *string `json:"ship_to_state"`
	ShipToZip       *string `json:"ship_to_zip"`
	ShipToPhone     *string `json:"ship_to_phone"`

	WeightLbs *int             `json:"weight_lbs"`
	WeightOz  *int             `json:"weight_oz" binding:"omitempty,gte=0,lte=15"`
	Length    *decimal.Decimal `json:"length"`
	Width     *decimal.Decimal `json:"width"`
	Height    *decimal.Decimal `json:"height"`
	ItemSKU   *string          `json:"item_sku"`
	OrderNo   *string          `json:"order_no"`

	ShippingService *string `json:"shipping_service" binding:"omitempty,oneof=priority_mail ground_shipping"`
}

type BulkUpdateRequest struct {
	ShipmentIDs []string `json:"shipment_ids" binding:"required,min=1"`
	AddressID   string   `json:"address_id"`
	PackageID   string   `json:"package_id"`
}

type BulkDeleteRequest struct {
	ShipmentIDs []string `json:"shipment_ids" binding:"required,min=1"`
}

// ValidateAddressesRequest with an empty id list validates every
// shipment in the working set.
type ValidateAddressesRequest struct {
	ShipmentIDs []string `json:"shipment_ids"`
}

type BulkServiceUpdateRequest struct {
	ShipmentIDs []string `json:"shipment_ids" binding:"required,min=1"`
	Service     string   `json:"service" binding:"required,oneof=priority_mail ground_shipping most_affordable"`
}

type PurchaseRequest struct {
	ShipmentIDs   []string `json:"shipment_ids" binding:"required,min=1"`
	LabelSize     string   `json:"label_size" binding:"required,oneof=letter_a4 4x6"`
	TermsAccepted bool     `json:"terms_accepted"`
}

type SavedAddressRequest struct {
	Name      string `json:"name" binding:"required"`
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name"`
	Address   string `json:"address" binding:"required"`
	Address2  string `json:"address2"`
	City      string `json:"city" binding:"required"`
	State     string `json:"state" binding:"required,len=2"`
	ZipCode   string `json:"zip_code" binding:"required"`
	Phone     string `json:"phone"`
	IsDefault bool   `json:"is_default"`
}

type SavedPackageRequest struct {
	Name      string          `json:"name" binding:"required"`
	Length    decimal.Decimal `json:"length" binding:"required"`
	Width     decimal.Decimal `json:"width" binding:"required"`
	Height    decimal.Decimal `json:"height" binding:"required"`
	WeightLbs int             `json:"weight_lbs" binding:"gte=0"`
	WeightOz  int             `json:"weight_oz" binding:"gte=0,lte=15"`
}

type UploadResponse struct {
	Success      bool                 `json:"success"`
	Created      int                  `json:"created"`
	Errors       int                  `json:"errors"`
	ErrorDetails []csvimport.RowError `json:"error_details"`
	ShipmentIDs  []string             `json:"shipment_ids"`
}

// ShipmentResponse adds the display projections and live service
// quotes to the stored record.
type ShipmentResponse struct {
	*model.Shipment

	ShipFromFormatted       string            `json:"ship_from_formatted"`
	ShipToFormatted         string            `json:"ship_to_formatted"`
	PackageDetailsFormatted string            `json:"package_details_formatted"`
	AvailableServices       []ServiceResponse `json:"available_services"`
}

func NewShipmentResponse(s *model.Shipment) ShipmentResponse {
	return ShipmentResponse{
		Shipment:                s,
		ShipFromFormatted:       s.ShipFromFormatted(),
		ShipToFormatted:         s.ShipToFormatted(),
		PackageDetailsFormatted: s.PackageDetailsFormatted(),
		AvailableServices:       NewServiceResponses(pricing.AvailableServices(s.WeightLbs, s.WeightOz)),
	}
}

func NewShipmentResponses(shipments []*model.Shipment) []ShipmentResponse {
	out := make([]ShipmentResponse, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, NewShipmentResponse(s))
	}
	return out
}

type ShipmentListResponse struct {
	Count    int64              `json:"count"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Results  []ShipmentResponse `json:"results"`
}

type ServiceResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	BasePrice decimal.Decimal  `json:"base_price"`
	PerOzRate decimal.Decimal  `json:"per_oz_rate"`
	Price     *decimal.Decimal `json:"price"`
}

func NewServiceResponses(quotes []pricing.Quote) []ServiceResponse {
	out := make([]ServiceResponse, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, ServiceResponse{
			ID:        q.ID,
			Name:      q.Name,
			BasePrice: q.BasePrice,
			PerOzRate: q.PerOzRate,
			Price:     q.Price,
		})
	}
	return out
}

// TargetError itemizes a failed member of a bulk operation.
type TargetError struct {
	ShipmentID string `json:"shipment_id"`
	Error      string `json:"error"`
}

type BulkResultResponse struct {
	Success   bool          `json:"success"`
	Processed int           `json:"processed"`
	Errors    []TargetError `json:"errors"`
}

type BulkDeleteResponse struct {
	Success bool  `json:"success"`
	Deleted int64 `json:"deleted"`
}

type ValidateAddressesResponse struct {
	Success   bool `json:"success"`
	Validated int  `json:"validated"`
}

type PurchaseResponse struct {
	Success       bool            `json:"success"`
	OrderID       string          `json:"order_id"`
	LabelSize     string          `json:"label_size"`
	ShipmentCount int             `json:"shipment_count"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Message       string          `json:"message"`
}
