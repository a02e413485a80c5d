// models.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Shipment statuses, recomputed from field state after every mutation.
const (
	StatusValid          = "valid"
	StatusWarning        = "warning"
	StatusError          = "error"
	StatusDefaultApplied = "default_applied"
)

// Shipping service identifiers.
const (
	ServicePriorityMail   = "priority_mail"
	ServiceGroundShipping = "ground_shipping"
)

// Address validation statuses.
const (
	AddressValid   = "valid"
	AddressInvalid = "invalid"
	AddressPending = "pending"
)

// Shipment is one row of the wizard's working set.
type Shipment struct {
	ID string `bson:"_id" json:"id"`

	// Ship From
	ShipFromFirstName string `bson:"ship_from_first_name" json:"ship_from_first_name"`
	ShipFromLastName  string `bson:"ship_from_last_name" json:"ship_from_last_name"`
	ShipFromAddress   string `bson:"ship_from_address" json:"ship_from_address"`
	ShipFromAddress2  string `bson:"ship_from_address2" json:"ship_from_address2"`
	ShipFromCity      string `bson:"ship_from_city" json:"ship_from_city"`
	ShipFromState     string `bson:"ship_from_state" json:"ship_from_state"`
	ShipFromZip       string `bson:"ship_from_zip" json:"ship_from_zip"`
	ShipFromPhone     string `bson:"ship_from_phone" json:"ship_from_phone"`

	// Ship To
	ShipToFirstName string `bson:"ship_to_first_name" json:"ship_to_first_name"`
	ShipToLastName  string `bson:"ship_to_last_name" json:"ship_to_last_name"`
	ShipToAddress   string `bson:"ship_to_address" json:"ship_to_address"`
	ShipToAddress2  string `bson:"ship_to_address2" json:"ship_to_address2"`
	ShipToCity      string `bson:"ship_to_city" json:"ship_to_city"`
	ShipToState     string `bson:"ship_to_state" json:"ship_to_state"`
	ShipToZip       string `bson:"ship_to_zip" json:"ship_to_zip"`
	ShipToPhone     string `bson:"ship_to_phone" json:"ship_to_phone"`

	// Package details. Nil means the value was never provided, which is
	// different from zero.
	WeightLbs *int             `bson:"weight_lbs" json:"weight_lbs"`
	WeightOz  *int             `bson:"weight_oz" json:"weight_oz"`
	Length    *decimal.Decimal `bson:"length" json:"length"`
	Width     *decimal.Decimal `bson:"width" json:"width"`
	Height    *decimal.Decimal `bson:"height" json:"height"`
	ItemSKU   string           `bson:"item_sku" json:"item_sku"`

	OrderNo string `bson:"order_no" json:"order_no"`

	// ShipFromDefaultApplied marks a ship-from block filled from the
	// default saved address at import time. It is cleared once the user
	// supplies ship-from data of their own, and it is what keeps the
	// default_applied status stable across unrelated re-derivations.
	ShipFromDefaultApplied bool `bson:"ship_from_default_applied" json:"-"`

	Status                   string `bson:"status" json:"status"`
	AddressValidationStatus  string `bson:"address_validation_status" json:"address_validation_status"`
	AddressValidationSource  string `bson:"address_validation_source" json:"address_validation_source"`
	AddressValidationMessage string `bson:"address_validation_message" json:"address_validation_message"`

	ShippingService string           `bson:"shipping_service" json:"shipping_service"`
	CalculatedPrice *decimal.Decimal `bson:"calculated_price" json:"calculated_price"`

	Purchased   bool       `bson:"purchased" json:"purchased"`
	PurchasedAt *time.Time `bson:"purchased_at" json:"purchased_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ShipFromFormatted renders the ship-from block for display. The result
// is a projection of the address fields and is never persisted.
func (s *Shipment) ShipFromFormatted() string {
	out := formatAddress(
		s.ShipFromFirstName, s.ShipFromLastName,
		s.ShipFromAddress, s.ShipFromAddress2,
		s.ShipFromCity, s.ShipFromState, s.ShipFromZip,
	)
	if out == "" {
		return "Not set"
	}
	return out
}

// ShipToFormatted renders the ship-to block for display.
func (s *Shipment) ShipToFormatted() string {
	return formatAddress(
		s.ShipToFirstName, s.ShipToLastName,
		s.ShipToAddress, s.ShipToAddress2,
		s.ShipToCity, s.ShipToState, s.ShipToZip,
	)
}

// PackageDetailsFormatted renders dimensions and weight for display.
func (s *Shipment) PackageDetailsFormatted() string {
	var parts []string

	if s.Length != nil && s.Width != nil && s.Height != nil {
		parts = append(parts, fmt.Sprintf("%s×%s×%s in", s.Length.String(), s.Width.String(), s.Height.String()))
	}

	var weight []string
	if s.WeightLbs != nil && *s.WeightLbs > 0 {
		weight = append(weight, fmt.Sprintf("%d lb", *s.WeightLbs))
	}
	if s.WeightOz != nil && *s.WeightOz > 0 {
		weight = append(weight, fmt.Sprintf("%d oz", *s.WeightOz))
	}
	if len(weight) > 0 {
		parts = append(parts, strings.Join(weight, " "))
	}

	if len(parts) == 0 {
		return "Not set"
	}
	return strings.Join(parts, " | ")
}

// HasWeight reports whether any weight was supplied at all. A shipment
// without weight cannot be priced.
func (s *Shipment) HasWeight() bool {
	return (s.WeightLbs != nil && *s.WeightLbs > 0) || (s.WeightOz != nil && *s.WeightOz > 0)
}

// HasDimensions reports whether length, width and height are all set.
func (s *Shipment) HasDimensions() bool {
	return s.Length != nil && s.Width != nil && s.Height != nil
}

func formatAddress(firstName, lastName, address, address2, city, state, zip string) string {
	var parts []string
	if firstName != "" || lastName != "" {
		parts = append(parts, strings.TrimSpace(firstName+" "+lastName))
	}
	if address != "" {
		parts = append(parts, address)
	}
	if address2 != "" {
		parts = append(parts, address2)
	}
	if city != "" && state != "" {
		parts = append(parts, strings.TrimSpace(fmt.Sprintf("%s, %s %s", city, state, zip)))
	}
	return strings.Join(parts, ", ")
}

// SavedAddress is a reusable ship-from address template.
type SavedAddress struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	FirstName string    `bson:"first_name" json:"first_name"`
	LastName  string    `bson:"last_name" json:"last_name"`
	Address   string    `bson:"address" json:"address"`
	Address2  string    `bson:"address2" json:"address2"`
	City      string    `bson:"city" json:"city"`
	State     string    `bson:"state" json:"state"`
	ZipCode   string    `bson:"zip_code" json:"zip_code"`
	Phone     string    `bson:"phone" json:"phone"`
	IsDefault bool      `bson:"is_default" json:"is_default"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// SavedPackage is a reusable package-dimension template.
type SavedPackage struct {
	ID        string          `bson:"_id" json:"id"`
	Name      string          `bson:"name" json:"name"`
	Length    decimal.Decimal `bson:"length" json:"length"`
	Width     decimal.Decimal `bson:"width" json:"width"`
	Height    decimal.Decimal `bson:"height" json:"height"`
	WeightLbs int             `bson:"weight_lbs" json:"weight_lbs"`
	WeightOz  int             `bson:"weight_oz" json:"weight_oz"`
	CreatedAt time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at" json:"updated_at"`
}
