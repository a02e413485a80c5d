package service

import (
	"shipping-label-service/internal/csvimport"
	"shipping-label-service/internal/dto"
	"shipping-label-service/internal/model"
)

// normalizeRow turns a parsed CSV row into a canonical shipment. A
// fully blank ship-from block is filled from the default saved address
// when one exists.
func (s *ShipmentService) normalizeRow(row csvimport.RawRow, defaultAddr *model.SavedAddress) *model.Shipment {
	shipment := &model.Shipment{
		ID: newShipmentID(),

		ShipFromFirstName: row.ShipFromFirstName,
		ShipFromLastName:  row.ShipFromLastName,
		ShipFromAddress:   row.ShipFromAddress,
		ShipFromAddress2:  row.ShipFromAddress2,
		ShipFromCity:      row.ShipFromCity,
		ShipFromState:     row.ShipFromState,
		ShipFromZip:       row.ShipFromZip,
		ShipFromPhone:     row.ShipFromPhone,

		ShipToFirstName: row.ShipToFirstName,
		ShipToLastName:  row.ShipToLastName,
		ShipToAddress:   row.ShipToAddress,
		ShipToAddress2:  row.ShipToAddress2,
		ShipToCity:      row.ShipToCity,
		ShipToState:     row.ShipToState,
		ShipToZip:       row.ShipToZip,
		ShipToPhone:     row.ShipToPhone,

		WeightLbs: row.WeightLbs,
		WeightOz:  row.WeightOz,
		Length:    row.Length,
		Width:     row.Width,
		Height:    row.Height,
		ItemSKU:   row.ItemSKU,
		OrderNo:   row.OrderNo,
	}

	if shipFromBlank(shipment) && defaultAddr != nil {
		applyDefaultAddress(shipment, defaultAddr)
	}

	shipment.Status = deriveStatus(shipment)
	return shipment
}

// deriveStatus is the single status derivation used by every mutation
// path. Precedence: error > default_applied > warning > valid.
func deriveStatus(s *model.Shipment) string {
	if shipToIncomplete(s) {
		return model.StatusError
	}
	if s.ShipFromDefaultApplied {
		// Takes the badge even when package data is also missing.
		return model.StatusDefaultApplied
	}
	if shipFromBlank(s) {
		// No default address was available to fill from.
		return model.StatusWarning
	}
	if s.HasWeight() && s.HasDimensions() {
		return model.StatusValid
	}
	return model.StatusWarning
}

// shipToIncomplete checks the required destination fields. Any blank
// one is a hard error that blocks progress.
func shipToIncomplete(s *model.Shipment) bool {
	return s.ShipToFirstName == "" ||
		s.ShipToAddress == "" ||
		s.ShipToCity == "" ||
		s.ShipToState == "" ||
		s.ShipToZip == ""
}

// shipFromBlank mirrors the import rule: the block counts as blank when
// name, street and city are all empty. A partially filled block is
// taken verbatim, no autofill.
func shipFromBlank(s *model.Shipment) bool {
	return s.ShipFromFirstName == "" &&
		s.ShipFromAddress == "" &&
		s.ShipFromCity == ""
}

func applyDefaultAddress(s *model.Shipment, addr *model.SavedAddress) {
	s.ShipFromFirstName = addr.FirstName
	s.ShipFromLastName = addr.LastName
	s.ShipFromAddress = addr.Address
	s.ShipFromAddress2 = addr.Address2
	s.ShipFromCity = addr.City
	s.ShipFromState = addr.State
	s.ShipFromZip = addr.ZipCode
	s.ShipFromPhone = addr.Phone
	s.ShipFromDefaultApplied = true
}

// applySavedAddress overwrites the ship-from block from a saved
// address as an explicit user action, so the default-applied marker is
// cleared.
func applySavedAddress(s *model.Shipment, addr *model.SavedAddress) {
	applyDefaultAddress(s, addr)
	s.ShipFromDefaultApplied = false
}

func applySavedPackage(s *model.Shipment, pkg *model.SavedPackage) {
	lbs, oz := pkg.WeightLbs, pkg.WeightOz
	length, width, height := pkg.Length, pkg.Width, pkg.Height

	s.WeightLbs = &lbs
	s.WeightOz = &oz
	s.Length = &length
	s.Width = &width
	s.Height = &height

	// Weight changed, so any locked-in price is no longer meaningful.
	s.CalculatedPrice = nil
}

// applyPatch copies the provided fields onto the shipment. Editing any
// ship-from field by hand clears the default-applied marker.
func applyPatch(s *model.Shipment, req dto.ShipmentPatchRequest) {
	shipFromTouched := false

	setString := func(dst *string, src *string, shipFrom bool) {
		if src == nil {
			return
		}
		*dst = *src
		if shipFrom {
			shipFromTouched = true
		}
	}

	setString(&s.ShipFromFirstName, req.ShipFromFirstName, true)
	setString(&s.ShipFromLastName, req.ShipFromLastName, true)
	setString(&s.ShipFromAddress, req.ShipFromAddress, true)
	setString(&s.ShipFromAddress2, req.ShipFromAddress2, true)
	setString(&s.ShipFromCity, req.ShipFromCity, true)
	setString(&s.ShipFromState, req.ShipFromState, true)
	setString(&s.ShipFromZip, req.ShipFromZip, true)
	setString(&s.ShipFromPhone, req.ShipFromPhone, true)

	setString(&s.ShipToFirstName, req.ShipToFirstName, false)
	setString(&s.ShipToLastName, req.ShipToLastName, false)
	setString(&s.ShipToAddress, req.ShipToAddress, false)
	setString(&s.ShipToAddress2, req.ShipToAddress2, false)
	setString(&s.ShipToCity, req.ShipToCity, false)
	setString(&s.ShipToState, req.ShipToState, false)
	setString(&s.ShipToZip, req.ShipToZip, false)
	setString(&s.ShipToPhone, req.ShipToPhone, false)

	if req.WeightLbs != nil {
		v := *req.WeightLbs
		s.WeightLbs = &v
	}
	if req.WeightOz != nil {
		v := *req.WeightOz
		s.WeightOz = &v
	}
	if req.Length != nil {
		v := *req.Length
		s.Length = &v
	}
	if req.Width != nil {
		v := *req.Width
		s.Width = &v
	}
	if req.Height != nil {
		v := *req.Height
		s.Height = &v
	}
	setString(&s.ItemSKU, req.ItemSKU, false)
	setString(&s.OrderNo, req.OrderNo, false)

	if shipFromTouched {
		s.ShipFromDefaultApplied = false
	}
}
