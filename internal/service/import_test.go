package service

import (
	"context"
	"strings"
	"testing"

	"shipping-label-service/internal/csvimport"
	"shipping-label-service/internal/model"
)

func rawRowComplete() csvimport.RawRow {
	return csvimport.RawRow{
		RowNumber: 3,

		ShipFromFirstName: "Print",
		ShipFromLastName:  "TTS",
		ShipFromAddress:   "502 W Arrow Hwy",
		ShipFromCity:      "San Dimas",
		ShipFromZip:       "91773",
		ShipFromState:     "CA",

		ShipToFirstName: "Jane",
		ShipToLastName:  "Doe",
		ShipToAddress:   "1 Main St",
		ShipToCity:      "Austin",
		ShipToZip:       "73301",
		ShipToState:     "TX",

		WeightLbs: intPtr(2),
		WeightOz:  intPtr(4),
		Length:    decPtr("6"),
		Width:     decPtr("4"),
		Height:    decPtr("3"),

		OrderNo: "ORD-1",
		ItemSKU: "SKU-9",
	}
}

const csvHeaders = "From,,,,,,,To,,,,,,,Weight,,Dims,,,Phones,,Meta,\n" +
	"ffn,fln,fa,fa2,fc,fz,fs,tfn,tln,ta,ta2,tc,tz,ts,lbs,oz,l,w,h,tp,fp,ord,sku\n"

func csvRow(cells ...string) string {
	row := make([]string, csvimport.ColumnCount)
	copy(row, cells)
	return strings.Join(row, ",") + "\n"
}

// Three-row scenario: row1 complete, row2 missing ship-from, row3
// missing weight. Expected statuses in row order: valid,
// default_applied, warning.
func TestImport_EndToEndStatuses(t *testing.T) {
	repo := newFakeShipmentRepo()
	svc := newTestService(repo, nil, nil)

	content := csvHeaders +
		csvRow(
			"Print", "TTS", "502 W Arrow Hwy", "", "San Dimas", "91773", "CA",
			"Jane", "Doe", "1 Main St", "", "Austin", "73301", "TX",
			"2", "4", "6", "4", "3", "", "", "ORD-1", "SKU-1",
		) +
		csvRow(
			"", "", "", "", "", "", "",
			"John", "Roe", "2 Oak Ave", "", "Denver", "80201", "CO",
			"1", "0", "8", "6", "4", "", "", "ORD-2", "SKU-2",
		) +
		csvRow(
			"Print", "TTS", "502 W Arrow Hwy", "", "San Dimas", "91773", "CA",
			"Mary", "Poe", "3 Pine Rd", "", "Boise", "83701", "ID",
			"", "", "6", "4", "3", "", "", "ORD-3", "SKU-3",
		)

	res, err := svc.Import(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if !res.Success || res.Created != 3 || res.Errors != 0 {
		t.Fatalf("unexpected response: %+v", res)
	}
	if len(res.ShipmentIDs) != 3 {
		t.Fatalf("expected 3 shipment ids, got %d", len(res.ShipmentIDs))
	}

	wantStatuses := []string{model.StatusValid, model.StatusDefaultApplied, model.StatusWarning}
	for i, id := range res.ShipmentIDs {
		got := repo.get(id)
		if got.Status != wantStatuses[i] {
			t.Errorf("row %d: expected status %s, got %s", i+1, wantStatuses[i], got.Status)
		}
	}

	// Row 2 ship-from must equal the saved default verbatim.
	second := repo.get(res.ShipmentIDs[1])
	def := defaultSavedAddress()
	if second.ShipFromAddress != def.Address || second.ShipFromCity != def.City {
		t.Errorf("default address not applied: %+v", second)
	}
}

// Round-trip property: every successfully parsed field must read back
// verbatim from the store.
func TestImport_RoundTripFields(t *testing.T) {
	repo := newFakeShipmentRepo()
	svc := newTestService(repo, nil, nil)

	content := csvHeaders + csvRow(
		"Print", "TTS", "502 W Arrow Hwy", "STE P", "San Dimas", "91773", "CA",
		"Jane", "Doe", "1 Main St", "Apt 2", "Austin", "73301", "TX",
		"2", "4", "6.5", "4.25", "3", "555-0100", "555-0200", "ORD-1", "SKU-9",
	)

	res, err := svc.Import(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got := repo.get(res.ShipmentIDs[0])
	checks := map[string][2]string{
		"ship_from_address2": {got.ShipFromAddress2, "STE P"},
		"ship_to_first_name": {got.ShipToFirstName, "Jane"},
		"ship_to_address2":   {got.ShipToAddress2, "Apt 2"},
		"ship_to_phone":      {got.ShipToPhone, "555-0100"},
		"ship_from_phone":    {got.ShipFromPhone, "555-0200"},
		"order_no":           {got.OrderNo, "ORD-1"},
		"item_sku":           {got.ItemSKU, "SKU-9"},
	}
	for field, pair := range checks {
		if pair[0] != pair[1] {
			t.Errorf("%s: expected %q, got %q", field, pair[1], pair[0])
		}
	}
	if got.WeightLbs == nil || *got.WeightLbs != 2 || got.WeightOz == nil || *got.WeightOz != 4 {
		t.Errorf("weight drifted: %v %v", got.WeightLbs, got.WeightOz)
	}
	if got.Length == nil || got.Length.String() != "6.5" {
		t.Errorf("length drifted: %v", got.Length)
	}
	if got.Width == nil || got.Width.String() != "4.25" {
		t.Errorf("width drifted: %v", got.Width)
	}
}

func TestImport_NoPriceAssignedAtImport(t *testing.T) {
	repo := newFakeShipmentRepo()
	svc := newTestService(repo, nil, nil)

	content := csvHeaders + csvRow(
		"Print", "TTS", "502 W Arrow Hwy", "", "San Dimas", "91773", "CA",
		"Jane", "Doe", "1 Main St", "", "Austin", "73301", "TX",
		"2", "4", "6", "4", "3", "", "", "", "",
	)

	res, err := svc.Import(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got := repo.get(res.ShipmentIDs[0])
	if got.ShippingService != "" || got.CalculatedPrice != nil {
		t.Errorf("price must not be assigned at import: %q %v", got.ShippingService, got.CalculatedPrice)
	}
}

func TestImport_RowErrorsReportedAsData(t *testing.T) {
	repo := newFakeShipmentRepo()
	svc := newTestService(repo, nil, nil)

	content := csvHeaders +
		"short,row\n" +
		csvRow(
			"", "", "", "", "", "", "",
			"Jane", "Doe", "1 Main St", "", "Austin", "73301", "TX",
			"", "", "", "", "", "", "", "", "",
		)

	res, err := svc.Import(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Created != 1 || res.Errors != 1 {
		t.Fatalf("unexpected counts: %+v", res)
	}
	if len(res.ErrorDetails) != 1 || res.ErrorDetails[0].RowNumber != 3 {
		t.Errorf("unexpected error details: %+v", res.ErrorDetails)
	}
}

func TestImport_UnparseableFileFails(t *testing.T) {
	svc := newTestService(nil, nil, nil)
	if _, err := svc.Import(context.Background(), []byte(csvHeaders)); err == nil {
		t.Fatal("expected failure for a file with no data rows")
	}
}

func TestImport_RecordsAddressValidationResult(t *testing.T) {
	repo := newFakeShipmentRepo()
	addrRepo := &fakeAddressRepo{addresses: []*model.SavedAddress{defaultSavedAddress()}}
	validator := &stubValidator{result: validResult()}
	svc := NewShipmentService(repo, addrRepo, &fakePackageRepo{}, validator, &recordingPublisher{}, zapNop())

	content := csvHeaders + csvRow(
		"Print", "TTS", "502 W Arrow Hwy", "", "San Dimas", "91773", "CA",
		"Jane", "Doe", "1 Main St", "", "Austin", "73301", "TX",
		"2", "4", "6", "4", "3", "", "", "", "",
	)

	res, err := svc.Import(context.Background(), []byte(content))
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	got := repo.get(res.ShipmentIDs[0])
	if got.AddressValidationStatus != model.AddressValid {
		t.Errorf("expected recorded validation status, got %q", got.AddressValidationStatus)
	}
	if got.AddressValidationSource != "usps" {
		t.Errorf("expected usps source, got %q", got.AddressValidationSource)
	}
}
