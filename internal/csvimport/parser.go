// Package csvimport parses the wizard's fixed-layout shipment CSV:
// two header rows followed by 23-column data rows.
package csvimport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// ColumnCount is the fixed width of the template. Columns are grouped
// From(7) / To(7) / weight(2) / dimensions(3) / phones(2) / order
// metadata(2).
const ColumnCount = 23

var (
	// ErrMissingHeaders means the file ended before both header rows.
	ErrMissingHeaders = errors.New("csv file must have at least 2 header rows")

	// ErrNoRecords means no data row parsed successfully.
	ErrNoRecords = errors.New("csv file contains no parseable shipment rows")
)

// RawRow is one data row mapped to shipment fields, before validation
// and default fill. Numeric fields are nil when blank or malformed.
type RawRow struct {
	RowNumber int

	ShipFromFirstName string
	ShipFromLastName  string
	ShipFromAddress   string
	ShipFromAddress2  string
	ShipFromCity      string
	ShipFromZip       string
	ShipFromState     string

	ShipToFirstName string
	ShipToLastName  string
	ShipToAddress   string
	ShipToAddress2  string
	ShipToCity      string
	ShipToZip       string
	ShipToState     string

	WeightLbs *int
	WeightOz  *int
	Length    *decimal.Decimal
	Width     *decimal.Decimal
	Height    *decimal.Decimal

	ShipToPhone   string
	ShipFromPhone string

	OrderNo string
	ItemSKU string
}

// RowError is a structural failure scoped to a single row.
type RowError struct {
	RowNumber int    `json:"row"`
	Message   string `json:"error"`
}

// ParseFile parses the CSV content. Structural failures are
// accumulated per row and parsing continues; only a file-level problem
// (missing headers, zero parseable rows) returns a non-nil error.
func ParseFile(content []byte) ([]RawRow, []RowError, error) {
	if !utf8.Valid(content) {
		return nil, nil, errors.New("csv file is not valid UTF-8")
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1 // column count is checked per row

	// Two header rows precede the data.
	for i := 0; i < 2; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, nil, ErrMissingHeaders
		}
	}

	var (
		rows    []RawRow
		rowErrs []RowError
		rowNum  = 2
	)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++

		if err != nil {
			rowErrs = append(rowErrs, RowError{RowNumber: rowNum, Message: err.Error()})
			continue
		}

		if isBlank(record) {
			continue
		}

		if len(record) != ColumnCount {
			rowErrs = append(rowErrs, RowError{
				RowNumber: rowNum,
				Message:   fmt.Sprintf("expected %d columns, got %d", ColumnCount, len(record)),
			})
			continue
		}

		rows = append(rows, parseRow(record, rowNum))
	}

	if len(rows) == 0 {
		return nil, rowErrs, ErrNoRecords
	}
	return rows, rowErrs, nil
}

func parseRow(record []string, rowNum int) RawRow {
	return RawRow{
		RowNumber: rowNum,

		ShipFromFirstName: strings.TrimSpace(record[0]),
		ShipFromLastName:  strings.TrimSpace(record[1]),
		ShipFromAddress:   strings.TrimSpace(record[2]),
		ShipFromAddress2:  strings.TrimSpace(record[3]),
		ShipFromCity:      strings.TrimSpace(record[4]),
		ShipFromZip:       strings.TrimSpace(record[5]),
		ShipFromState:     strings.TrimSpace(record[6]),

		ShipToFirstName: strings.TrimSpace(record[7]),
		ShipToLastName:  strings.TrimSpace(record[8]),
		ShipToAddress:   strings.TrimSpace(record[9]),
		ShipToAddress2:  strings.TrimSpace(record[10]),
		ShipToCity:      strings.TrimSpace(record[11]),
		ShipToZip:       strings.TrimSpace(record[12]),
		ShipToState:     strings.TrimSpace(record[13]),

		WeightLbs: parseInt(record[14]),
		WeightOz:  parseInt(record[15]),
		Length:    parseDecimal(record[16]),
		Width:     parseDecimal(record[17]),
		Height:    parseDecimal(record[18]),

		ShipToPhone:   strings.TrimSpace(record[19]),
		ShipFromPhone: strings.TrimSpace(record[20]),

		OrderNo: strings.TrimSpace(record[21]),
		ItemSKU: strings.TrimSpace(record[22]),
	}
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseInt accepts plain integers and values like "5.0". Anything else
// normalizes to nil rather than zero.
func parseInt(value string) *int {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	n := int(d.IntPart())
	return &n
}

func parseDecimal(value string) *decimal.Decimal {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	d, err := decimal.NewFromString(value)
	if err != nil {
		return nil
	}
	return &d
}
