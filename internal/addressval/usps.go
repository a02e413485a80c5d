package addressval

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shipping-label-service/internal/model"
)

const defaultUSPSBaseURL = "https://secure.shippingapis.com/ShippingAPI.dll"

// USPSProvider calls the USPS Address Validation API (XML over GET).
type USPSProvider struct {
	userID  string
	baseURL string
	client  *http.Client
}

func NewUSPSProvider(userID string, timeout time.Duration) *USPSProvider {
	return &USPSProvider{
		userID:  userID,
		baseURL: defaultUSPSBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *USPSProvider) Name() string { return "usps" }

type uspsRequest struct {
	XMLName xml.Name    `xml:"AddressValidateRequest"`
	UserID  string      `xml:"USERID,attr"`
	Address uspsAddress `xml:"Address"`
}

type uspsAddress struct {
	Address1 string `xml:"Address1"`
	Address2 string `xml:"Address2"`
	City     string `xml:"City"`
	State    string `xml:"State"`
	Zip5     string `xml:"Zip5"`
	Zip4     string `xml:"Zip4"`
}

type uspsResponse struct {
	XMLName xml.Name `xml:"AddressValidateResponse"`
	Address struct {
		Address2   string `xml:"Address2"`
		City       string `xml:"City"`
		State      string `xml:"State"`
		Zip5       string `xml:"Zip5"`
		ReturnText string `xml:"ReturnText"`
		Error      struct {
			Description string `xml:"Description"`
		} `xml:"Error"`
	} `xml:"Address"`
}

func (p *USPSProvider) Validate(ctx context.Context, addr Address) (Result, error) {
	zip5 := addr.Zip
	if len(zip5) > 5 {
		zip5 = zip5[:5]
	}

	reqBody, err := xml.Marshal(uspsRequest{
		UserID: p.userID,
		Address: uspsAddress{
			Address1: addr.Address,
			Address2: addr.Address2,
			City:     addr.City,
			State:    addr.State,
			Zip5:     zip5,
		},
	})
	if err != nil {
		return Result{}, err
	}

	params := url.Values{}
	params.Set("API", "Verify")
	params.Set("XML", string(reqBody))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("usps request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("usps unexpected status %d: %s", resp.StatusCode, string(body))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, err
	}

	// A top-level <Error> means the API refused the call (bad user id,
	// malformed request) -> provider failure, fall back.
	if strings.Contains(string(body), "<Error>") && !strings.Contains(string(body), "AddressValidateResponse") {
		return Result{}, fmt.Errorf("usps api error: %s", string(body))
	}

	var parsed uspsResponse
	if err := xml.Unmarshal(body, &parsed); err != nil {
		return Result{}, fmt.Errorf("usps malformed response: %w", err)
	}

	if parsed.Address.Error.Description != "" {
		return Result{
			Status:  model.AddressInvalid,
			Source:  p.Name(),
			Message: parsed.Address.Error.Description,
		}, nil
	}

	return Result{
		Status:  model.AddressValid,
		Source:  p.Name(),
		Message: parsed.Address.ReturnText,
	}, nil
}
