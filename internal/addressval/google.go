package addressval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"shipping-label-service/internal/model"
)

const defaultGoogleBaseURL = "https://addressvalidation.googleapis.com/v1:validateAddress"

// GoogleProvider calls the Google Address Validation API. It is the
// fallback when USPS cannot answer.
type GoogleProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewGoogleProvider(apiKey string, timeout time.Duration) *GoogleProvider {
	return &GoogleProvider{
		apiKey:  apiKey,
		baseURL: defaultGoogleBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *GoogleProvider) Name() string { return "google" }

type googleRequest struct {
	Address googlePostalAddress `json:"address"`
}

type googlePostalAddress struct {
	AddressLines       []string `json:"addressLines"`
	Locality           string   `json:"locality"`
	AdministrativeArea string   `json:"administrativeArea"`
	PostalCode         string   `json:"postalCode"`
	RegionCode         string   `json:"regionCode"`
}

type googleResponse struct {
	Result struct {
		Verdict struct {
			AddressComplete bool `json:"addressComplete"`
		} `json:"verdict"`
		Address struct {
			FormattedAddress string `json:"formattedAddress"`
		} `json:"address"`
	} `json:"result"`
}

func (p *GoogleProvider) Validate(ctx context.Context, addr Address) (Result, error) {
	lines := []string{}
	if addr.Address != "" {
		lines = append(lines, addr.Address)
	}
	if addr.Address2 != "" {
		lines = append(lines, addr.Address2)
	}

	payload, err := json.Marshal(googleRequest{
		Address: googlePostalAddress{
			AddressLines:       lines,
			Locality:           addr.City,
			AdministrativeArea: addr.State,
			PostalCode:         addr.Zip,
			RegionCode:         "US",
		},
	})
	if err != nil {
		return Result{}, err
	}

	url := p.baseURL
	if strings.Contains(url, "?") {
		url += "&key=" + p.apiKey
	} else {
		url += "?key=" + p.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Result{}, fmt.Errorf("google unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Result{}, fmt.Errorf("google malformed response: %w", err)
	}

	if !parsed.Result.Verdict.AddressComplete {
		return Result{
			Status:  model.AddressInvalid,
			Source:  p.Name(),
			Message: "Address could not be validated",
		}, nil
	}

	return Result{
		Status:  model.AddressValid,
		Source:  p.Name(),
		Message: "Address validated",
	}, nil
}
