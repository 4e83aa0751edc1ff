package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// RemittancePayload is sent by the remittance cron to the ZIMRA e-services
// gateway sidecar. The sidecar handles authentication against ZIMRA and
// returns the official payment reference.
type RemittancePayload struct {
	BPNumber     string  `json:"bp_number"` // agency's ZIMRA business partner number
	TaxType      string  `json:"tax_type"`  // CGT_DEDUCTION | VAT_DEDUCTION | VAT_ON_COMMISSION_DEDUCTION
	Amount       float64 `json:"amount"`
	RemittanceID string  `json:"remittance_id"`
	AccountID    string  `json:"account_id"`
}

// RemittanceResponse is returned by the gateway after the ZIMRA submission.
type RemittanceResponse struct {
	PaymentReference string `json:"payment_reference"`
	Result           string `json:"result"` // "accepted" | "rejected"
	Messages         []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"messages"`
}

// ZIMRAClient is an HTTP client that delegates ZIMRA communication to the
// gateway sidecar. The decoupling isolates revenue-authority outages from the
// core backend.
type ZIMRAClient struct {
	gatewayURL string
	bpNumber   string
	httpClient *http.Client
}

func NewZIMRAClient(gatewayURL, bpNumber string) *ZIMRAClient {
	return &ZIMRAClient{
		gatewayURL: gatewayURL,
		bpNumber:   bpNumber,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// SubmitRemittance sends a POST to the gateway and returns the payment reference.
func (c *ZIMRAClient) SubmitRemittance(ctx context.Context, payload RemittancePayload) (*RemittanceResponse, error) {
	if payload.BPNumber == "" {
		payload.BPNumber = c.bpNumber
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("zimra: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL+"/remittances", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("zimra: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zimra: gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zimra: gateway returned %d", resp.StatusCode)
	}

	var result RemittanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("zimra: decode response: %w", err)
	}
	return &result, nil
}
