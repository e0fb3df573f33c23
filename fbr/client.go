package fbr

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// Client talks to the tax authority's digital invoicing API.
// When no base URL is configured (or FBR_MODE=mock) it runs in mock
// mode: submissions are accepted locally without any network call,
// which is how development and CI environments operate.
type Client struct {
	baseURL string
	token   string
	mock    bool
	http    *http.Client
	limiter <-chan time.Time
}

func NewClient(token string) (*Client, error) {
	baseURL := strings.TrimSpace(os.Getenv("FBR_API_BASE_URL"))
	mode := strings.TrimSpace(strings.ToLower(os.Getenv("FBR_MODE")))
	mock := mode == "mock" || baseURL == ""

	if !mock && strings.TrimSpace(token) == "" {
		return nil, errors.New("fbr api token is empty")
	}

	rateLimitPerMin := int64(30)
	if v := strings.TrimSpace(os.Getenv("FBR_RATE_LIMIT_PER_MIN")); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			rateLimitPerMin = n
		}
	}
	interval := time.Minute / time.Duration(rateLimitPerMin)

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		mock:    mock,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: time.Tick(interval),
	}, nil
}

func (c *Client) IsMock() bool {
	return c.mock
}

// PostInvoice submits an invoice document.
// A non-nil error means the call itself failed (network, bad token);
// a rejection by the authority comes back as Accepted=false with the
// raw response attached.
func (c *Client) PostInvoice(ctx context.Context, payload *InvoicePayload) (*SubmitResult, error) {
	if c.mock {
		return c.mockPostInvoice(payload)
	}

	<-c.limiter
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	endpoint := c.baseURL + "/di_data/v1/di/postinvoicedata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fbr api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed submitAPIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, err
	}

	result := &SubmitResult{
		Accepted:      parsed.ValidationResponse.StatusCode == statusCodeAccepted,
		InvoiceNumber: parsed.InvoiceNumber,
		StatusCode:    parsed.ValidationResponse.StatusCode,
		ErrorMessage:  parsed.ValidationResponse.Error,
		RawResponse:   string(respBody),
	}
	return result, nil
}

// GetInvoiceStatus asks whether a submitted invoice has been posted to
// the authority's ledger.
func (c *Client) GetInvoiceStatus(ctx context.Context, invoiceNumber string) (string, error) {
	if c.mock {
		// the mock authority posts immediately
		return "posted", nil
	}

	<-c.limiter
	endpoint := c.baseURL + "/di_data/v1/di/invoicestatus?invoiceNumber=" + invoiceNumber
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fbr api error %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var parsed statusAPIResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	return strings.ToLower(parsed.Status), nil
}

// mockPostInvoice accepts everything except scenario ids prefixed with
// "ERR-", which simulate a validation rejection.
func (c *Client) mockPostInvoice(payload *InvoicePayload) (*SubmitResult, error) {
	if strings.HasPrefix(payload.ScenarioId, "ERR-") {
		raw, _ := json.Marshal(submitAPIResponse{
			ValidationResponse: validationResponse{
				StatusCode: statusCodeRejected,
				Status:     "Invalid",
				Error:      "scenario " + payload.ScenarioId + " rejected",
			},
		})
		return &SubmitResult{
			Accepted:     false,
			StatusCode:   statusCodeRejected,
			ErrorMessage: "scenario " + payload.ScenarioId + " rejected",
			RawResponse:  string(raw),
		}, nil
	}

	invoiceNumber := "FBR-" + payload.InvoiceRefNo
	raw, _ := json.Marshal(submitAPIResponse{
		InvoiceNumber: invoiceNumber,
		ValidationResponse: validationResponse{
			StatusCode: statusCodeAccepted,
			Status:     "Valid",
		},
	})
	return &SubmitResult{
		Accepted:      true,
		InvoiceNumber: invoiceNumber,
		StatusCode:    statusCodeAccepted,
		RawResponse:   string(raw),
	}, nil
}
