package fbr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func testPayload(refNo string, scenarioId string) *InvoicePayload {
	return &InvoicePayload{
		InvoiceType:        "Sale Invoice",
		InvoiceDate:        "2026-03-10",
		InvoiceRefNo:       refNo,
		SellerNTNCNIC:      "1234567",
		SellerBusinessName: "Acme Pvt Ltd",
		ScenarioId:         scenarioId,
		Items: []ItemPayload{
			{
				ProductDescription: "Widget",
				Quantity:           decimal.NewFromInt(1),
				UnitPrice:          decimal.NewFromInt(100),
				TotalValue:         decimal.NewFromInt(118),
			},
		},
	}
}

func TestMockPostInvoice_Accepts(t *testing.T) {
	t.Setenv("FBR_MODE", "mock")
	t.Setenv("FBR_API_BASE_URL", "")

	client, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if !client.IsMock() {
		t.Fatal("expected mock client")
	}

	result, err := client.PostInvoice(context.Background(), testPayload("INV-001", "SN001"))
	if err != nil {
		t.Fatalf("PostInvoice error: %v", err)
	}
	if !result.Accepted {
		t.Fatal("expected submission to be accepted")
	}
	if result.InvoiceNumber != "FBR-INV-001" {
		t.Fatalf("expected invoice number FBR-INV-001, got %s", result.InvoiceNumber)
	}
	if result.RawResponse == "" {
		t.Fatal("expected raw response to be recorded")
	}
}

func TestMockPostInvoice_ErrorScenario(t *testing.T) {
	t.Setenv("FBR_MODE", "mock")
	t.Setenv("FBR_API_BASE_URL", "")

	client, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}

	result, err := client.PostInvoice(context.Background(), testPayload("INV-002", "ERR-001"))
	if err != nil {
		t.Fatalf("PostInvoice error: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected ERR- scenario to be rejected")
	}
	if result.StatusCode != statusCodeRejected {
		t.Fatalf("expected status code %s, got %s", statusCodeRejected, result.StatusCode)
	}
	if !strings.Contains(result.ErrorMessage, "ERR-001") {
		t.Fatalf("expected error message to name the scenario, got %q", result.ErrorMessage)
	}
}

func TestMockGetInvoiceStatus_PostsImmediately(t *testing.T) {
	t.Setenv("FBR_MODE", "mock")
	t.Setenv("FBR_API_BASE_URL", "")

	client, err := NewClient("")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	status, err := client.GetInvoiceStatus(context.Background(), "FBR-INV-001")
	if err != nil {
		t.Fatalf("GetInvoiceStatus error: %v", err)
	}
	if status != "posted" {
		t.Fatalf("expected posted, got %s", status)
	}
}

func TestNewClient_RequiresTokenOutsideMock(t *testing.T) {
	t.Setenv("FBR_MODE", "live")
	t.Setenv("FBR_API_BASE_URL", "https://gw.fbr.gov.pk")

	if _, err := NewClient(""); err == nil {
		t.Fatal("expected error for empty token in live mode")
	}
}

func TestPostInvoice_LiveRoundTrip(t *testing.T) {
	var gotAuth string
	var gotPayload InvoicePayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		_ = json.NewEncoder(w).Encode(submitAPIResponse{
			InvoiceNumber: "7000007DI1747119701593",
			ValidationResponse: validationResponse{
				StatusCode: statusCodeAccepted,
				Status:     "Valid",
			},
		})
	}))
	defer srv.Close()

	t.Setenv("FBR_MODE", "live")
	t.Setenv("FBR_API_BASE_URL", srv.URL)
	t.Setenv("FBR_RATE_LIMIT_PER_MIN", "6000")

	client, err := NewClient("sandbox-token")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if client.IsMock() {
		t.Fatal("expected live client")
	}

	result, err := client.PostInvoice(context.Background(), testPayload("INV-003", ""))
	if err != nil {
		t.Fatalf("PostInvoice error: %v", err)
	}
	if gotAuth != "Bearer sandbox-token" {
		t.Fatalf("expected bearer token header, got %q", gotAuth)
	}
	if gotPayload.InvoiceRefNo != "INV-003" {
		t.Fatalf("expected payload ref INV-003, got %s", gotPayload.InvoiceRefNo)
	}
	if !result.Accepted {
		t.Fatal("expected acceptance")
	}
	if result.InvoiceNumber != "7000007DI1747119701593" {
		t.Fatalf("unexpected invoice number %s", result.InvoiceNumber)
	}
}

func TestPostInvoice_LiveRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(submitAPIResponse{
			ValidationResponse: validationResponse{
				StatusCode: statusCodeRejected,
				Status:     "Invalid",
				Error:      "buyer NTN is not registered",
			},
		})
	}))
	defer srv.Close()

	t.Setenv("FBR_MODE", "live")
	t.Setenv("FBR_API_BASE_URL", srv.URL)
	t.Setenv("FBR_RATE_LIMIT_PER_MIN", "6000")

	client, err := NewClient("sandbox-token")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	result, err := client.PostInvoice(context.Background(), testPayload("INV-004", ""))
	if err != nil {
		t.Fatalf("PostInvoice error: %v", err)
	}
	if result.Accepted {
		t.Fatal("expected rejection")
	}
	if !strings.Contains(result.ErrorMessage, "NTN") {
		t.Fatalf("expected validation error message, got %q", result.ErrorMessage)
	}
}

func TestGetInvoiceStatus_Live(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("invoiceNumber") == "" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(statusAPIResponse{
			InvoiceNumber: "FBR-INV-001",
			Status:        "Posted",
		})
	}))
	defer srv.Close()

	t.Setenv("FBR_MODE", "live")
	t.Setenv("FBR_API_BASE_URL", srv.URL)
	t.Setenv("FBR_RATE_LIMIT_PER_MIN", "6000")

	client, err := NewClient("sandbox-token")
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	status, err := client.GetInvoiceStatus(context.Background(), "FBR-INV-001")
	if err != nil {
		t.Fatalf("GetInvoiceStatus error: %v", err)
	}
	if status != "posted" {
		t.Fatalf("expected posted (lowercased), got %s", status)
	}
}
