package models

import "testing"

func TestValidateStatusTransition(t *testing.T) {
	cases := []struct {
		from    InvoiceStatus
		to      InvoiceStatus
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSubmitted, true},
		{InvoiceStatusDraft, InvoiceStatusError, true},
		{InvoiceStatusDraft, InvoiceStatusPosted, false},
		{InvoiceStatusError, InvoiceStatusSubmitted, true},
		{InvoiceStatusError, InvoiceStatusError, true},
		{InvoiceStatusError, InvoiceStatusPosted, false},
		{InvoiceStatusSubmitted, InvoiceStatusPosted, true},
		{InvoiceStatusSubmitted, InvoiceStatusDraft, false},
		{InvoiceStatusSubmitted, InvoiceStatusError, false},
		{InvoiceStatusPosted, InvoiceStatusDraft, false},
		{InvoiceStatusPosted, InvoiceStatusSubmitted, false},
		{InvoiceStatusPosted, InvoiceStatusError, false},
	}

	for _, tc := range cases {
		err := ValidateStatusTransition(tc.from, tc.to)
		if tc.allowed && err != nil {
			t.Fatalf("%s -> %s should be allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.allowed && err == nil {
			t.Fatalf("%s -> %s should be rejected", tc.from, tc.to)
		}
	}
}

func TestInvoiceIsEditable(t *testing.T) {
	cases := []struct {
		status   InvoiceStatus
		editable bool
	}{
		{InvoiceStatusDraft, true},
		{InvoiceStatusSubmitted, false},
		{InvoiceStatusPosted, false},
		{InvoiceStatusError, false},
	}
	for _, tc := range cases {
		invoice := Invoice{CurrentStatus: tc.status}
		if invoice.IsEditable() != tc.editable {
			t.Fatalf("status %s: expected editable=%v", tc.status, tc.editable)
		}
	}
}
