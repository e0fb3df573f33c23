package utils

import "testing"

func TestIsValidEmail(t *testing.T) {
	cases := []struct {
		in    string
		valid bool
	}{
		{"user@example.com", true},
		{"first.last+tag@sub.domain.pk", true},
		{"not-an-email", false},
		{"missing@tld", false},
		{"@nouser.com", false},
	}
	for _, tc := range cases {
		if IsValidEmail(tc.in) != tc.valid {
			t.Fatalf("IsValidEmail(%q) expected %v", tc.in, tc.valid)
		}
	}
}

func TestUniqueSlice(t *testing.T) {
	got := UniqueSlice([]int{1, 2, 2, 3, 1})
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("UniqueSlice expected [1 2 3], got %v", got)
	}
}

func TestDereferencePtr(t *testing.T) {
	v := 42
	if DereferencePtr(&v) != 42 {
		t.Fatal("expected 42")
	}
	if DereferencePtr[int](nil) != 0 {
		t.Fatal("expected zero value for nil pointer")
	}
	if DereferencePtr(nil, 7) != 7 {
		t.Fatal("expected default 7 for nil pointer")
	}
}

func TestNilIfEmpty(t *testing.T) {
	if NilIfEmpty("") != nil {
		t.Fatal("expected nil for empty string")
	}
	got := NilIfEmpty("x")
	if got == nil || *got != "x" {
		t.Fatal("expected pointer to x")
	}
}

func TestParseDecimal(t *testing.T) {
	d, err := ParseDecimal(" 1234.56 ")
	if err != nil {
		t.Fatalf("ParseDecimal error: %v", err)
	}
	if d.String() != "1234.56" {
		t.Fatalf("expected 1234.56, got %s", d)
	}
	if _, err := ParseDecimal(""); err == nil {
		t.Fatal("expected error for empty string")
	}
	if _, err := ParseDecimal("abc"); err == nil {
		t.Fatal("expected error for non-numeric string")
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	if err := ValidatePhoneNumber("+923001234567", CountryCode); err != nil {
		t.Fatalf("valid PK mobile rejected: %v", err)
	}
	if err := ValidatePhoneNumber("12345", CountryCode); err == nil {
		t.Fatal("expected error for invalid number")
	}
}
