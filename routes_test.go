package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/taxfocuspk/invoicing_backend/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestListResponseEnvelope(t *testing.T) {
	body := listResponse([]string{"a", "b"}, 42)

	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var decoded struct {
		Data  []string `json:"data"`
		Count int64    `json:"count"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(decoded.Data) != 2 || decoded.Count != 42 {
		t.Fatalf("unexpected envelope: %+v", decoded)
	}
}

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"record not found", utils.ErrorRecordNotFound, http.StatusNotFound, "not found"},
		{"not permitted", utils.ErrorNotPermitted, http.StatusBadRequest, "Not enough permissions"},
		{"other error", errors.New("duplicate invoice_ref_no"), http.StatusBadRequest, "duplicate invoice_ref_no"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)

		respondError(c, tc.err)

		if w.Code != tc.wantStatus {
			t.Fatalf("%s: status = %d, want %d", tc.name, w.Code, tc.wantStatus)
		}
		var body map[string]string
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: bad body: %v", tc.name, err)
		}
		if body["error"] != tc.wantError {
			t.Fatalf("%s: error = %q, want %q", tc.name, body["error"], tc.wantError)
		}
	}
}

func TestPaginationParams(t *testing.T) {
	cases := []struct {
		name      string
		url       string
		wantSkip  int
		wantLimit int
	}{
		{"defaults", "/customers", 0, 0},
		{"explicit", "/customers?skip=20&limit=10", 20, 10},
		{"negative skip clamped", "/customers?skip=-5&limit=10", 0, 10},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, tc.url, nil)

		search, skip, limit := paginationParams(c)
		if search != nil {
			t.Fatalf("%s: expected nil search, got %q", tc.name, *search)
		}
		if skip != tc.wantSkip || limit != tc.wantLimit {
			t.Fatalf("%s: got skip=%d limit=%d, want %d/%d", tc.name, skip, limit, tc.wantSkip, tc.wantLimit)
		}
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/customers?search=acme", nil)
	search, _, _ := paginationParams(c)
	if search == nil || *search != "acme" {
		t.Fatal("expected search term to be passed through")
	}
}
