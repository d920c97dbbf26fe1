package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "innkeep/pkg/errors"
)

func TestExtractLimitOffset(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		limit       int
		offset      int64
		expectError bool
	}{
		{"defaults", "", 10, 0, false},
		{"explicit", "?limit=25&offset=50", 25, 50, false},
		{"negative clamps", "?limit=-3&offset=-9", 10, 0, false},
		{"limit above max", "?limit=100000", 100, 0, false},
		{"alphabetic limit", "?limit=abc", 0, 0, true},
		{"alphabetic offset", "?offset=xyz", 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/x"+tt.query, nil)
			limit, offset, err := ExtractLimitOffset(r)
			if tt.expectError {
				if !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
					t.Fatalf("expected INVALID_INPUT, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if limit != tt.limit || offset != tt.offset {
				t.Errorf("expected %d/%d, got %d/%d", tt.limit, tt.offset, limit, offset)
			}
		})
	}
}

func TestParseDateParam(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?check_in=2025-12-12&bad=12/12/2025", nil)

	d, err := ParseDateParam(r, "check_in")
	if err != nil || !d.Equal(time.Date(2025, 12, 12, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("expected 2025-12-12, got %v %v", d, err)
	}
	if _, err := ParseDateParam(r, "bad"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for malformed date, got %v", err)
	}
	if _, err := ParseDateParam(r, "check_out"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT for missing date, got %v", err)
	}
}

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	if err := WriteError(w, apperrors.DateRangeConflict("overlaps reservation HTL-1", nil)); err != nil {
		t.Fatalf("WriteError: %v", err)
	}
	if w.Code != http.StatusConflict || !strings.Contains(w.Body.String(), `"code":"DATE_RANGE_CONFLICT"`) {
		t.Errorf("unexpected response %d %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	_ = WriteError(w, errors.New("mongo: connection reset by peer"))
	if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "mongo") {
		t.Errorf("internal errors must not leak: %d %s", w.Code, w.Body.String())
	}
}
