package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"innkeep/pkg/config"
	apperrors "innkeep/pkg/errors"
)

// DateLayout is the wire format of calendar dates (check-in, check-out).
const DateLayout = "2006-01-02"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ParseDateParam reads a required YYYY-MM-DD query parameter.
func ParseDateParam(r *http.Request, name string) (time.Time, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("'%s' query parameter is required", name))
	}
	d, err := time.Parse(DateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput(fmt.Sprintf("invalid %s format, must be YYYY-MM-DD", name))
	}
	return d, nil
}

// DecodeJSON decodes the request body into target, rejecting unknown fields.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return apperrors.InvalidInput("Invalid request body").WithDetails(map[string]any{"error": err.Error()})
	}
	return nil
}
