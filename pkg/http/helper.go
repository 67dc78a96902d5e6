package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"printhub/pkg/auth"
	"printhub/pkg/config"
	apperrors "printhub/pkg/errors"
)

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

	var offset int64
	if s := query.Get("offset"); s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = v
	}

	return config.NormalizePaginationLimit(limit), config.NormalizeOffset(offset), nil
}

// DecodeJSON reads the request body into v, rejecting unknown fields.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperrors.InvalidInput("Invalid request body")
	}
	return nil
}

// QueryFloat parses an optional float query parameter.
func QueryFloat(r *http.Request, key string) (*float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}

// QueryInt parses an optional integer query parameter, returning fallback when absent.
func QueryInt(r *http.Request, key string, fallback int) (int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return v, nil
}

// Caller returns the authenticated identity of the request.
func Caller(r *http.Request) (auth.Identity, error) {
	id, ok := auth.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, apperrors.Unauthorized("Authentication required")
	}
	return id, nil
}

// ShopOwner returns the caller when it holds the shop_owner role.
func ShopOwner(r *http.Request) (auth.Identity, error) {
	id, err := Caller(r)
	if err != nil {
		return id, err
	}
	if !id.IsShopOwner() {
		return id, apperrors.Forbidden("Only shop owners can perform this action")
	}
	return id, nil
}
