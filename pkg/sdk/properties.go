package sdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// PropertyService manages the property catalog.
type PropertyService struct {
	client *Client
}

// Upsert creates or replaces the property stored under its ID.
// It reports whether a new record was created.
func (s *PropertyService) Upsert(ctx context.Context, p Property) (bool, error) {
	if p.ID == "" {
		return false, fmt.Errorf("upsert property: %w", ErrValidation)
	}
	var stored Property
	status, err := s.client.do(ctx, http.MethodPut,
		"/v1/properties/"+url.PathEscape(p.ID), p, &stored)
	if err != nil {
		return false, fmt.Errorf("upsert property: %w", err)
	}
	return status == http.StatusCreated, nil
}

// Get fetches one catalogued property.
func (s *PropertyService) Get(ctx context.Context, id string) (Property, error) {
	if id == "" {
		return Property{}, fmt.Errorf("get property: %w", ErrValidation)
	}
	var out Property
	if _, err := s.client.do(ctx, http.MethodGet,
		"/v1/properties/"+url.PathEscape(id), nil, &out); err != nil {
		return Property{}, fmt.Errorf("get property: %w", err)
	}
	return out, nil
}

// Delete removes a property and its derived artifacts from the catalog.
func (s *PropertyService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete property: %w", ErrValidation)
	}
	if _, err := s.client.do(ctx, http.MethodDelete,
		"/v1/properties/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return nil
}

// List pages through the catalog. Pass the NextCursor of the previous
// page to continue; an empty cursor starts from the beginning. Zero
// limit keeps the server default.
func (s *PropertyService) List(ctx context.Context, cursor string, limit int) (PropertyList, error) {
	q := url.Values{}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/v1/properties"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out PropertyList
	if _, err := s.client.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return PropertyList{}, fmt.Errorf("list properties: %w", err)
	}
	return out, nil
}
