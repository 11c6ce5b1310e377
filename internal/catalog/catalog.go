// Package catalog lists the image-capable models of the provider's model
// catalog, caching the raw catalog on disk for a few hours.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
)

// ErrInvalidCatalog is returned when a models document cannot be decoded.
var ErrInvalidCatalog = errors.New("invalid model catalog")

// Source fetches the raw catalog JSON.
type Source interface {
	FetchModels(ctx context.Context) ([]byte, error)
}

// Catalog is a parsed model catalog.
type Catalog struct {
	Models []Model
	// Cached is true when the catalog came from the cache file.
	Cached bool
}

// Model is one catalog entry. Only the fields Graft displays are decoded.
type Model struct {
	ID            string       `json:"id" yaml:"id"`
	Name          string       `json:"name,omitempty" yaml:"name,omitempty"`
	Description   string       `json:"description,omitempty" yaml:"description,omitempty"`
	ContextLength int          `json:"context_length,omitempty" yaml:"context_length,omitempty"`
	Pricing       Pricing      `json:"pricing" yaml:"pricing"`
	Architecture  Architecture `json:"architecture" yaml:"architecture"`
}

// Pricing holds USD prices per token.
type Pricing struct {
	Prompt     Price `json:"prompt,omitempty" yaml:"prompt,omitempty"`
	Completion Price `json:"completion,omitempty" yaml:"completion,omitempty"`
	Image      Price `json:"image,omitempty" yaml:"image,omitempty"`
}

// Price is a decimal price. The API sends strings but numbers are accepted.
type Price string

// UnmarshalJSON accepts a JSON string, a number or null.
func (p *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return fmt.Errorf("price %s: %w", data, err)
		}
		*p = Price(strconv.FormatFloat(f, 'f', -1, 64))
	}
	return nil
}

// Architecture describes what a model consumes and produces.
type Architecture struct {
	Modality         string   `json:"modality,omitempty" yaml:"modality,omitempty"`
	InputModalities  []string `json:"input_modalities,omitempty" yaml:"input_modalities,omitempty"`
	OutputModalities []string `json:"output_modalities,omitempty" yaml:"output_modalities,omitempty"`
}

// Parse decodes a catalog, accepting either {"data": [...]} or a bare array.
func Parse(data []byte) (*Catalog, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidCatalog)
	}

	var models []Model
	if data[0] == '[' {
		if err := json.Unmarshal(data, &models); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
		}
		return &Catalog{Models: models}, nil
	}

	var envelope struct {
		Data *[]Model `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrInvalidCatalog)
	}
	return &Catalog{Models: *envelope.Data}, nil
}

// ImageModels returns the models that can output images, in catalog order.
func ImageModels(c *Catalog) []Model {
	if c == nil {
		return nil
	}
	var out []Model
	for _, m := range c.Models {
		if slices.Contains(m.Architecture.OutputModalities, "image") {
			out = append(out, m)
		}
	}
	return out
}

// Fetch returns the catalog from a fresh cache file, or from src when the
// cache is stale, absent or unreadable. A fetched catalog is written back to
// the cache. cache may be nil.
func Fetch(ctx context.Context, src Source, cache *Cache) (*Catalog, error) {
	if data, ok := cache.Load(); ok {
		if cat, err := Parse(data); err == nil {
			cat.Cached = true
			return cat, nil
		}
	}

	data, err := src.FetchModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	cat, err := Parse(data)
	if err != nil {
		return nil, err
	}
	cache.Save(data)
	return cat, nil
}
