package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Options is the free-form attribute bag of a cart item (size, color, ...).
// Two items with the same product and equal options are the same line.
type Options map[string]any

// NewOptions normalizes raw through a JSON round trip so that values compare
// the same way whether they came from a caller or from storage.
func NewOptions(raw map[string]any) (Options, error) {
	if len(raw) == 0 {
		return Options{}, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return ParseOptions(data)
}

// ParseOptions decodes the stored JSON text of an options bag.
func ParseOptions(data []byte) (Options, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) || bytes.Equal(data, []byte("[]")) {
		return Options{}, nil
	}

	var o Options
	if err := json.Unmarshal(data, &o); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if o == nil {
		o = Options{}
	}

	return o, nil
}

// Encode returns the JSON text stored alongside the item.
func (o Options) Encode() (string, error) {
	if o == nil {
		o = Options{}
	}

	data, err := json.Marshal(o)
	if err != nil {
		return "", fmt.Errorf("json.Marshal: %w", err)
	}

	return string(data), nil
}

// Equal reports structural equality over the whole bag.
func (o Options) Equal(other Options) bool {
	a, errA := o.Encode()
	b, errB := other.Encode()

	return errA == nil && errB == nil && a == b
}
