// Package reconcile reads and writes collection exports and decides what an
// import or a sync should change.
package reconcile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"mspro-labs/tea-buddy/internal/models"
)

// ExportVersion is written into every export.
const ExportVersion = "1.0"

// Payload is the export file: the whole collection plus the shop directory.
type Payload struct {
	Teas       []models.Tea  `json:"teas"`
	Shops      []models.Shop `json:"shops"`
	ExportDate string        `json:"exportDate"`
	Version    string        `json:"version"`
}

// FormatError reports an import file that is not a usable export. Nothing
// is imported when it is returned.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid import file: %s: %v", e.Reason, e.Err)
	}
	return "invalid import file: " + e.Reason
}

func (e *FormatError) Unwrap() error { return e.Err }

// NewPayload builds an export stamped with now.
func NewPayload(teas []models.Tea, shops []models.Shop, now time.Time) Payload {
	if teas == nil {
		teas = []models.Tea{}
	}
	if shops == nil {
		shops = []models.Shop{}
	}
	return Payload{
		Teas:       teas,
		Shops:      shops,
		ExportDate: now.UTC().Format(time.RFC3339Nano),
		Version:    ExportVersion,
	}
}

// Encode writes p as indented JSON.
func Encode(w io.Writer, p Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	return nil
}

// Read decodes an export from r. See Decode.
func Read(r io.Reader) (*Payload, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}
	return Decode(data)
}

// Decode validates and decodes an export. The teas key must hold an array;
// anything else is a FormatError. A shops key that is missing or not an
// array is treated as absent.
func Decode(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &FormatError{Reason: "not a JSON object", Err: err}
	}

	teasRaw, ok := raw["teas"]
	if !ok {
		return nil, &FormatError{Reason: "missing teas array"}
	}
	if !isArray(teasRaw) {
		return nil, &FormatError{Reason: "teas is not an array"}
	}

	p := &Payload{}
	if err := json.Unmarshal(teasRaw, &p.Teas); err != nil {
		return nil, &FormatError{Reason: "malformed teas", Err: err}
	}
	if p.Teas == nil {
		p.Teas = []models.Tea{}
	}

	if shopsRaw, ok := raw["shops"]; ok && isArray(shopsRaw) {
		if err := json.Unmarshal(shopsRaw, &p.Shops); err != nil {
			return nil, &FormatError{Reason: "malformed shops", Err: err}
		}
	}

	// Metadata is informational only.
	_ = json.Unmarshal(raw["exportDate"], &p.ExportDate)
	_ = json.Unmarshal(raw["version"], &p.Version)

	return p, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
