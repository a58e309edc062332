// Package ingest turns readings documents into finalized frames.
//
// A readings document lists frames, each a sparse set of slot assignments:
//
//	frames:
//	  - ints:
//	      - {slot: 0, value: 17}
//	    floats:
//	      - {slot: 1, value: 3.5}
//	    payload: "wake=1"
//
// JSON documents with the same shape are accepted as well.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/banshee-data/sensorframe/internal/frame"
)

const maxReadingsSize = 16 * 1024 * 1024 // 16MB

// IntReading assigns one integer slot.
type IntReading struct {
	Slot  int   `json:"slot" yaml:"slot"`
	Value int64 `json:"value" yaml:"value"`
}

// FloatReading assigns one float slot.
type FloatReading struct {
	Slot  int     `json:"slot" yaml:"slot"`
	Value float64 `json:"value" yaml:"value"`
}

// Reading is the input for a single frame.
type Reading struct {
	Ints    []IntReading   `json:"ints,omitempty" yaml:"ints,omitempty"`
	Floats  []FloatReading `json:"floats,omitempty" yaml:"floats,omitempty"`
	Payload string         `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Document is a readings file.
type Document struct {
	Frames []Reading `json:"frames" yaml:"frames"`
}

// ParseReadings decodes a YAML or JSON readings document.
func ParseReadings(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse readings: %w", err)
	}
	return &doc, nil
}

// LoadReadings reads and parses the readings document at path.
func LoadReadings(path string) (*Document, error) {
	cleanPath := filepath.Clean(path)
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat readings file: %w", err)
	}
	if info.Size() > maxReadingsSize {
		return nil, fmt.Errorf("readings file too large: %d bytes (max %d)", info.Size(), maxReadingsSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read readings file: %w", err)
	}
	return ParseReadings(data)
}

// Apply writes r into b in document order: ints, then floats, then the
// payload if one is given. A later assignment to the same slot overwrites an
// earlier one.
func Apply(b *frame.Builder, r Reading) error {
	for _, v := range r.Ints {
		if err := b.SetInt(v.Slot, v.Value); err != nil {
			return err
		}
	}
	for _, v := range r.Floats {
		if err := b.SetFloat(v.Slot, v.Value); err != nil {
			return err
		}
	}
	if r.Payload != "" {
		if err := b.SetPayload(r.Payload); err != nil {
			return err
		}
	}
	return nil
}

// Build builds and finalizes one frame from r.
func Build(schema frame.Schema, r Reading) (*frame.Frame, error) {
	b, err := frame.NewBuilder(schema)
	if err != nil {
		return nil, err
	}
	if err := Apply(b, r); err != nil {
		return nil, err
	}
	return b.Finalize()
}
