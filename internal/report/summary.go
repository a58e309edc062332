// Package report summarises slot occupancy across a batch of frames.
package report

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/sensorframe/internal/frame"
)

// SlotKind is the value type of a slot.
type SlotKind string

const (
	KindInt   SlotKind = "int"
	KindFloat SlotKind = "float"
)

// SlotSummary describes one logical slot across all summarised frames.
type SlotSummary struct {
	Slot      int      `json:"slot"`  // logical index (presence bit)
	Index     int      `json:"index"` // index within its kind
	Kind      SlotKind `json:"kind"`
	Present   int      `json:"present"`
	Occupancy float64  `json:"occupancy"`
	Mean      float64  `json:"mean"`
	StdDev    float64  `json:"std_dev"`
}

// Label is the short name used in charts, e.g. "i3" or "f0".
func (s SlotSummary) Label() string {
	return fmt.Sprintf("%c%d", s.Kind[0], s.Index)
}

// Summary is the occupancy report for a batch of frames sharing one schema.
type Summary struct {
	Schema        frame.Schema  `json:"schema"`
	Frames        int           `json:"frames"`
	MeanOccupancy float64       `json:"mean_occupancy"`
	Slots         []SlotSummary `json:"slots"`
}

// Summarize computes per-slot statistics over frames. Mean and StdDev cover
// present values only; StdDev is 0 when fewer than two values are present.
// Every frame must have the given schema.
func Summarize(schema frame.Schema, frames []*frame.Frame) (*Summary, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	values := make([][]float64, schema.Slots())
	for n, f := range frames {
		if f.Schema() != schema {
			return nil, fmt.Errorf("frame %d has schema %+v, want %+v", n, f.Schema(), schema)
		}
		ints := f.IntValues()
		floats := f.FloatValues()
		for _, slot := range f.PresentSlots() {
			if slot < schema.IntSlots {
				values[slot] = append(values[slot], float64(ints[slot]))
			} else {
				values[slot] = append(values[slot], floats[slot-schema.IntSlots])
			}
		}
	}

	s := &Summary{
		Schema: schema,
		Frames: len(frames),
		Slots:  make([]SlotSummary, schema.Slots()),
	}
	occupancy := make([]float64, schema.Slots())
	for slot, vs := range values {
		ss := SlotSummary{Slot: slot, Index: slot, Kind: KindInt, Present: len(vs)}
		if slot >= schema.IntSlots {
			ss.Kind = KindFloat
			ss.Index = slot - schema.IntSlots
		}
		if len(frames) > 0 {
			ss.Occupancy = float64(len(vs)) / float64(len(frames))
		}
		switch {
		case len(vs) >= 2:
			ss.Mean, ss.StdDev = stat.MeanStdDev(vs, nil)
		case len(vs) == 1:
			ss.Mean = vs[0]
		}
		s.Slots[slot] = ss
		occupancy[slot] = ss.Occupancy
	}
	if len(occupancy) > 0 {
		s.MeanOccupancy = stat.Mean(occupancy, nil)
	}
	return s, nil
}

// WriteText writes a fixed-width table of the summary.
func (s *Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "frames=%d int_slots=%d float_slots=%d mean_occupancy=%.3f\n",
		s.Frames, s.Schema.IntSlots, s.Schema.FloatSlots, s.MeanOccupancy)
	fmt.Fprintf(&b, "%-6s %-5s %8s %9s %12s %12s\n", "slot", "kind", "present", "occupancy", "mean", "stddev")
	for _, ss := range s.Slots {
		fmt.Fprintf(&b, "%-6s %-5s %8d %9.3f %12.4g %12.4g\n",
			ss.Label(), ss.Kind, ss.Present, ss.Occupancy, ss.Mean, ss.StdDev)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
