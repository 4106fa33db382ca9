// Package flare holds the records shared by the fitting and aggregation code:
// catalog flare events and the light-curve samples around them.
package flare

import (
	"fmt"
	"sort"
)

// Event is one catalog flare. Times share the light curve's time axis
// (BJD - 2457000 for TESS, mission seconds for the OM).
type Event struct {
	StarID int64
	Sector int

	Start float64
	Stop  float64
	// Peak is NaN until taken from the catalog or the light curve.
	Peak      float64
	Amplitude float64

	// ED is the equivalent duration in seconds.
	ED    float64
	EDErr float64

	// Energy is the bolometric flare energy in erg.
	Energy    float64
	EnergyErr float64

	// TotalObsTime is the observing baseline of the star, in days.
	TotalObsTime float64

	// EFold is attached after fitting.
	EFold float64
}

// Name identifies the event in diagnostics.
func (e Event) Name() string {
	return fmt.Sprintf("sector %d flare at %.5f", e.Sector, e.Start)
}

// HalfWidth is the initial e-folding time guess, half the flare duration.
func (e Event) HalfWidth() float64 {
	return (e.Stop - e.Start) / 2
}

// Validate checks start < peak < stop and 0 < half-width < maxHalfWidth.
func (e Event) Validate(maxHalfWidth float64) error {
	if !(e.Start < e.Peak && e.Peak < e.Stop) {
		return fmt.Errorf("%w: %s: peak %v outside (%v, %v)", ErrInvalidEvent, e.Name(), e.Peak, e.Start, e.Stop)
	}
	if hw := e.HalfWidth(); !(hw > 0 && hw < maxHalfWidth) {
		return fmt.Errorf("%w: %s: half-width %v outside (0, %v)", ErrInvalidEvent, e.Name(), hw, maxHalfWidth)
	}
	if e.Amplitude <= 0 {
		return fmt.Errorf("%w: %s: amplitude %v must be positive", ErrInvalidEvent, e.Name(), e.Amplitude)
	}
	return nil
}

// Sample is one light-curve cadence.
type Sample struct {
	Time    float64
	RawFlux float64
	Flux    float64 // detrended
}

// Segment is a time-ordered run of samples from one sector.
type Segment struct {
	Sector  int
	Samples []Sample
}

// Len returns the number of samples.
func (s Segment) Len() int {
	return len(s.Samples)
}

// Sort orders the samples by time.
func (s Segment) Sort() {
	sort.SliceStable(s.Samples, func(i, j int) bool {
		return s.Samples[i].Time < s.Samples[j].Time
	})
}

// Between returns the samples with lo < time < hi as a new segment.
func (s Segment) Between(lo, hi float64) Segment {
	out := Segment{Sector: s.Sector}
	for _, smp := range s.Samples {
		if smp.Time > lo && smp.Time < hi {
			out.Samples = append(out.Samples, smp)
		}
	}
	return out
}

// Times returns the time column.
func (s Segment) Times() []float64 {
	t := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		t[i] = smp.Time
	}
	return t
}

// Fluxes returns the detrended flux column.
func (s Segment) Fluxes() []float64 {
	y := make([]float64, len(s.Samples))
	for i, smp := range s.Samples {
		y[i] = smp.Flux
	}
	return y
}

// Window pairs a flare with the light curve cut around it.
type Window struct {
	Event   Event
	Segment Segment
}
