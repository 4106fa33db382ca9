// Package catalog reads the input tables and joins flares with their light
// curves and with stellar-parameter catalogs.
package catalog

import (
	"fmt"
	"math"
	"sort"

	"github.com/HamletTheHamster/xray-flare-loops/internal/flare"
)

// Median returns the median of x, averaging the two middle values for even
// lengths. x is not modified.
func Median(x []float64) (float64, error) {
	if len(x) == 0 {
		return 0, ErrNoSamples
	}
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	m := len(s) / 2
	if len(s)%2 == 1 {
		return s[m], nil
	}
	return (s[m-1] + s[m]) / 2, nil
}

// Normalize divides the detrended flux by the median of all samples outside
// the flares of this sector, each widened by pad. It returns a new segment
// and the median used.
func Normalize(seg flare.Segment, events []flare.Event, pad float64) (flare.Segment, float64, error) {
	var quiet []float64
	for _, smp := range seg.Samples {
		inFlare := false
		for _, ev := range events {
			if ev.Sector != seg.Sector {
				continue
			}
			if smp.Time >= ev.Start-pad && smp.Time <= ev.Stop+pad {
				inFlare = true
				break
			}
		}
		if !inFlare {
			quiet = append(quiet, smp.Flux)
		}
	}

	med, err := Median(quiet)
	if err != nil {
		return flare.Segment{}, 0, fmt.Errorf("sector %d out-of-flare flux: %w", seg.Sector, err)
	}
	if med == 0 {
		return flare.Segment{}, 0, fmt.Errorf("%w: sector %d", ErrZeroMedian, seg.Sector)
	}

	out := flare.Segment{Sector: seg.Sector, Samples: make([]flare.Sample, len(seg.Samples))}
	for i, smp := range seg.Samples {
		smp.Flux /= med
		out.Samples[i] = smp
	}
	return out, med, nil
}

// PeakTime returns the time of maximum detrended flux strictly inside
// (start, stop) of ev.
func PeakTime(seg flare.Segment, ev flare.Event) (float64, error) {
	in := seg.Between(ev.Start, ev.Stop)
	if in.Len() == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoSamples, ev.Name())
	}
	best := in.Samples[0]
	for _, smp := range in.Samples[1:] {
		if smp.Flux > best.Flux {
			best = smp
		}
	}
	return best.Time, nil
}

// Join pairs every event with the segment of its sector, cut to
// (start-pad, stop+pad). Events whose peak is NaN get the light-curve peak;
// if none can be found the peak stays NaN and the window fails validation
// downstream. Events whose sector has no segment are returned as dropped.
// Input order is preserved.
func Join(events []flare.Event, segments []flare.Segment, pad float64) ([]flare.Window, []flare.Event) {
	bySector := make(map[int]flare.Segment, len(segments))
	for _, s := range segments {
		bySector[s.Sector] = s
	}

	var windows []flare.Window
	var dropped []flare.Event
	for _, ev := range events {
		seg, ok := bySector[ev.Sector]
		if !ok {
			dropped = append(dropped, ev)
			continue
		}
		if math.IsNaN(ev.Peak) {
			if peak, err := PeakTime(seg, ev); err == nil {
				ev.Peak = peak
			}
		}
		windows = append(windows, flare.Window{
			Event:   ev,
			Segment: seg.Between(ev.Start-pad, ev.Stop+pad),
		})
	}
	return windows, dropped
}

// Record is one joined row: a flare window with its star attached.
type Record struct {
	flare.Window
	Star Star
}

// JoinStars attaches stellar parameters by star id. Windows whose star is not
// in the catalog are returned as dropped.
func JoinStars(windows []flare.Window, stars []Star) ([]Record, []flare.Window) {
	byID := indexStars(stars)

	var out []Record
	var dropped []flare.Window
	for _, w := range windows {
		s, ok := byID[w.Event.StarID]
		if !ok {
			dropped = append(dropped, w)
			continue
		}
		out = append(out, Record{Window: w, Star: s})
	}
	return out, dropped
}

// StarRecord is an FFD joined with its star.
type StarRecord struct {
	StarFFD
	Star Star
}

// JoinFFD attaches stellar parameters to FFD rows by star id. Rows whose
// star is not in the catalog are returned as dropped.
func JoinFFD(rows []StarFFD, stars []Star) ([]StarRecord, []StarFFD) {
	byID := indexStars(stars)

	var out []StarRecord
	var dropped []StarFFD
	for _, r := range rows {
		s, ok := byID[r.StarID]
		if !ok {
			dropped = append(dropped, r)
			continue
		}
		out = append(out, StarRecord{StarFFD: r, Star: s})
	}
	return out, dropped
}

// indexStars keys stars by id; the first entry of a duplicated id wins.
func indexStars(stars []Star) map[int64]Star {
	byID := make(map[int64]Star, len(stars))
	for _, s := range stars {
		if _, ok := byID[s.StarID]; !ok {
			byID[s.StarID] = s
		}
	}
	return byID
}

// ForStar returns the events of one star.
func ForStar(events []flare.Event, star int64) []flare.Event {
	var out []flare.Event
	for _, ev := range events {
		if ev.StarID == star {
			out = append(out, ev)
		}
	}
	return out
}

// SortByTime returns the events ordered by start time.
func SortByTime(events []flare.Event) []flare.Event {
	out := append([]flare.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

// SortByEnergy returns the events ordered by ascending energy. Equal
// energies keep their input order.
func SortByEnergy(events []flare.Event) []flare.Event {
	out := append([]flare.Event(nil), events...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Energy < out[j].Energy })
	return out
}

// Energies returns the energy column.
func Energies(events []flare.Event) []float64 {
	e := make([]float64, len(events))
	for i, ev := range events {
		e[i] = ev.Energy
	}
	return e
}

// DropLargest removes the first event with the largest equivalent duration.
func DropLargest(events []flare.Event) ([]flare.Event, flare.Event, bool) {
	if len(events) == 0 {
		return nil, flare.Event{}, false
	}
	k := 0
	for i, ev := range events {
		if ev.ED > events[k].ED {
			k = i
		}
	}
	out := make([]flare.Event, 0, len(events)-1)
	out = append(out, events[:k]...)
	out = append(out, events[k+1:]...)
	return out, events[k], true
}

// ApplyEnergyFactor fills in bolometric energies from equivalent durations.
// A zero factor means the catalog column already holds energies in erg.
// Events that carry an energy of their own keep it.
func ApplyEnergyFactor(events []flare.Event, factor float64) []flare.Event {
	if factor == 0 {
		factor = 1
	}
	out := append([]flare.Event(nil), events...)
	for i := range out {
		if math.IsNaN(out[i].Energy) || out[i].Energy == 0 {
			out[i].Energy = out[i].ED * factor
			out[i].EnergyErr = out[i].EDErr * factor
		}
	}
	return out
}
