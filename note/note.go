// Package note maps frequencies onto the equal-tempered scale.
package note

import (
	"fmt"
	"math"
	"strconv"
)

// pitchClasses lists the twelve note names in semitone order from C.
var pitchClasses = [12]string{
	"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B",
}

const (
	// unmappedName marks frequencies with no tempered-scale position.
	unmappedName = "-"

	// lowestSemis is C0 expressed in semitones relative to A4. Anything
	// deeper has no conventional note name.
	lowestSemis = -57
)

// Info describes the tempered-scale position of a frequency.
type Info struct {
	Name   string // pitch class, "-" when unmapped
	Octave int
	Cents  int // deviation from the note center, -50..50
}

// Valid reports whether the Info names a real note.
func (i Info) Valid() bool {
	return i.Name != unmappedName
}

// String formats the note as name plus octave, e.g. "A4". Unmapped
// frequencies format as "-".
func (i Info) String() string {
	if !i.Valid() {
		return unmappedName
	}

	return i.Name + strconv.Itoa(i.Octave)
}

// Mapper converts frequencies to notes against a configurable reference.
type Mapper struct {
	cfg MapperConfig
}

// NewMapper creates a note mapper with the given options.
func NewMapper(opts ...MapperOption) *Mapper {
	return &Mapper{cfg: ApplyMapperOptions(opts...)}
}

// Config returns the mapper configuration.
func (m *Mapper) Config() MapperConfig {
	return m.cfg
}

// Map returns the nearest tempered note for a frequency. Frequencies at or
// below zero, non-finite values, and anything below C0 map to the sentinel
// Info{Name: "-"}. Map never returns NaN-derived values and never panics.
func (m *Mapper) Map(freqHz float64) Info {
	if !(freqHz > 0) || math.IsInf(freqHz, 1) {
		return Info{Name: unmappedName}
	}

	offsetCents := 1200 * math.Log2(freqHz/m.cfg.ReferenceHz)
	semis := int(math.Round(offsetCents / 100))

	if semis < lowestSemis {
		return Info{Name: unmappedName}
	}

	cents := int(math.Round(offsetCents - 100*float64(semis)))
	if cents > 50 {
		cents = 50
	} else if cents < -50 {
		cents = -50
	}

	// Semitones from C4 keep the pitch-class and octave arithmetic in one
	// frame: A4 is nine semitones above C4.
	fromC := semis + 9

	idx := ((fromC % 12) + 12) % 12

	return Info{
		Name:   pitchClasses[idx],
		Octave: 4 + floorDiv(fromC, 12),
		Cents:  cents,
	}
}

// InTune reports whether the note's deviation is inside the configured
// tolerance.
func (m *Mapper) InTune(i Info) bool {
	if !i.Valid() {
		return false
	}

	abs := i.Cents
	if abs < 0 {
		abs = -abs
	}

	return abs < m.cfg.ToleranceCents
}

// Frequency returns the center frequency of a named note, the inverse of
// Map for zero cents.
func (m *Mapper) Frequency(name string, octave int) (float64, error) {
	idx := -1
	for i, pc := range pitchClasses {
		if pc == name {
			idx = i
			break
		}
	}

	if idx < 0 {
		return 0, fmt.Errorf("unknown pitch class: %q", name)
	}

	semis := (octave-4)*12 + idx - 9
	if semis < lowestSemis {
		return 0, fmt.Errorf("note below mappable range: %s%d", name, octave)
	}

	return m.cfg.ReferenceHz * math.Pow(2, float64(semis)/12), nil
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(n, d int) int {
	q := n / d
	if (n%d != 0) && ((n < 0) != (d < 0)) {
		q--
	}

	return q
}
