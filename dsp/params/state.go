package params

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/cwbudde/algo-moddelay/dsp/engine"
)

// ErrInvalidState is returned when persisted state cannot be decoded.
var ErrInvalidState = errors.New("params: invalid state")

// StateVersion is the binary record version written by WriteState.
const StateVersion uint32 = 1

var stateMagic = [6]byte{'M', 'O', 'D', 'F', 'X', 0}

// maxStateEntries bounds the entry count read from untrusted input.
const maxStateEntries = 1 << 10

// WriteState writes the binary state record:
//
//	magic   [6]byte "MODFX\x00"
//	version uint32
//	variant uint32
//	count   uint32
//	count × { id uint32, value float64 }
//
// All integers are little endian.
func (r *Registry) WriteState(w io.Writer) error {
	buf := make([]byte, 0, len(stateMagic)+12+12*len(r.order))
	buf = append(buf, stateMagic[:]...)
	buf = binary.LittleEndian.AppendUint32(buf, StateVersion)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(r.variant))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(r.order)))
	for _, p := range r.order {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(p.ID))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(p.Value()))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("params: write state: %w", err)
	}
	return nil
}

// ReadState restores values from a record written by WriteState. IDs this
// registry does not declare are skipped. Values are clamped to the
// declared ranges. A record from another variant is accepted so presets can
// be shared; only the overlapping parameters apply. On error no value is
// changed.
func (r *Registry) ReadState(rd io.Reader) error {
	var magic [6]byte
	if _, err := io.ReadFull(rd, magic[:]); err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidState, err)
	}
	if magic != stateMagic {
		return fmt.Errorf("%w: bad magic %q", ErrInvalidState, magic[:])
	}

	var hdr struct {
		Version uint32
		Variant uint32
		Count   uint32
	}
	if err := binary.Read(rd, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("%w: header: %w", ErrInvalidState, err)
	}
	if hdr.Version == 0 || hdr.Version > StateVersion {
		return fmt.Errorf("%w: version %d not supported (max %d)", ErrInvalidState, hdr.Version, StateVersion)
	}
	if hdr.Count > maxStateEntries {
		return fmt.Errorf("%w: %d entries", ErrInvalidState, hdr.Count)
	}

	type entry struct {
		ID    uint32
		Value float64
	}
	entries := make([]entry, hdr.Count)
	if err := binary.Read(rd, binary.LittleEndian, entries); err != nil {
		return fmt.Errorf("%w: entries: %w", ErrInvalidState, err)
	}

	for _, e := range entries {
		if math.IsNaN(e.Value) || math.IsInf(e.Value, 0) {
			return fmt.Errorf("%w: parameter %d is not finite", ErrInvalidState, e.ID)
		}
	}
	for _, e := range entries {
		if p := r.Get(ID(e.ID)); p != nil {
			p.Set(e.Value)
		}
	}
	return nil
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (r *Registry) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := r.WriteState(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (r *Registry) UnmarshalBinary(data []byte) error {
	return r.ReadState(bytes.NewReader(data))
}

// Preset is the JSON form of a registry's values, keyed by parameter key.
type Preset struct {
	Variant string             `json:"variant"`
	Values  map[string]float64 `json:"values"`
}

// Preset captures the current values.
func (r *Registry) Preset() Preset {
	p := Preset{
		Variant: r.variant.String(),
		Values:  make(map[string]float64, len(r.order)),
	}
	for _, q := range r.order {
		p.Values[q.Key] = q.Value()
	}
	return p
}

// Apply sets every value in p this registry declares. Unknown keys are
// ignored.
func (r *Registry) Apply(p Preset) {
	for key, v := range p.Values {
		if q, ok := r.Lookup(key); ok && !math.IsInf(v, 0) {
			q.Set(v)
		}
	}
}

// WritePreset writes the current values as indented JSON.
func (r *Registry) WritePreset(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.Preset()); err != nil {
		return fmt.Errorf("params: write preset: %w", err)
	}
	return nil
}

// ReadPreset decodes a JSON preset and applies it. As with ReadState, a
// preset from another variant applies its overlapping keys.
func (r *Registry) ReadPreset(rd io.Reader) error {
	var p Preset
	if err := json.NewDecoder(rd).Decode(&p); err != nil {
		return fmt.Errorf("%w: preset: %w", ErrInvalidState, err)
	}
	if p.Variant != "" {
		if _, err := engine.ParseVariant(p.Variant); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidState, err)
		}
	}
	r.Apply(p)
	return nil
}
