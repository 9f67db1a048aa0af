// Package params holds the fixed table of synth controls and their CC numbers.
package params

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for table validation.
var (
	ErrDuplicateCC = errors.New("duplicate CC number")
	ErrDuplicateID = errors.New("duplicate control id")
	ErrOutOfRange  = errors.New("value out of MIDI data range")
)

// MaxValue is the largest 7-bit MIDI data value
const MaxValue = 127

// Control describes one slider: which CC it drives and where it starts
type Control struct {
	ID      string // "<section>/<label>", e.g. "filter/cutoff"
	Section string
	Label   string
	CC      uint8
	Default uint8
}

// Section is a named group of controls shown together
type Section struct {
	Name     string
	Controls []Control
}

// Spec is the input row used to build a Registry
type Spec struct {
	Label   string
	CC      int
	Default int
}

// SectionSpec groups Spec rows under a section name
type SectionSpec struct {
	Name     string
	Controls []Spec
}

// Registry is a read-only, validated control table
type Registry struct {
	sections []Section
	byID     map[string]Control
	byCC     map[uint8]Control
}

// nts1 is the default table for the Korg NTS-1
var nts1 = []SectionSpec{
	{Name: "Osc", Controls: []Spec{
		{"Wave-shape Amount", 54, 0},
		{"LFO Rate", 24, 0},
		{"LFO Depth", 26, 0},
	}},
	{Name: "Amp Env", Controls: []Spec{
		{"Attack", 16, 0},
		{"Release", 19, 64},
	}},
	{Name: "Filter", Controls: []Spec{
		{"Cutoff", 43, 127},
		{"Resonance", 44, 0},
	}},
	{Name: "Tremolo", Controls: []Spec{
		{"Rate", 20, 0},
		{"Depth", 21, 0},
	}},
	{Name: "Modulation", Controls: []Spec{
		{"Time", 28, 0},
		{"Depth", 29, 0},
	}},
	{Name: "Delay", Controls: []Spec{
		{"Time", 30, 0},
		{"Depth", 31, 0},
		{"Mix", 33, 0},
	}},
	{Name: "Reverb", Controls: []Spec{
		{"Time", 34, 0},
		{"Depth", 35, 0},
		{"Mix", 36, 0},
	}},
}

// Default returns the built-in control table
func Default() *Registry {
	r, err := New(nts1)
	if err != nil {
		panic(fmt.Sprintf("params: built-in table is invalid: %v", err))
	}
	return r
}

// New validates specs and builds a Registry from them
func New(specs []SectionSpec) (*Registry, error) {
	r := &Registry{
		byID: make(map[string]Control),
		byCC: make(map[uint8]Control),
	}

	for _, ss := range specs {
		section := Section{Name: ss.Name}
		for _, s := range ss.Controls {
			if s.CC < 0 || s.CC > MaxValue {
				return nil, fmt.Errorf("%w: %s/%s cc %d", ErrOutOfRange, ss.Name, s.Label, s.CC)
			}
			if s.Default < 0 || s.Default > MaxValue {
				return nil, fmt.Errorf("%w: %s/%s default %d", ErrOutOfRange, ss.Name, s.Label, s.Default)
			}

			c := Control{
				ID:      ControlID(ss.Name, s.Label),
				Section: ss.Name,
				Label:   s.Label,
				CC:      uint8(s.CC),
				Default: uint8(s.Default),
			}
			if prev, ok := r.byCC[c.CC]; ok {
				return nil, fmt.Errorf("%w: %d used by %s and %s", ErrDuplicateCC, c.CC, prev.ID, c.ID)
			}
			if _, ok := r.byID[c.ID]; ok {
				return nil, fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
			}

			r.byCC[c.CC] = c
			r.byID[c.ID] = c
			section.Controls = append(section.Controls, c)
		}
		r.sections = append(r.sections, section)
	}
	return r, nil
}

// ControlID builds the id of the control labelled label in section
func ControlID(section, label string) string {
	slug := func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
	}
	return slug(section) + "/" + slug(label)
}

// Sections returns the sections in display order. The result is a copy.
func (r *Registry) Sections() []Section {
	out := make([]Section, len(r.sections))
	for i, s := range r.sections {
		out[i] = Section{
			Name:     s.Name,
			Controls: append([]Control(nil), s.Controls...),
		}
	}
	return out
}

// Controls returns every control in display order
func (r *Registry) Controls() []Control {
	var out []Control
	for _, s := range r.sections {
		out = append(out, s.Controls...)
	}
	return out
}

// Lookup returns the control with the given id
func (r *Registry) Lookup(id string) (Control, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Find returns the control labelled label in the named section
func (r *Registry) Find(section, label string) (Control, bool) {
	return r.Lookup(ControlID(section, label))
}

// ByCC returns the control driving the given CC number
func (r *Registry) ByCC(cc uint8) (Control, bool) {
	c, ok := r.byCC[cc]
	return c, ok
}
