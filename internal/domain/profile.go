package domain

import (
	"fmt"
	"strings"
)

// Group is an experimental condition tag.
type Group string

const (
	// GroupA sees the profile and adapts to it.
	GroupA Group = "A"
	// GroupB starts without a profile and infers one from the conversation.
	GroupB Group = "B"
	// GroupC sees the profile but is told not to adapt.
	GroupC Group = "C"
	// GroupD receives the base instruction only.
	GroupD Group = "D"
)

// Groups lists every condition tag.
var Groups = []Group{GroupA, GroupB, GroupC, GroupD}

// Valid reports whether g is one of the four condition tags.
func (g Group) Valid() bool {
	switch g {
	case GroupA, GroupB, GroupC, GroupD:
		return true
	}
	return false
}

// Dimension names one axis of the Felder–Silverman learning-style model.
type Dimension string

const (
	ActiveReflective Dimension = "Active-Reflective"
	SensingIntuitive Dimension = "Sensing-Intuitive"
	VisualVerbal     Dimension = "Visual-Verbal"
	SequentialGlobal Dimension = "Sequential-Global"
)

// Dimensions lists the four fixed dimensions in canonical order.
var Dimensions = []Dimension{ActiveReflective, SensingIntuitive, VisualVerbal, SequentialGlobal}

// Profile maps each dimension to a score.
type Profile map[Dimension]int

// ZeroProfile returns a profile with every dimension set to 0.
func ZeroProfile() Profile {
	p := make(Profile, len(Dimensions))
	for _, d := range Dimensions {
		p[d] = 0
	}
	return p
}

// Clone returns an independent copy of p.
func (p Profile) Clone() Profile {
	if p == nil {
		return nil
	}
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Complete reports whether p has exactly the four fixed dimensions.
func (p Profile) Complete() bool {
	if len(p) != len(Dimensions) {
		return false
	}
	for _, d := range Dimensions {
		if _, ok := p[d]; !ok {
			return false
		}
	}
	return true
}

// String renders the profile in canonical dimension order, e.g.
// {'Active-Reflective': 3, 'Sensing-Intuitive': -1, ...}.
func (p Profile) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, d := range Dimensions {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "'%s': %d", d, p[d])
	}
	b.WriteByte('}')
	return b.String()
}
