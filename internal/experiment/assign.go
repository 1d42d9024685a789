package experiment

import (
	"math/rand/v2"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// Assigner picks an experimental condition for each new participant.
type Assigner struct {
	intN func(n int) int
}

// NewAssigner returns an assigner backed by the global random source.
func NewAssigner() *Assigner {
	return &Assigner{intN: rand.IntN}
}

// NewAssignerWithSource returns an assigner drawing from r. r must not be
// shared with other goroutines.
func NewAssignerWithSource(r *rand.Rand) *Assigner {
	return &Assigner{intN: r.IntN}
}

// AssignGroup draws a condition uniformly at random.
func (a *Assigner) AssignGroup() domain.Group {
	return domain.Groups[a.intN(len(domain.Groups))]
}

// InitialProfile returns the profile exposed to the assistant. Group B
// starts from an all-zero profile; every other group uses computed as-is.
func InitialProfile(group domain.Group, computed domain.Profile) domain.Profile {
	if group == domain.GroupB {
		return domain.ZeroProfile()
	}
	return computed.Clone()
}
