// Package fslsm scores the Index of Learning Styles questionnaire.
//
// The questionnaire has 44 forced-choice items. Item i (0-based) measures
// dimension i%4, and each dimension is scored as the number of "A" answers
// minus the number of "B" answers, giving an odd value in [-11, 11] when
// every item is answered.
package fslsm

import (
	"strconv"
	"strings"

	"github.com/ashureev/fslsm-tutor/internal/domain"
)

// ItemCount is the number of questionnaire items.
const ItemCount = 44

// Answers maps a form field name (q0..q43) to the selected option.
type Answers map[string]string

// FieldName returns the form field name for item i.
func FieldName(i int) string {
	return "q" + strconv.Itoa(i)
}

// DimensionForItem returns the dimension measured by item i.
func DimensionForItem(i int) domain.Dimension {
	return domain.Dimensions[i%len(domain.Dimensions)]
}

// ComputeProfile derives a score per dimension from raw answers. Missing or
// unrecognised answers contribute nothing. The result always has exactly
// the four fixed dimension keys.
func ComputeProfile(answers Answers) domain.Profile {
	profile := domain.ZeroProfile()
	for i := 0; i < ItemCount; i++ {
		switch strings.ToUpper(strings.TrimSpace(answers[FieldName(i)])) {
		case "A":
			profile[DimensionForItem(i)]++
		case "B":
			profile[DimensionForItem(i)]--
		}
	}
	return profile
}

// Answered returns how many items carry a valid answer.
func Answered(answers Answers) int {
	n := 0
	for i := 0; i < ItemCount; i++ {
		switch strings.ToUpper(strings.TrimSpace(answers[FieldName(i)])) {
		case "A", "B":
			n++
		}
	}
	return n
}

// FromForm extracts questionnaire answers from submitted form values.
func FromForm(get func(key string) string) Answers {
	answers := make(Answers, ItemCount)
	for i := 0; i < ItemCount; i++ {
		if v := get(FieldName(i)); v != "" {
			answers[FieldName(i)] = v
		}
	}
	return answers
}
