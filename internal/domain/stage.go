// Package domain contains core domain types for the tutoring experiment.
package domain

import (
	"fmt"
	"strconv"
)

// Stage is a position in the fixed experiment sequence.
type Stage string

const (
	StageNone     Stage = ""
	StageFSLSM    Stage = "fslsm"
	StageChat1    Stage = "chat1"
	StageExam1    Stage = "exam1"
	StageChat2    Stage = "chat2"
	StageExam2    Stage = "exam2"
	StageChat3    Stage = "chat3"
	StageExam3    Stage = "exam3"
	StagePostTest Stage = "post_test"
	// StageEnd is the terminal marker. It is not part of OrderedStages.
	StageEnd Stage = "end"
)

// ExamCount is the number of chat/exam rounds.
const ExamCount = 3

var orderedStages = []Stage{
	StageFSLSM,
	StageChat1, StageExam1,
	StageChat2, StageExam2,
	StageChat3, StageExam3,
	StagePostTest,
}

var stageLabels = map[Stage]string{
	StageFSLSM:    "پرسشنامه یادگیری",
	StageChat1:    "گفتگو ۱",
	StageExam1:    "آزمون ۱",
	StageChat2:    "گفتگو ۲",
	StageExam2:    "آزمون ۲",
	StageChat3:    "گفتگو ۳",
	StageExam3:    "آزمون ۳",
	StagePostTest: "پرسشنامه نهایی",
}

// OrderedStages returns the timeline stages in order, excluding StageEnd.
func OrderedStages() []Stage {
	out := make([]Stage, len(orderedStages))
	copy(out, orderedStages)
	return out
}

// ParseStage converts a raw value into a Stage.
func ParseStage(raw string) (Stage, error) {
	s := Stage(raw)
	if s == StageEnd || s.Index() >= 0 {
		return s, nil
	}
	return StageNone, fmt.Errorf("unknown stage %q", raw)
}

// Valid reports whether s is a timeline stage or the terminal marker.
func (s Stage) Valid() bool {
	return s == StageEnd || s.Index() >= 0
}

// Index returns the position of s in OrderedStages, or -1.
func (s Stage) Index() int {
	for i, st := range orderedStages {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the participant-facing title of the stage.
func (s Stage) Label() string {
	return stageLabels[s]
}

// IsChatStage reports whether s is one of chat1..chat3.
func (s Stage) IsChatStage() bool {
	return s == StageChat1 || s == StageChat2 || s == StageChat3
}

// IsExamStage reports whether s is one of exam1..exam3.
func (s Stage) IsExamStage() bool {
	return s == StageExam1 || s == StageExam2 || s == StageExam3
}

// Round returns the chat/exam round number (1..3) for chat and exam stages, 0 otherwise.
func (s Stage) Round() int {
	if !s.IsChatStage() && !s.IsExamStage() {
		return 0
	}
	n, err := strconv.Atoi(string(s[len(s)-1:]))
	if err != nil {
		return 0
	}
	return n
}

// ChatStage returns chat{n}, or StageNone when n is out of range.
func ChatStage(n int) Stage {
	if n < 1 || n > ExamCount {
		return StageNone
	}
	return Stage("chat" + strconv.Itoa(n))
}

// ExamStage returns exam{n}, or StageNone when n is out of range.
func ExamStage(n int) Stage {
	if n < 1 || n > ExamCount {
		return StageNone
	}
	return Stage("exam" + strconv.Itoa(n))
}
