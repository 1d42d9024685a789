package experiment

import "github.com/ashureev/fslsm-tutor/internal/domain"

// Status of a stage relative to the participant's position.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCurrent   Status = "current"
	StatusFuture    Status = "future"
)

// TimelineEntry is one segment of the progress bar.
type TimelineEntry struct {
	Name   domain.Stage `json:"name"`
	Label  string       `json:"label"`
	Status Status       `json:"status"`
}

// RenderTimeline marks stages before current as completed, current as
// current and the rest as future. The terminal marker completes every
// stage; unset or unknown stages leave every stage in the future.
func RenderTimeline(current domain.Stage) []TimelineEntry {
	stages := domain.OrderedStages()

	idx := current.Index()
	if current == domain.StageEnd {
		idx = len(stages)
	}

	entries := make([]TimelineEntry, 0, len(stages))
	for i, s := range stages {
		status := StatusFuture
		switch {
		case idx < 0:
		case i < idx:
			status = StatusCompleted
		case i == idx:
			status = StatusCurrent
		}
		entries = append(entries, TimelineEntry{Name: s, Label: s.Label(), Status: status})
	}
	return entries
}
