package models

import "strings"

// Progress is the worker-facing lifecycle state of a job. The shop backend is
// inconsistent about casing, so parsing is case-insensitive and the uppercase
// form is canonical everywhere past the wire boundary.
type Progress string

const (
	ProgressNew        Progress = "NEW"
	ProgressPending    Progress = "PENDING"
	ProgressProcessing Progress = "PROCESSING"
	ProgressDone       Progress = "DONE"

	// ProgressAll is a filter wildcard, never a job state.
	ProgressAll Progress = "ALL"
)

// Action is a lifecycle transition requested by the worker.
type Action string

const (
	ActionAssign   Action = "assign"
	ActionStart    Action = "start"
	ActionComplete Action = "complete"
)

// transitions is the single source of truth for the job lifecycle:
// NEW --assign--> PENDING --start--> PROCESSING --complete--> DONE.
var transitions = map[Progress]map[Action]Progress{
	ProgressNew:        {ActionAssign: ProgressPending},
	ProgressPending:    {ActionStart: ProgressProcessing},
	ProgressProcessing: {ActionComplete: ProgressDone},
}

// CanTransition reports whether action is legal from the given state.
// DONE is terminal.
func CanTransition(from Progress, action Action) bool {
	_, ok := transitions[from][action]
	return ok
}

// Next returns the state reached by applying action, if legal.
func Next(from Progress, action Action) (Progress, bool) {
	to, ok := transitions[from][action]
	return to, ok
}

// ParseProgress normalizes a wire value to its canonical uppercase form.
// Unknown values are returned uppercased so they still render.
func ParseProgress(s string) Progress {
	return Progress(strings.ToUpper(strings.TrimSpace(s)))
}

// IsValid reports whether p is one of the four lifecycle states.
func (p Progress) IsValid() bool {
	switch p {
	case ProgressNew, ProgressPending, ProgressProcessing, ProgressDone:
		return true
	}
	return false
}

// Terminal reports whether no further transitions exist from p.
func (p Progress) Terminal() bool {
	return len(transitions[p]) == 0
}

// UnmarshalJSON accepts any casing from the server.
func (p *Progress) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	*p = ParseProgress(s)
	return nil
}
