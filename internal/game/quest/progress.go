// Package quest implements kill-objective progress tracking for quest sinks.
package quest

import "strings"

// Status is a character's state on a quest.
type Status string

const (
	StatusAvailable  Status = "AVAILABLE"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// ObjectiveKill is the objective type advanced by battle wins.
const ObjectiveKill = "kill"

// Objective is what a quest asks for.
type Objective struct {
	Type   string `json:"type" yaml:"type"`
	Target string `json:"target" yaml:"target"`
	Count  int    `json:"count" yaml:"count"`
}

// KillProgress is the tally for one kill objective.
type KillProgress struct {
	Count     int  `json:"count"`
	Completed bool `json:"completed"`
}

// Progress maps a progress key to its tally.
type Progress map[string]KillProgress

// Assignment is one quest taken by one character.
type Assignment struct {
	QuestID     string    `json:"questId"`
	CharacterID string    `json:"characterId"`
	Status      Status    `json:"status"`
	Objective   Objective `json:"objective"`
	Progress    Progress  `json:"progress"`
}

// ProgressKey is the progress map key for a kill target.
func ProgressKey(target string) string {
	return "kill_" + target
}

// Matches reports whether a kill of target advances a.
func (a Assignment) Matches(target string) bool {
	return a.Status == StatusInProgress &&
		a.Objective.Type == ObjectiveKill &&
		strings.EqualFold(a.Objective.Target, target)
}

// ApplyKill records count kills of target on a.
//
// Postcondition: When a matches, the returned assignment's tally under
// ProgressKey(a.Objective.Target) grows by count and is marked completed once
// it reaches the objective count; ok reports whether a matched. a is not modified.
func ApplyKill(a Assignment, target string, count int) (Assignment, bool) {
	if !a.Matches(target) || count <= 0 {
		return a, false
	}
	key := ProgressKey(a.Objective.Target)
	next := a
	next.Progress = make(Progress, len(a.Progress)+1)
	for k, v := range a.Progress {
		next.Progress[k] = v
	}
	n := a.Progress[key].Count + count
	next.Progress[key] = KillProgress{Count: n, Completed: n >= a.Objective.Count}
	return next, true
}

// Done reports whether every kill objective tally on a is complete.
func (a Assignment) Done() bool {
	p, ok := a.Progress[ProgressKey(a.Objective.Target)]
	return ok && p.Completed
}
