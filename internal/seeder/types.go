package seeder

import (
	"errors"
	"fmt"
)

type Phase int

const (
	PhaseInit Phase = iota
	PhaseResolveDB
	PhaseConfirm
	PhaseResetSchema
	PhaseInsertData
	PhaseVerify
	PhaseDone
	PhaseAborted
)

var phaseNames = [...]string{
	PhaseInit:        "INIT",
	PhaseResolveDB:   "RESOLVE_DB",
	PhaseConfirm:     "CONFIRM",
	PhaseResetSchema: "RESET_SCHEMA",
	PhaseInsertData:  "INSERT_DATA",
	PhaseVerify:      "VERIFY",
	PhaseDone:        "DONE",
	PhaseAborted:     "ABORTED",
}

func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", int(p))
}

// ErrAborted is returned when the operator declines the confirmation.
var ErrAborted = errors.New("operation cancelled")

// PhaseError records the phase a run failed in.
type PhaseError struct {
	Phase Phase
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s: %v", e.Phase, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Target is the database a run writes to. When Create is set the database
// is created after confirmation. Fallback, when non-empty, is created once
// more if that first attempt fails.
type Target struct {
	Name     string
	Create   bool
	Fallback string
}

// Report summarizes a run. RunID tags every log line of the run.
type Report struct {
	RunID    string
	Target   Target
	Created  bool
	Phase    Phase
	Inserted map[string]int
	Verified map[string]int
}
