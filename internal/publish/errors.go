package publish

import (
	"errors"
	"fmt"
)

// Stage is a step of one publish attempt. Stages run in declaration order;
// StageFailed is absorbing.
type Stage int

const (
	StageIdle Stage = iota
	StageResolveInputs
	StageAggregate
	StageCompact
	StageWriteArtifact
	StageMirror
	StageUpdateLedger
	StageCleanupOld
	StageDone
	StageFailed
)

var stageNames = [...]string{
	StageIdle:          "idle",
	StageResolveInputs: "resolve_inputs",
	StageAggregate:     "aggregate",
	StageCompact:       "compact",
	StageWriteArtifact: "write_artifact",
	StageMirror:        "mirror",
	StageUpdateLedger:  "update_ledger",
	StageCleanupOld:    "cleanup_old",
	StageDone:          "done",
	StageFailed:        "failed",
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Failure kinds. Match them with errors.Is.
var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoInput        = errors.New("no input files")
	ErrEmptyResult    = errors.New("compaction produced no output")
	ErrWrite          = errors.New("artifact write failed")
	ErrMirror         = errors.New("artifact mirror failed")
	ErrLedgerWrite    = errors.New("ledger update failed")
	ErrCleanup        = errors.New("previous artifact cleanup failed")
)

// Error is returned for every failed publish. Kind is one of the Err*
// sentinels; Err is the underlying cause, if any.
type Error struct {
	Bundle string
	Stage  Stage
	Kind   error
	Err    error
}

func (e *Error) Error() string {
	msg := e.Bundle + ": " + e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
