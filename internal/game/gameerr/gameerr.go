// Package gameerr defines the typed errors surfaced by the combat and quest engine.
//
// Callers match them with errors.As (or the Is* helpers) and map them to their own
// responses; GRPCCode classifies them with gRPC status codes.
package gameerr

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
)

// PreconditionError reports a caller error such as starting a battle with a dead combatant.
type PreconditionError struct {
	Op     string
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: precondition violated: %s", e.Op, e.Reason)
}

// Precondition constructs a *PreconditionError.
func Precondition(op, format string, args ...any) error {
	return &PreconditionError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// DuplicateActiveQuestError is returned when a hero starts a quest that is already active.
type DuplicateActiveQuestError struct {
	HeroID  int64
	QuestID string
}

func (e *DuplicateActiveQuestError) Error() string {
	return fmt.Sprintf("hero %d already has quest %q active", e.HeroID, e.QuestID)
}

// NoActiveQuestError is returned when advancing or abandoning a quest that is not active.
type NoActiveQuestError struct {
	HeroID  int64
	QuestID string
}

func (e *NoActiveQuestError) Error() string {
	return fmt.Sprintf("hero %d has no active quest %q", e.HeroID, e.QuestID)
}

// NotFoundError reports an unknown hero, monster, item or quest.
type NotFoundError struct {
	// Kind is one of "hero", "monster", "item", "quest".
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// NotFound constructs a *NotFoundError.
func NotFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// StalemateError is returned when a battle reaches the round cap with both sides alive.
type StalemateError struct {
	Rounds int
}

func (e *StalemateError) Error() string {
	return fmt.Sprintf("battle stalemate after %d rounds", e.Rounds)
}

// IsNotFound reports whether err wraps a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsPrecondition reports whether err wraps a *PreconditionError.
func IsPrecondition(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// IsDuplicateActiveQuest reports whether err wraps a *DuplicateActiveQuestError.
func IsDuplicateActiveQuest(err error) bool {
	var target *DuplicateActiveQuestError
	return errors.As(err, &target)
}

// IsNoActiveQuest reports whether err wraps a *NoActiveQuestError.
func IsNoActiveQuest(err error) bool {
	var target *NoActiveQuestError
	return errors.As(err, &target)
}

// IsStalemate reports whether err wraps a *StalemateError.
func IsStalemate(err error) bool {
	var target *StalemateError
	return errors.As(err, &target)
}

// GRPCCode maps an engine error to a gRPC status code.
//
// Postcondition: nil maps to codes.OK; unrecognised errors map to codes.Internal.
func GRPCCode(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case IsNotFound(err):
		return codes.NotFound
	case IsPrecondition(err), IsNoActiveQuest(err):
		return codes.FailedPrecondition
	case IsDuplicateActiveQuest(err):
		return codes.AlreadyExists
	case IsStalemate(err):
		return codes.Aborted
	default:
		return codes.Internal
	}
}
