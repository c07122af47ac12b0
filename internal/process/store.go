package process

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("process: not found")
	ErrConflict = errors.New("process: conflict")
)

// Store is the persistence collaborator consumed by the workflow core. It is
// assumed transactional: one enclosing transaction wraps a full use case.
// Constraint violations are surfaced as ErrConflict.
type Store interface {
	SaveProcess(ctx context.Context, p *Process) error
	ProcessByCode(ctx context.Context, code string) (*Process, error)

	SaveSubprocess(ctx context.Context, sp *Subprocess) error
	SubprocessByCode(ctx context.Context, code string) (*Subprocess, error)
	// SubprocessesByCodes preserves the input order; a missing code fails
	// the whole lookup with ErrNotFound.
	SubprocessesByCodes(ctx context.Context, codes []string) ([]*Subprocess, error)
	SubprocessByProcessAndUnit(ctx context.Context, processCode string, unitCode int64) (*Subprocess, error)
	SubprocessesByProcess(ctx context.Context, processCode string) ([]*Subprocess, error)

	// AppendMovement is insert-only; movements are immutable once written.
	AppendMovement(ctx context.Context, m *Movement) error
	// MovementsBySubprocess returns movements in chronological order.
	MovementsBySubprocess(ctx context.Context, code string) ([]*Movement, error)

	// LatestMapByUnit returns the unit's current homologated map, used when
	// review and diagnosis processes copy an existing map. ErrNotFound when
	// the unit was never mapped.
	LatestMapByUnit(ctx context.Context, unitCode int64) (*MapArtifact, error)
}
