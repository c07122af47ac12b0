package workflow

import (
	"fmt"

	"sgc.org/internal/process"
)

// InvalidTransitionError reports a status edge the process type does not
// admit. Distinct from an authorization denial: the user may act, but the
// item is not in a state the operation accepts.
type InvalidTransitionError struct {
	Subprocess string
	Type       process.ProcessType
	From       process.SubprocessStatus
	To         process.SubprocessStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("transição inválida para o subprocesso %s (%s): %s -> %s",
		e.Subprocess, e.Type, e.From, e.To)
}

// InvariantError reports a structurally broken aggregate reaching the
// engine, such as a subprocess without an owning process.
type InvariantError struct {
	Subprocess string
	Detail     string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("subprocesso %s inconsistente: %s", e.Subprocess, e.Detail)
}
