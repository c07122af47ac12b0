package access

import "fmt"

// DeniedError is returned by Enforce when a decision refuses the action.
type DeniedError struct {
	User   string
	Action Action
	Kind   string
	Reason string
}

func (e *DeniedError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("usuário '%s' sem permissão para %s em %s", e.User, e.Action, e.Kind)
}
