package access

import (
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// Resource kind discriminators, mirrored from the process package so domain
// entities implement the interface without importing this package.
const (
	KindProcesso    = process.KindProcesso
	KindSubprocesso = process.KindSubprocesso
	KindAtividade   = process.KindAtividade
	KindMapa        = process.KindMapa
)

// Resource is any domain object subject to authorization. Implementations
// carry a kind discriminator instead of relying on type switches at the
// call sites.
type Resource interface {
	ResourceKind() string
	ResourceID() string
	CurrentState() string
	ResourceUnit() *org.Unit
	// MissingReference names a broken mandatory reference on the resource,
	// or returns "" when the referential prerequisites hold. A non-empty
	// value denies before any role or hierarchy evaluation.
	MissingReference() string
}
