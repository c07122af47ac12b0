package access

import (
	"context"
	"time"

	"sgc.org/internal/audit"
	"sgc.org/internal/obs"
	"sgc.org/internal/org"
)

// Service is the single entry point for authorization decisions. It routes
// each resource to the evaluator registered for its kind, records the outcome
// on the audit sink and exposes a hard-failing Enforce for mutating paths.
type Service struct {
	evaluators map[string]Evaluator
	sink       audit.Sink
	now        func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock overrides the time source used to resolve temporary role
// assignments. Tests pin it.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithEvaluator registers or replaces the evaluator for a resource kind.
func WithEvaluator(kind string, ev Evaluator) ServiceOption {
	return func(s *Service) { s.evaluators[kind] = ev }
}

// NewService builds a Service with the built-in rule tables for processes,
// subprocesses, maps and activities.
func NewService(sink audit.Sink, opts ...ServiceOption) *Service {
	if sink == nil {
		sink = audit.NopSink{}
	}
	s := &Service{
		evaluators: map[string]Evaluator{
			KindProcesso:    newRuleEvaluator(KindProcesso, processRules),
			KindSubprocesso: newRuleEvaluator(KindSubprocesso, subprocessRules),
			KindMapa:        newRuleEvaluator(KindMapa, mapRules),
			KindAtividade:   newRuleEvaluator(KindAtividade, activityRules),
		},
		sink: sink,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Evaluate resolves the decision for user performing action on res and
// records it on the audit sink.
func (s *Service) Evaluate(ctx context.Context, user *org.User, action Action, res Resource) Decision {
	d := s.decide(user, action, res)
	kind := res.ResourceKind()
	obs.ObserveDecision(kind, string(action), d.Allowed)
	if d.Allowed {
		s.sink.RecordGranted(ctx, userID(user), string(action), kind, res.ResourceID())
	} else {
		s.sink.RecordDenied(ctx, userID(user), string(action), kind, res.ResourceID(), d.Reason)
	}
	return d
}

// CanExecute reports whether the action would be allowed. Same semantics as
// Evaluate, kept for call sites that only branch on the boolean.
func (s *Service) CanExecute(ctx context.Context, user *org.User, action Action, res Resource) bool {
	return s.Evaluate(ctx, user, action, res).Allowed
}

// Enforce evaluates and converts a refusal into a *DeniedError.
func (s *Service) Enforce(ctx context.Context, user *org.User, action Action, res Resource) error {
	d := s.Evaluate(ctx, user, action, res)
	if d.Allowed {
		return nil
	}
	return &DeniedError{
		User:   userID(user),
		Action: action,
		Kind:   res.ResourceKind(),
		Reason: d.Reason,
	}
}

func (s *Service) decide(user *org.User, action Action, res Resource) Decision {
	if user == nil {
		return deny("Usuário não autenticado")
	}
	ev, ok := s.evaluators[res.ResourceKind()]
	if !ok {
		return deny("Tipo de recurso não reconhecido: %s", res.ResourceKind())
	}
	return ev.Evaluate(user, action, res, s.now())
}

func userID(user *org.User) string {
	if user == nil {
		return ""
	}
	return user.TituloEleitoral
}
