package access

import (
	"fmt"
	"strings"
	"time"

	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// Decision is the outcome of one policy evaluation. Reason is set only when
// the decision denies.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...any) Decision {
	return Decision{Reason: fmt.Sprintf(format, args...)}
}

// Evaluator decides whether a user may perform an action on a resource.
// Implementations are stateless and safe for concurrent use.
type Evaluator interface {
	Evaluate(user *org.User, action Action, res Resource, now time.Time) Decision
}

// ruleEvaluator resolves decisions against a static rule table. One instance
// per resource kind.
type ruleEvaluator struct {
	kind  string
	rules map[Action]Rule
}

func newRuleEvaluator(kind string, rules map[Action]Rule) *ruleEvaluator {
	return &ruleEvaluator{kind: kind, rules: rules}
}

func (e *ruleEvaluator) Evaluate(user *org.User, action Action, res Resource, now time.Time) Decision {
	if msg := res.MissingReference(); msg != "" {
		return deny("%s", msg)
	}
	if d, handled := e.preCheck(action, res); handled {
		return d
	}
	if e.kind == KindSubprocesso && action == ActionVerificarImpactos {
		return evaluateVerificarImpactos(user, res, now)
	}

	rule, ok := e.rules[action]
	if !ok {
		return deny("Ação não reconhecida: %s", action)
	}
	if len(rule.States) > 0 && !contains(rule.States, res.CurrentState()) {
		return deny("Ação %s não permitida na situação %s", action, res.CurrentState())
	}
	if user.HasRole(now, org.RoleAdmin) && !adminGated[action] {
		return allow()
	}
	if !user.HasRole(now, rule.Roles...) {
		return deny("Usuário '%s' não possui um dos perfis necessários: %s",
			user.TituloEleitoral, joinRoles(rule.Roles))
	}
	return checkHierarchy(user, rule, res, now)
}

// preCheck refuses writes against a subprocess whose owning process already
// finished, regardless of role.
func (e *ruleEvaluator) preCheck(action Action, res Resource) (Decision, bool) {
	if !subprocessWrite[action] {
		return Decision{}, false
	}
	sp, ok := res.(*process.Subprocess)
	if !ok || sp.Process == nil {
		return Decision{}, false
	}
	if sp.Process.Status == process.ProcessFinished {
		return deny("Processo %s já finalizado; ação %s não permitida", sp.Process.Code, action), true
	}
	return Decision{}, false
}

// evaluateVerificarImpactos applies per-role state windows: the unit chief
// checks impacts while filling the revised cadastro, the manager after it is
// made available, and the admin through homologation and map adjustment.
func evaluateVerificarImpactos(user *org.User, res Resource, now time.Time) Decision {
	state := process.SubprocessStatus(res.CurrentState())
	unit := res.ResourceUnit()

	if user.HasRole(now, org.RoleAdmin) {
		switch state {
		case process.StatusRevCadastroDisponibilizada,
			process.StatusRevCadastroHomologada,
			process.StatusRevMapaAjustado:
			return allow()
		}
	}
	if user.HasRole(now, org.RoleGestor) && state == process.StatusRevCadastroDisponibilizada {
		return allow()
	}
	if user.HasRole(now, org.RoleChefe) &&
		(state == process.StatusNaoIniciado || state == process.StatusRevCadastroEmAndamento) &&
		unit != nil && sameUnitAs(user, unit, now, org.RoleChefe) {
		return allow()
	}

	if !user.HasRole(now, org.RoleAdmin, org.RoleGestor, org.RoleChefe) {
		return deny("Usuário '%s' não possui um dos perfis necessários: %s",
			user.TituloEleitoral, joinRoles([]org.Role{org.RoleAdmin, org.RoleGestor, org.RoleChefe}))
	}
	return deny("Ação %s não permitida na situação %s", ActionVerificarImpactos, state)
}

func checkHierarchy(user *org.User, rule Rule, res Resource, now time.Time) Decision {
	if rule.Hierarchy == ReqNone {
		return allow()
	}
	unit := res.ResourceUnit()
	if unit == nil {
		return deny("Recurso sem unidade associada; ação exige vínculo hierárquico")
	}

	switch rule.Hierarchy {
	case ReqSameUnit:
		if sameUnitAs(user, unit, now, rule.Roles...) {
			return allow()
		}
		return deny("Usuário '%s' não está lotado na unidade '%s'", user.TituloEleitoral, unit.Sigla)
	case ReqSameOrSubordinate:
		for _, u := range user.UnitsWithRole(now, rule.Roles...) {
			if org.IsSameOrSubordinate(unit, u) {
				return allow()
			}
		}
		return deny("Usuário '%s' não tem acesso à unidade '%s' ou às suas subordinadas",
			user.TituloEleitoral, unit.Sigla)
	case ReqImmediateSuperior:
		for _, u := range user.UnitsWithRole(now, rule.Roles...) {
			if org.IsImmediateSuperior(unit, u) {
				return allow()
			}
		}
		return deny("Usuário '%s' não está lotado na unidade imediatamente superior a '%s'",
			user.TituloEleitoral, unit.Sigla)
	case ReqTitular:
		if user.TituloEleitoral == unit.Titular && sameUnitAs(user, unit, now, rule.Roles...) {
			return allow()
		}
		return deny("Usuário '%s' não é o titular da unidade '%s'. Titular: %s",
			user.TituloEleitoral, unit.Sigla, unit.Titular)
	}
	return deny("Requisito hierárquico desconhecido")
}

// sameUnitAs reports whether one of the user's assignments with an allowed
// role is lodged exactly at unit.
func sameUnitAs(user *org.User, unit *org.Unit, now time.Time, allowed ...org.Role) bool {
	for _, u := range user.UnitsWithRole(now, allowed...) {
		if u != nil && u.Code == unit.Code {
			return true
		}
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func joinRoles(rs []org.Role) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}
