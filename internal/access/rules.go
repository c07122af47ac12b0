package access

import (
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// Requirement is the positional relationship a user must satisfy relative to
// the resource's unit.
type Requirement int

const (
	ReqNone Requirement = iota
	ReqSameUnit
	ReqSameOrSubordinate
	ReqImmediateSuperior
	ReqTitular
)

// Rule is the data-only authorization rule for one action: which roles may
// perform it, in which resource states (empty = any state), and which
// hierarchy position the actor must hold.
type Rule struct {
	Roles     []org.Role
	States    []string
	Hierarchy Requirement
}

func roles(rs ...org.Role) []org.Role { return rs }

func states(ss ...process.SubprocessStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

func processStates(ss ...process.ProcessStatus) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}

// adminGated lists the unit-operational actions that stay role-gated even
// for ADMIN: oversight does not make ADMIN an operator of someone's unit.
var adminGated = map[Action]bool{
	ActionEditarCadastro:                true,
	ActionDisponibilizarCadastro:        true,
	ActionEditarRevisaoCadastro:         true,
	ActionDisponibilizarRevisaoCadastro: true,
	ActionApresentarSugestoes:           true,
	ActionValidarMapa:                   true,
}

// subprocessWrite lists the actions that mutate a subprocess; they are all
// refused once the owning process is finalized.
var subprocessWrite = map[Action]bool{
	ActionCriarSubprocesso:              true,
	ActionEditarSubprocesso:             true,
	ActionExcluirSubprocesso:            true,
	ActionAlterarDataLimite:             true,
	ActionReabrirCadastro:               true,
	ActionReabrirRevisao:                true,
	ActionEditarCadastro:                true,
	ActionDisponibilizarCadastro:        true,
	ActionDevolverCadastro:              true,
	ActionAceitarCadastro:               true,
	ActionHomologarCadastro:             true,
	ActionEditarRevisaoCadastro:         true,
	ActionDisponibilizarRevisaoCadastro: true,
	ActionDevolverRevisaoCadastro:       true,
	ActionAceitarRevisaoCadastro:        true,
	ActionHomologarRevisaoCadastro:      true,
	ActionEditarMapa:                    true,
	ActionDisponibilizarMapa:            true,
	ActionApresentarSugestoes:           true,
	ActionValidarMapa:                   true,
	ActionDevolverMapa:                  true,
	ActionAceitarMapa:                   true,
	ActionHomologarMapa:                 true,
	ActionAjustarMapa:                   true,
	ActionRealizarAutoavaliacao:         true,
}

// subprocessRules maps each subprocess action to its rule. Built once; never
// mutated after init.
var subprocessRules = map[Action]Rule{
	// Administrative.
	ActionListarSubprocessos: {Roles: roles(org.RoleAdmin)},
	ActionVisualizarSubprocesso: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe, org.RoleServidor),
		Hierarchy: ReqSameOrSubordinate,
	},
	ActionCriarSubprocesso:   {Roles: roles(org.RoleAdmin)},
	ActionEditarSubprocesso:  {Roles: roles(org.RoleAdmin)},
	ActionExcluirSubprocesso: {Roles: roles(org.RoleAdmin)},
	ActionAlterarDataLimite:  {Roles: roles(org.RoleAdmin)},
	ActionReabrirCadastro:    {Roles: roles(org.RoleAdmin)},
	ActionReabrirRevisao:     {Roles: roles(org.RoleAdmin)},

	// Cadastro.
	ActionEditarCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States:    states(process.StatusNaoIniciado, process.StatusMapCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
	ActionDisponibilizarCadastro: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusMapCadastroEmAndamento),
		Hierarchy: ReqTitular,
	},
	ActionDevolverCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor),
		States:    states(process.StatusMapCadastroDisponibilizado),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionAceitarCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor),
		States:    states(process.StatusMapCadastroDisponibilizado),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionHomologarCadastro: {
		Roles:  roles(org.RoleAdmin),
		States: states(process.StatusMapCadastroDisponibilizado),
	},

	// Revisão de cadastro.
	ActionEditarRevisaoCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States:    states(process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
	ActionDisponibilizarRevisaoCadastro: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqTitular,
	},
	ActionDevolverRevisaoCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor),
		States:    states(process.StatusRevCadastroDisponibilizada),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionAceitarRevisaoCadastro: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor),
		States:    states(process.StatusRevCadastroDisponibilizada),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionHomologarRevisaoCadastro: {
		Roles:  roles(org.RoleAdmin),
		States: states(process.StatusRevCadastroDisponibilizada),
	},

	// Mapa.
	ActionVisualizarMapa: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe, org.RoleServidor),
		Hierarchy: ReqSameOrSubordinate,
	},
	ActionEditarMapa: {
		Roles: roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: states(
			process.StatusNaoIniciado,
			process.StatusMapCadastroEmAndamento,
			process.StatusMapCadastroHomologado,
			process.StatusMapMapaCriado,
			process.StatusMapMapaComSugestoes,
			process.StatusRevCadastroEmAndamento,
			process.StatusRevCadastroHomologada,
			process.StatusRevMapaAjustado,
			process.StatusRevMapaComSugestoes,
			process.StatusDiagAutoavaliacaoEmAndamento,
		),
		Hierarchy: ReqSameUnit,
	},
	ActionDisponibilizarMapa: {
		Roles: roles(org.RoleAdmin),
		States: states(
			process.StatusMapCadastroHomologado,
			process.StatusMapMapaCriado,
			process.StatusMapMapaComSugestoes,
			process.StatusRevCadastroHomologada,
			process.StatusRevMapaAjustado,
			process.StatusRevMapaComSugestoes,
		),
	},
	// VERIFICAR_IMPACTOS is handled by a per-role special case in the
	// evaluator; the entry here keeps the action registered to this kind.
	ActionVerificarImpactos: {
		Roles: roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: states(
			process.StatusNaoIniciado,
			process.StatusRevCadastroEmAndamento,
			process.StatusRevCadastroDisponibilizada,
			process.StatusRevCadastroHomologada,
			process.StatusRevMapaAjustado,
		),
		Hierarchy: ReqSameUnit,
	},
	ActionApresentarSugestoes: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusMapMapaDisponibilizado, process.StatusRevMapaDisponibilizado),
		Hierarchy: ReqSameUnit,
	},
	ActionValidarMapa: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusMapMapaDisponibilizado, process.StatusRevMapaDisponibilizado),
		Hierarchy: ReqSameUnit,
	},
	ActionDevolverMapa: {
		Roles: roles(org.RoleAdmin, org.RoleGestor),
		States: states(
			process.StatusMapMapaComSugestoes,
			process.StatusMapMapaValidado,
			process.StatusRevMapaComSugestoes,
			process.StatusRevMapaValidado,
		),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionAceitarMapa: {
		Roles: roles(org.RoleAdmin, org.RoleGestor),
		States: states(
			process.StatusMapMapaComSugestoes,
			process.StatusMapMapaValidado,
			process.StatusRevMapaComSugestoes,
			process.StatusRevMapaValidado,
		),
		Hierarchy: ReqImmediateSuperior,
	},
	ActionHomologarMapa: {
		Roles: roles(org.RoleAdmin),
		States: states(
			process.StatusMapMapaComSugestoes,
			process.StatusMapMapaValidado,
			process.StatusRevMapaComSugestoes,
			process.StatusRevMapaValidado,
		),
	},
	ActionAjustarMapa: {
		Roles:  roles(org.RoleAdmin),
		States: states(process.StatusRevCadastroHomologada, process.StatusRevMapaAjustado),
	},

	// Diagnóstico.
	ActionVisualizarDiagnostico: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe, org.RoleServidor),
		Hierarchy: ReqSameOrSubordinate,
	},
	ActionRealizarAutoavaliacao: {
		Roles:     roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States:    states(process.StatusDiagAutoavaliacaoEmAndamento),
		Hierarchy: ReqSameUnit,
	},
}

// processRules maps process-level actions to rules. Bulk entry points are
// authorized here before the coordinator re-checks each item.
var processRules = map[Action]Rule{
	ActionCriarProcesso:  {Roles: roles(org.RoleAdmin)},
	ActionEditarProcesso: {Roles: roles(org.RoleAdmin), States: processStates(process.ProcessCreated)},
	ActionExcluirProcesso: {
		Roles:  roles(org.RoleAdmin),
		States: processStates(process.ProcessCreated),
	},
	ActionIniciarProcesso: {
		Roles:  roles(org.RoleAdmin),
		States: processStates(process.ProcessCreated),
	},
	ActionFinalizarProcesso: {
		Roles:  roles(org.RoleAdmin),
		States: processStates(process.ProcessInProgress),
	},
	ActionVisualizarProcesso: {
		Roles: roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe, org.RoleServidor),
	},

	ActionAceitarCadastroEmBloco: {
		Roles:  roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: processStates(process.ProcessInProgress),
	},
	ActionHomologarCadastroEmBloco: {
		Roles:  roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: processStates(process.ProcessInProgress),
	},
	ActionHomologarMapaEmBloco: {
		Roles:  roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: processStates(process.ProcessInProgress),
	},
	ActionAceitarMapaEmBloco: {
		Roles:  roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: processStates(process.ProcessInProgress),
	},
	ActionDisponibilizarMapaEmBloco: {
		Roles:  roles(org.RoleAdmin, org.RoleGestor, org.RoleChefe),
		States: processStates(process.ProcessInProgress),
	},
}

// activityRules cover the cadastro editing of activities and knowledge.
// The states mirror EDITAR_CADASTRO / EDITAR_REVISAO_CADASTRO: activities
// only change while a cadastro is open in the owning unit.
var activityRules = map[Action]Rule{
	ActionCriarAtividade: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusNaoIniciado, process.StatusMapCadastroEmAndamento, process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
	ActionEditarAtividade: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusNaoIniciado, process.StatusMapCadastroEmAndamento, process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
	ActionExcluirAtividade: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusNaoIniciado, process.StatusMapCadastroEmAndamento, process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
	ActionAssociarConhecimentos: {
		Roles:     roles(org.RoleChefe),
		States:    states(process.StatusNaoIniciado, process.StatusMapCadastroEmAndamento, process.StatusRevCadastroEmAndamento),
		Hierarchy: ReqSameUnit,
	},
}

// mapRules cover actions addressed to the map artifact directly (reached
// without subprocess context); the artifact reports its subprocess's state
// and unit, so the rules mirror the subprocess ones.
var mapRules = map[Action]Rule{
	ActionVisualizarMapa: subprocessRules[ActionVisualizarMapa],
	ActionEditarMapa:     subprocessRules[ActionEditarMapa],
	ActionAjustarMapa:    subprocessRules[ActionAjustarMapa],
}
