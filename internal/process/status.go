package process

import "strings"

// ProcessType distinguishes the three organization-wide initiative kinds.
type ProcessType string

const (
	TypeMapeamento  ProcessType = "MAPEAMENTO"
	TypeRevisao     ProcessType = "REVISAO"
	TypeDiagnostico ProcessType = "DIAGNOSTICO"
)

// ProcessStatus is the lifecycle status of a Process.
type ProcessStatus string

const (
	ProcessCreated    ProcessStatus = "CRIADO"
	ProcessInProgress ProcessStatus = "EM_ANDAMENTO"
	ProcessFinished   ProcessStatus = "FINALIZADO"
)

// SubprocessStatus is the workflow status of a Subprocess. The values are
// partitioned into disjoint ranges per process type, with NAO_INICIADO
// shared by all types.
type SubprocessStatus string

const (
	StatusNaoIniciado SubprocessStatus = "NAO_INICIADO"

	// Mapeamento range.
	StatusMapCadastroEmAndamento     SubprocessStatus = "MAPEAMENTO_CADASTRO_EM_ANDAMENTO"
	StatusMapCadastroDisponibilizado SubprocessStatus = "MAPEAMENTO_CADASTRO_DISPONIBILIZADO"
	StatusMapCadastroHomologado      SubprocessStatus = "MAPEAMENTO_CADASTRO_HOMOLOGADO"
	StatusMapMapaCriado              SubprocessStatus = "MAPEAMENTO_MAPA_CRIADO"
	StatusMapMapaDisponibilizado     SubprocessStatus = "MAPEAMENTO_MAPA_DISPONIBILIZADO"
	StatusMapMapaComSugestoes        SubprocessStatus = "MAPEAMENTO_MAPA_COM_SUGESTOES"
	StatusMapMapaValidado            SubprocessStatus = "MAPEAMENTO_MAPA_VALIDADO"
	StatusMapMapaHomologado          SubprocessStatus = "MAPEAMENTO_MAPA_HOMOLOGADO"

	// Revisão range.
	StatusRevCadastroEmAndamento     SubprocessStatus = "REVISAO_CADASTRO_EM_ANDAMENTO"
	StatusRevCadastroDisponibilizada SubprocessStatus = "REVISAO_CADASTRO_DISPONIBILIZADA"
	StatusRevCadastroHomologada      SubprocessStatus = "REVISAO_CADASTRO_HOMOLOGADA"
	StatusRevMapaAjustado            SubprocessStatus = "REVISAO_MAPA_AJUSTADO"
	StatusRevMapaDisponibilizado     SubprocessStatus = "REVISAO_MAPA_DISPONIBILIZADO"
	StatusRevMapaComSugestoes        SubprocessStatus = "REVISAO_MAPA_COM_SUGESTOES"
	StatusRevMapaValidado            SubprocessStatus = "REVISAO_MAPA_VALIDADO"
	StatusRevMapaHomologado          SubprocessStatus = "REVISAO_MAPA_HOMOLOGADO"

	// Diagnóstico range.
	StatusDiagAutoavaliacaoEmAndamento SubprocessStatus = "DIAGNOSTICO_AUTOAVALIACAO_EM_ANDAMENTO"
	StatusDiagConcluido                SubprocessStatus = "DIAGNOSTICO_CONCLUIDO"
)

// Terminal reports whether the status has no outgoing transitions.
func (s SubprocessStatus) Terminal() bool {
	switch s {
	case StatusMapMapaHomologado, StatusRevMapaHomologado, StatusDiagConcluido:
		return true
	}
	return false
}

// CadastroPhase reports whether the status belongs to the cadastro stage
// (stage 1). NAO_INICIADO counts as cadastro phase: the first deadline that
// applies to it is the stage-1 deadline.
func (s SubprocessStatus) CadastroPhase() bool {
	return s == StatusNaoIniciado || strings.Contains(string(s), "CADASTRO")
}

// MapaPhase reports whether the status belongs to the map stage (stage 2).
func (s SubprocessStatus) MapaPhase() bool {
	return strings.Contains(string(s), "MAPA")
}

// AllSubprocessStatuses lists every status value, in declaration order.
func AllSubprocessStatuses() []SubprocessStatus {
	return []SubprocessStatus{
		StatusNaoIniciado,
		StatusMapCadastroEmAndamento,
		StatusMapCadastroDisponibilizado,
		StatusMapCadastroHomologado,
		StatusMapMapaCriado,
		StatusMapMapaDisponibilizado,
		StatusMapMapaComSugestoes,
		StatusMapMapaValidado,
		StatusMapMapaHomologado,
		StatusRevCadastroEmAndamento,
		StatusRevCadastroDisponibilizada,
		StatusRevCadastroHomologada,
		StatusRevMapaAjustado,
		StatusRevMapaDisponibilizado,
		StatusRevMapaComSugestoes,
		StatusRevMapaValidado,
		StatusRevMapaHomologado,
		StatusDiagAutoavaliacaoEmAndamento,
		StatusDiagConcluido,
	}
}

// StatusesFor lists the statuses a subprocess of the given process type can
// assume.
func StatusesFor(pt ProcessType) []SubprocessStatus {
	switch pt {
	case TypeMapeamento:
		return []SubprocessStatus{
			StatusNaoIniciado,
			StatusMapCadastroEmAndamento,
			StatusMapCadastroDisponibilizado,
			StatusMapCadastroHomologado,
			StatusMapMapaCriado,
			StatusMapMapaDisponibilizado,
			StatusMapMapaComSugestoes,
			StatusMapMapaValidado,
			StatusMapMapaHomologado,
		}
	case TypeRevisao:
		return []SubprocessStatus{
			StatusNaoIniciado,
			StatusRevCadastroEmAndamento,
			StatusRevCadastroDisponibilizada,
			StatusRevCadastroHomologada,
			StatusRevMapaAjustado,
			StatusRevMapaDisponibilizado,
			StatusRevMapaComSugestoes,
			StatusRevMapaValidado,
			StatusRevMapaHomologado,
		}
	case TypeDiagnostico:
		return []SubprocessStatus{
			StatusNaoIniciado,
			StatusDiagAutoavaliacaoEmAndamento,
			StatusDiagConcluido,
		}
	}
	return nil
}

// InProgressStatus is the status a NAO_INICIADO subprocess assumes when its
// process starts.
func InProgressStatus(pt ProcessType) SubprocessStatus {
	switch pt {
	case TypeMapeamento:
		return StatusMapCadastroEmAndamento
	case TypeRevisao:
		return StatusRevCadastroEmAndamento
	case TypeDiagnostico:
		return StatusDiagAutoavaliacaoEmAndamento
	}
	return StatusNaoIniciado
}
