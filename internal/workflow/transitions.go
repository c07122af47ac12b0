package workflow

import "sgc.org/internal/process"

// transitions holds the admissible status edges per process type. A self
// edge marks an operation that records a movement without changing status
// (an aceite forwarding the item up the chain).
var transitions = map[process.ProcessType]map[process.SubprocessStatus][]process.SubprocessStatus{
	process.TypeMapeamento: {
		process.StatusNaoIniciado: {
			process.StatusMapCadastroEmAndamento,
		},
		process.StatusMapCadastroEmAndamento: {
			process.StatusMapCadastroDisponibilizado,
		},
		process.StatusMapCadastroDisponibilizado: {
			process.StatusMapCadastroEmAndamento,
			process.StatusMapCadastroDisponibilizado,
			process.StatusMapCadastroHomologado,
		},
		process.StatusMapCadastroHomologado: {
			process.StatusMapCadastroEmAndamento,
			process.StatusMapMapaCriado,
			process.StatusMapMapaDisponibilizado,
		},
		process.StatusMapMapaCriado: {
			process.StatusMapMapaCriado,
			process.StatusMapMapaDisponibilizado,
		},
		process.StatusMapMapaDisponibilizado: {
			process.StatusMapMapaComSugestoes,
			process.StatusMapMapaValidado,
		},
		process.StatusMapMapaComSugestoes: {
			process.StatusMapMapaComSugestoes,
			process.StatusMapMapaDisponibilizado,
			process.StatusMapMapaHomologado,
		},
		process.StatusMapMapaValidado: {
			process.StatusMapMapaValidado,
			process.StatusMapMapaDisponibilizado,
			process.StatusMapMapaHomologado,
		},
		// MAPA_HOMOLOGADO is terminal.
	},
	process.TypeRevisao: {
		process.StatusNaoIniciado: {
			process.StatusRevCadastroEmAndamento,
		},
		process.StatusRevCadastroEmAndamento: {
			process.StatusRevCadastroDisponibilizada,
		},
		process.StatusRevCadastroDisponibilizada: {
			process.StatusRevCadastroEmAndamento,
			process.StatusRevCadastroDisponibilizada,
			process.StatusRevCadastroHomologada,
			// Without impacts on the map, homologation closes the review.
			process.StatusRevMapaHomologado,
		},
		process.StatusRevCadastroHomologada: {
			process.StatusRevCadastroEmAndamento,
			process.StatusRevMapaAjustado,
		},
		process.StatusRevMapaAjustado: {
			process.StatusRevMapaAjustado,
			process.StatusRevMapaDisponibilizado,
		},
		process.StatusRevMapaDisponibilizado: {
			process.StatusRevMapaComSugestoes,
			process.StatusRevMapaValidado,
		},
		process.StatusRevMapaComSugestoes: {
			process.StatusRevMapaComSugestoes,
			process.StatusRevMapaDisponibilizado,
			process.StatusRevMapaHomologado,
		},
		process.StatusRevMapaValidado: {
			process.StatusRevMapaValidado,
			process.StatusRevMapaDisponibilizado,
			process.StatusRevMapaHomologado,
		},
		// REVISAO_MAPA_HOMOLOGADO is terminal.
	},
	process.TypeDiagnostico: {
		process.StatusNaoIniciado: {
			process.StatusDiagAutoavaliacaoEmAndamento,
		},
		process.StatusDiagAutoavaliacaoEmAndamento: {
			process.StatusDiagConcluido,
		},
		// DIAGNOSTICO_CONCLUIDO is terminal.
	},
}

// CanTransition reports whether the edge from -> to exists for pt.
func CanTransition(pt process.ProcessType, from, to process.SubprocessStatus) bool {
	for _, next := range transitions[pt][from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStatuses returns the admissible successors of from under pt, in table
// order. Terminal statuses return nil.
func NextStatuses(pt process.ProcessType, from process.SubprocessStatus) []process.SubprocessStatus {
	edges := transitions[pt][from]
	if len(edges) == 0 {
		return nil
	}
	out := make([]process.SubprocessStatus, len(edges))
	copy(out, edges)
	return out
}
