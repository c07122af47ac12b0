package workflow

import (
	"context"
	"fmt"
	"time"

	"sgc.org/internal/access"
	"sgc.org/internal/ids"
	"sgc.org/internal/obs"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// ImpactChecker answers whether a revised cadastro changed anything that
// affects the unit's current competency map. The review homologation uses it
// to decide between adjusting the map and closing the review outright.
type ImpactChecker interface {
	HasImpacts(ctx context.Context, sp *process.Subprocess) (bool, error)
}

// ImpactCheckerFunc adapts a function to the ImpactChecker interface.
type ImpactCheckerFunc func(ctx context.Context, sp *process.Subprocess) (bool, error)

func (f ImpactCheckerFunc) HasImpacts(ctx context.Context, sp *process.Subprocess) (bool, error) {
	return f(ctx, sp)
}

// Engine executes the named workflow operations: every operation loads the
// subprocess, enforces the access policy, validates the status edge, applies
// it and appends the corresponding movement in one pass.
type Engine struct {
	store     process.Store
	acl       *access.Service
	emitter   Emitter
	impact    ImpactChecker
	adminUnit *org.Unit
	now       func() time.Time
}

// EngineOption customizes an Engine.
type EngineOption func(*Engine)

// WithEmitter registers the sink for committed transitions.
func WithEmitter(em Emitter) EngineOption {
	return func(e *Engine) { e.emitter = em }
}

// WithImpactChecker installs the cadastro impact oracle used by review
// homologation. Without one, homologation always assumes impacts.
func WithImpactChecker(ic ImpactChecker) EngineOption {
	return func(e *Engine) { e.impact = ic }
}

// WithAdminUnit sets the administrative root unit that receives homologation
// handoffs and issues devolutions.
func WithAdminUnit(u *org.Unit) EngineOption {
	return func(e *Engine) { e.adminUnit = u }
}

// WithEngineClock overrides the engine's time source.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func NewEngine(store process.Store, acl *access.Service, opts ...EngineOption) *Engine {
	e := &Engine{
		store:   store,
		acl:     acl,
		emitter: NopEmitter{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// step is the planned outcome of one operation: the target status and the
// movement to record. NoMovement suppresses the movement for operations that
// change state in place. Mutate carries the operation's extra writes on the
// aggregate; run applies it only after the status edge is validated, so a
// rejected operation leaves the subprocess untouched.
type step struct {
	To          process.SubprocessStatus
	Origin      *org.Unit
	Destination *org.Unit
	Description string
	NoMovement  bool
	Mutate      func(sp *process.Subprocess)
}

// run is the engine primitive. Policy is enforced before anything else; the
// status edge is validated against the process type's table; only then does
// the store see the mutation. Status-preserving in-place edits skip the edge
// table, like deadline changes do.
func (e *Engine) run(ctx context.Context, user *org.User, code string, action access.Action, plan func(sp *process.Subprocess) (step, error)) (*process.Subprocess, error) {
	sp, err := e.store.SubprocessByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("carregar subprocesso %s: %w", code, err)
	}
	if sp.Process == nil {
		return nil, &InvariantError{Subprocess: code, Detail: "sem processo associado"}
	}
	if err := e.acl.Enforce(ctx, user, action, sp); err != nil {
		return nil, err
	}

	st, err := plan(sp)
	if err != nil {
		return nil, err
	}
	if !st.NoMovement && st.Destination == nil {
		return nil, &InvariantError{Subprocess: code, Detail: "sem unidade de destino na hierarquia"}
	}
	from := sp.Status
	inPlace := st.NoMovement && st.To == from
	if !inPlace && !CanTransition(sp.Process.Type, from, st.To) {
		return nil, &InvalidTransitionError{
			Subprocess: code,
			Type:       sp.Process.Type,
			From:       from,
			To:         st.To,
		}
	}

	if st.Mutate != nil {
		st.Mutate(sp)
	}
	sp.Status = st.To
	if !st.NoMovement {
		sp.Location = st.Destination
	}
	if err := e.store.SaveSubprocess(ctx, sp); err != nil {
		return nil, fmt.Errorf("gravar subprocesso %s: %w", code, err)
	}

	at := e.now()
	if !st.NoMovement {
		mv := &process.Movement{
			ID:             ids.New(),
			SubprocessCode: sp.Code,
			At:             at,
			Origin:         st.Origin,
			Destination:    st.Destination,
			Description:    st.Description,
		}
		if err := e.store.AppendMovement(ctx, mv); err != nil {
			return nil, fmt.Errorf("registrar movimentação de %s: %w", code, err)
		}
	}

	obs.ObserveTransition(string(sp.Process.Type), string(st.To))
	e.emitter.TransitionCommitted(ctx, TransitionEvent{
		SubprocessCode: sp.Code,
		ProcessCode:    sp.Process.Code,
		ProcessType:    sp.Process.Type,
		From:           from,
		To:             st.To,
		Actor:          user.TituloEleitoral,
		Origin:         st.Origin,
		Destination:    st.Destination,
		At:             at,
	})
	return sp, nil
}

// superiorOf resolves the next unit up the chain, falling back to the
// administrative unit at the top.
func (e *Engine) superiorOf(u *org.Unit) *org.Unit {
	if u != nil && u.Superior != nil {
		return u.Superior
	}
	return e.adminUnit
}

// topOfChain reports whether no unit exists above u. Unit chains are
// rebuilt object graphs on every load, so the administrative unit is
// matched by code, never by identity.
func (e *Engine) topOfChain(u *org.Unit) bool {
	if u == nil {
		return false
	}
	if u.Superior == nil {
		return true
	}
	return e.adminUnit != nil && u.Code == e.adminUnit.Code
}

// --- cadastro (mapeamento) ---

func (e *Engine) DisponibilizarCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDisponibilizarCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusMapCadastroDisponibilizado,
			Origin:      sp.Unit,
			Destination: e.superiorOf(sp.Unit),
			Description: "Disponibilização do cadastro de atividades e conhecimentos",
			Mutate: func(sp *process.Subprocess) {
				end := e.now()
				sp.StageEnd1 = &end
			},
		}, nil
	})
}

func (e *Engine) DevolverCadastro(ctx context.Context, user *org.User, code, motivo string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDevolverCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusMapCadastroEmAndamento,
			Origin:      sp.CurrentLocation(),
			Destination: sp.Unit,
			Description: devolutionDescription("Devolução do cadastro para ajustes", motivo),
			Mutate:      func(sp *process.Subprocess) { sp.StageEnd1 = nil },
		}, nil
	})
}

func (e *Engine) AceitarCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionAceitarCadastro, func(sp *process.Subprocess) (step, error) {
		loc := sp.CurrentLocation()
		return step{
			To:          sp.Status,
			Origin:      loc,
			Destination: e.superiorOf(loc),
			Description: "Aceite do cadastro de atividades",
		}, nil
	})
}

func (e *Engine) HomologarCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionHomologarCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusMapCadastroHomologado,
			Origin:      sp.CurrentLocation(),
			Destination: e.adminUnit,
			Description: "Homologação do cadastro de atividades",
		}, nil
	})
}

// --- cadastro (revisão) ---

func (e *Engine) DisponibilizarRevisaoCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDisponibilizarRevisaoCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusRevCadastroDisponibilizada,
			Origin:      sp.Unit,
			Destination: e.superiorOf(sp.Unit),
			Description: "Disponibilização da revisão do cadastro",
			Mutate: func(sp *process.Subprocess) {
				end := e.now()
				sp.StageEnd1 = &end
			},
		}, nil
	})
}

func (e *Engine) DevolverRevisaoCadastro(ctx context.Context, user *org.User, code, motivo string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDevolverRevisaoCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusRevCadastroEmAndamento,
			Origin:      sp.CurrentLocation(),
			Destination: sp.Unit,
			Description: devolutionDescription("Devolução da revisão do cadastro para ajustes", motivo),
			Mutate:      func(sp *process.Subprocess) { sp.StageEnd1 = nil },
		}, nil
	})
}

func (e *Engine) AceitarRevisaoCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionAceitarRevisaoCadastro, func(sp *process.Subprocess) (step, error) {
		loc := sp.CurrentLocation()
		return step{
			To:          sp.Status,
			Origin:      loc,
			Destination: e.superiorOf(loc),
			Description: "Aceite da revisão do cadastro",
		}, nil
	})
}

// HomologarRevisaoCadastro homologates the revised cadastro. When the
// revision produced no impacts on the current map, the review has nothing
// left to do and the subprocess closes directly as map-homologated.
func (e *Engine) HomologarRevisaoCadastro(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionHomologarRevisaoCadastro, func(sp *process.Subprocess) (step, error) {
		impacts := true
		if e.impact != nil {
			var err error
			impacts, err = e.impact.HasImpacts(ctx, sp)
			if err != nil {
				return step{}, fmt.Errorf("verificar impactos de %s: %w", sp.Code, err)
			}
		}
		if !impacts {
			return step{
				To:          process.StatusRevMapaHomologado,
				Origin:      sp.CurrentLocation(),
				Destination: e.adminUnit,
				Description: "Homologação da revisão do cadastro sem impactos no mapa vigente",
			}, nil
		}
		return step{
			To:          process.StatusRevCadastroHomologada,
			Origin:      sp.CurrentLocation(),
			Destination: e.adminUnit,
			Description: "Homologação da revisão do cadastro",
		}, nil
	})
}

// --- mapa ---

func (e *Engine) DisponibilizarMapa(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDisponibilizarMapa, func(sp *process.Subprocess) (step, error) {
		to := process.StatusMapMapaDisponibilizado
		if sp.Process.Type == process.TypeRevisao {
			to = process.StatusRevMapaDisponibilizado
		}
		return step{
			To:          to,
			Origin:      e.adminUnit,
			Destination: sp.Unit,
			Description: "Disponibilização do mapa de competências para validação",
		}, nil
	})
}

func (e *Engine) ApresentarSugestoes(ctx context.Context, user *org.User, code, sugestoes string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionApresentarSugestoes, func(sp *process.Subprocess) (step, error) {
		to := process.StatusMapMapaComSugestoes
		if sp.Process.Type == process.TypeRevisao {
			to = process.StatusRevMapaComSugestoes
		}
		return step{
			To:          to,
			Origin:      sp.Unit,
			Destination: e.superiorOf(sp.Unit),
			Description: "Apresentação de sugestões ao mapa de competências",
			Mutate: func(sp *process.Subprocess) {
				if sp.Map != nil {
					sp.Map.Suggestions = sugestoes
				}
			},
		}, nil
	})
}

func (e *Engine) ValidarMapa(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionValidarMapa, func(sp *process.Subprocess) (step, error) {
		to := process.StatusMapMapaValidado
		if sp.Process.Type == process.TypeRevisao {
			to = process.StatusRevMapaValidado
		}
		return step{
			To:          to,
			Origin:      sp.Unit,
			Destination: e.superiorOf(sp.Unit),
			Description: "Validação do mapa de competências",
			Mutate: func(sp *process.Subprocess) {
				end := e.now()
				sp.StageEnd2 = &end
			},
		}, nil
	})
}

func (e *Engine) DevolverMapa(ctx context.Context, user *org.User, code, motivo string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionDevolverMapa, func(sp *process.Subprocess) (step, error) {
		to := process.StatusMapMapaDisponibilizado
		if sp.Process.Type == process.TypeRevisao {
			to = process.StatusRevMapaDisponibilizado
		}
		return step{
			To:          to,
			Origin:      sp.CurrentLocation(),
			Destination: sp.Unit,
			Description: devolutionDescription("Devolução da validação do mapa", motivo),
			Mutate:      func(sp *process.Subprocess) { sp.StageEnd2 = nil },
		}, nil
	})
}

// AceitarMapa forwards the validated map one level up. When no unit exists
// above the next stop there is no intermediate manager left, and the accept
// homologates the map implicitly.
func (e *Engine) AceitarMapa(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionAceitarMapa, func(sp *process.Subprocess) (step, error) {
		loc := sp.CurrentLocation()
		next := e.superiorOf(loc)
		if e.topOfChain(next) {
			to := process.StatusMapMapaHomologado
			if sp.Process.Type == process.TypeRevisao {
				to = process.StatusRevMapaHomologado
			}
			return step{
				To:          to,
				Origin:      loc,
				Destination: next,
				Description: "Aceite da validação do mapa com homologação",
			}, nil
		}
		return step{
			To:          sp.Status,
			Origin:      loc,
			Destination: next,
			Description: "Aceite da validação do mapa",
		}, nil
	})
}

func (e *Engine) HomologarMapa(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionHomologarMapa, func(sp *process.Subprocess) (step, error) {
		to := process.StatusMapMapaHomologado
		if sp.Process.Type == process.TypeRevisao {
			to = process.StatusRevMapaHomologado
		}
		return step{
			To:          to,
			Origin:      sp.CurrentLocation(),
			Destination: e.adminUnit,
			Description: "Homologação do mapa de competências",
		}, nil
	})
}

// AjustarMapa registers the administrative adjustment of the map after a
// review homologation. First adjustment moves the status; further saves
// ride the self edge.
func (e *Engine) AjustarMapa(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionAjustarMapa, func(sp *process.Subprocess) (step, error) {
		return step{
			To:         process.StatusRevMapaAjustado,
			NoMovement: sp.Status == process.StatusRevMapaAjustado,
			Origin:     e.adminUnit, Destination: e.adminUnit,
			Description: "Ajuste do mapa de competências",
		}, nil
	})
}

// SaveMapEdits persists editing of the map during mapping: the first save
// after cadastro homologation creates the map and bumps the status to
// MAPA_CRIADO; later saves keep it there.
func (e *Engine) SaveMapEdits(ctx context.Context, user *org.User, code string, m *process.MapArtifact) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionEditarMapa, func(sp *process.Subprocess) (step, error) {
		st := step{
			To:         sp.Status,
			NoMovement: true,
			Mutate: func(sp *process.Subprocess) {
				if m != nil {
					m.Subprocess = sp
					sp.Map = m
				}
			},
		}
		switch sp.Status {
		case process.StatusMapCadastroHomologado, process.StatusMapMapaCriado:
			st.To = process.StatusMapMapaCriado
		}
		return st, nil
	})
}

// --- administrativo ---

func (e *Engine) ReabrirCadastro(ctx context.Context, user *org.User, code, motivo string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionReabrirCadastro, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusMapCadastroEmAndamento,
			Origin:      e.adminUnit,
			Destination: sp.Unit,
			Description: devolutionDescription("Reabertura do cadastro", motivo),
		}, nil
	})
}

func (e *Engine) ReabrirRevisao(ctx context.Context, user *org.User, code, motivo string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionReabrirRevisao, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusRevCadastroEmAndamento,
			Origin:      e.adminUnit,
			Destination: sp.Unit,
			Description: devolutionDescription("Reabertura da revisão do cadastro", motivo),
		}, nil
	})
}

// AlterarDataLimite changes a stage deadline in place. No status edge, no
// movement; only policy applies.
func (e *Engine) AlterarDataLimite(ctx context.Context, user *org.User, code string, stage int, deadline time.Time) (*process.Subprocess, error) {
	sp, err := e.store.SubprocessByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("carregar subprocesso %s: %w", code, err)
	}
	if sp.Process == nil {
		return nil, &InvariantError{Subprocess: code, Detail: "sem processo associado"}
	}
	if err := e.acl.Enforce(ctx, user, access.ActionAlterarDataLimite, sp); err != nil {
		return nil, err
	}
	switch stage {
	case 1:
		sp.DeadlineStage1 = deadline
	case 2:
		sp.DeadlineStage2 = deadline
	default:
		return nil, fmt.Errorf("etapa inválida: %d", stage)
	}
	if err := e.store.SaveSubprocess(ctx, sp); err != nil {
		return nil, fmt.Errorf("gravar subprocesso %s: %w", code, err)
	}
	return sp, nil
}

// --- diagnóstico ---

func (e *Engine) ConcluirAutoavaliacao(ctx context.Context, user *org.User, code string) (*process.Subprocess, error) {
	return e.run(ctx, user, code, access.ActionRealizarAutoavaliacao, func(sp *process.Subprocess) (step, error) {
		return step{
			To:          process.StatusDiagConcluido,
			Origin:      sp.Unit,
			Destination: e.superiorOf(sp.Unit),
			Description: "Conclusão da autoavaliação de competências",
		}, nil
	})
}

func devolutionDescription(base, motivo string) string {
	if motivo == "" {
		return base
	}
	return base + ": " + motivo
}
