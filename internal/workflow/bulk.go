package workflow

import (
	"context"
	"fmt"

	"sgc.org/internal/access"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// Coordinator runs one workflow operation across many subprocesses of the
// same process. The bulk entry point is authorized once at process level;
// every item then goes through the full per-item pipeline, so a bulk run
// can never do what the item operations individually could not. Execution
// follows input order and stops at the first failure.
type Coordinator struct {
	engine *Engine
	store  process.Store
	acl    *access.Service
}

func NewCoordinator(engine *Engine, store process.Store, acl *access.Service) *Coordinator {
	return &Coordinator{engine: engine, store: store, acl: acl}
}

// BulkResult reports the items a bulk run committed before stopping.
type BulkResult struct {
	Done   []string
	Failed string
}

// AceitarEmBloco accepts each listed subprocess, picking the cadastro or map
// acceptance per item based on its current phase.
func (c *Coordinator) AceitarEmBloco(ctx context.Context, user *org.User, processCode string, codes []string) (BulkResult, error) {
	return c.forEach(ctx, user, processCode, codes, access.ActionAceitarCadastroEmBloco,
		func(ctx context.Context, sp *process.Subprocess) error {
			var err error
			switch {
			case sp.Status.MapaPhase():
				_, err = c.engine.AceitarMapa(ctx, user, sp.Code)
			case sp.Process.Type == process.TypeRevisao:
				_, err = c.engine.AceitarRevisaoCadastro(ctx, user, sp.Code)
			default:
				_, err = c.engine.AceitarCadastro(ctx, user, sp.Code)
			}
			return err
		})
}

// HomologarEmBloco homologates each listed subprocess, again choosing the
// phase-appropriate operation per item.
func (c *Coordinator) HomologarEmBloco(ctx context.Context, user *org.User, processCode string, codes []string) (BulkResult, error) {
	return c.forEach(ctx, user, processCode, codes, access.ActionHomologarCadastroEmBloco,
		func(ctx context.Context, sp *process.Subprocess) error {
			var err error
			switch {
			case sp.Status.MapaPhase():
				_, err = c.engine.HomologarMapa(ctx, user, sp.Code)
			case sp.Process.Type == process.TypeRevisao:
				_, err = c.engine.HomologarRevisaoCadastro(ctx, user, sp.Code)
			default:
				_, err = c.engine.HomologarCadastro(ctx, user, sp.Code)
			}
			return err
		})
}

// DisponibilizarMapaEmBloco releases the map of each listed subprocess for
// validation by its unit.
func (c *Coordinator) DisponibilizarMapaEmBloco(ctx context.Context, user *org.User, processCode string, codes []string) (BulkResult, error) {
	return c.forEach(ctx, user, processCode, codes, access.ActionDisponibilizarMapaEmBloco,
		func(ctx context.Context, sp *process.Subprocess) error {
			_, err := c.engine.DisponibilizarMapa(ctx, user, sp.Code)
			return err
		})
}

func (c *Coordinator) forEach(ctx context.Context, user *org.User, processCode string, codes []string, gate access.Action, op func(context.Context, *process.Subprocess) error) (BulkResult, error) {
	p, err := c.store.ProcessByCode(ctx, processCode)
	if err != nil {
		return BulkResult{}, fmt.Errorf("carregar processo %s: %w", processCode, err)
	}
	if err := c.acl.Enforce(ctx, user, gate, p); err != nil {
		return BulkResult{}, err
	}

	items, err := c.store.SubprocessesByCodes(ctx, codes)
	if err != nil {
		return BulkResult{}, fmt.Errorf("carregar subprocessos: %w", err)
	}

	var res BulkResult
	for _, sp := range items {
		if sp.Process == nil || sp.Process.Code != p.Code {
			res.Failed = sp.Code
			return res, &InvariantError{Subprocess: sp.Code, Detail: "não pertence ao processo " + processCode}
		}
		if err := op(ctx, sp); err != nil {
			res.Failed = sp.Code
			return res, fmt.Errorf("subprocesso %s: %w", sp.Code, err)
		}
		res.Done = append(res.Done, sp.Code)
	}
	return res, nil
}
