package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"sgc.org/internal/access"
	"sgc.org/internal/ids"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

// ProcessService drives the process lifecycle: creation with the per-unit
// subprocess fan-out, the start that opens every unit's work, and the final
// closure once all units reached a terminal status.
type ProcessService struct {
	store     process.Store
	acl       *access.Service
	dir       org.Directory
	adminUnit *org.Unit
	now       func() time.Time
}

// ProcessServiceOption customizes a ProcessService.
type ProcessServiceOption func(*ProcessService)

func WithProcessClock(now func() time.Time) ProcessServiceOption {
	return func(s *ProcessService) { s.now = now }
}

func WithProcessAdminUnit(u *org.Unit) ProcessServiceOption {
	return func(s *ProcessService) { s.adminUnit = u }
}

func NewProcessService(store process.Store, acl *access.Service, dir org.Directory, opts ...ProcessServiceOption) *ProcessService {
	s := &ProcessService{store: store, acl: acl, dir: dir, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create builds a process over the given units and one subprocess per unit.
// Mapping accepts any mappable unit; review and diagnosis additionally
// require the unit to hold a current map, which is cloned into the new
// subprocess as the working copy.
func (s *ProcessService) Create(ctx context.Context, user *org.User, pt process.ProcessType, description string, deadline time.Time, unitCodes []int64) (*process.Process, error) {
	p := &process.Process{
		Code:        uuid.NewString(),
		Type:        pt,
		Status:      process.ProcessCreated,
		Description: description,
		Deadline:    deadline,
		UnitCodes:   unitCodes,
		CreatedAt:   s.now(),
	}
	if err := s.acl.Enforce(ctx, user, access.ActionCriarProcesso, p); err != nil {
		return nil, err
	}
	if len(unitCodes) == 0 {
		return nil, fmt.Errorf("processo sem unidades participantes")
	}

	subs := make([]*process.Subprocess, 0, len(unitCodes))
	for _, code := range unitCodes {
		unit, err := s.dir.Unit(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("resolver unidade %d: %w", code, err)
		}
		if !unit.Mappable() {
			return nil, fmt.Errorf("unidade %s (%s) não participa de processos", unit.Sigla, unit.Type)
		}
		sp := &process.Subprocess{
			Code:           ids.New(),
			Process:        p,
			Unit:           unit,
			Status:         process.StatusNaoIniciado,
			DeadlineStage1: deadline,
		}
		if pt == process.TypeRevisao || pt == process.TypeDiagnostico {
			current, err := s.store.LatestMapByUnit(ctx, code)
			if err != nil {
				return nil, fmt.Errorf("unidade %s sem mapa vigente: %w", unit.Sigla, err)
			}
			m := current.Clone(ids.New())
			m.Subprocess = sp
			sp.Map = m
		}
		subs = append(subs, sp)
	}

	if err := s.store.SaveProcess(ctx, p); err != nil {
		return nil, fmt.Errorf("gravar processo: %w", err)
	}
	for _, sp := range subs {
		if err := s.store.SaveSubprocess(ctx, sp); err != nil {
			return nil, fmt.Errorf("gravar subprocesso da unidade %s: %w", sp.Unit.Sigla, err)
		}
	}
	return p, nil
}

// Start moves a created process into execution and opens every subprocess in
// the type's working status, recording the kickoff movement toward each unit.
func (s *ProcessService) Start(ctx context.Context, user *org.User, processCode string) (*process.Process, error) {
	p, err := s.store.ProcessByCode(ctx, processCode)
	if err != nil {
		return nil, fmt.Errorf("carregar processo %s: %w", processCode, err)
	}
	if err := s.acl.Enforce(ctx, user, access.ActionIniciarProcesso, p); err != nil {
		return nil, err
	}

	subs, err := s.store.SubprocessesByProcess(ctx, p.Code)
	if err != nil {
		return nil, fmt.Errorf("carregar subprocessos de %s: %w", p.Code, err)
	}
	open := process.InProgressStatus(p.Type)
	at := s.now()
	for _, sp := range subs {
		if sp.Status != process.StatusNaoIniciado {
			continue
		}
		sp.Status = open
		sp.Location = sp.Unit
		if err := s.store.SaveSubprocess(ctx, sp); err != nil {
			return nil, fmt.Errorf("iniciar subprocesso %s: %w", sp.Code, err)
		}
		mv := &process.Movement{
			ID:             ids.New(),
			SubprocessCode: sp.Code,
			At:             at,
			Origin:         s.adminUnit,
			Destination:    sp.Unit,
			Description:    "Início do processo na unidade",
		}
		if err := s.store.AppendMovement(ctx, mv); err != nil {
			return nil, fmt.Errorf("registrar início de %s: %w", sp.Code, err)
		}
	}

	p.Status = process.ProcessInProgress
	if err := s.store.SaveProcess(ctx, p); err != nil {
		return nil, fmt.Errorf("gravar processo %s: %w", p.Code, err)
	}
	return p, nil
}

// Finalize closes a running process. Every subprocess must already have
// reached its terminal status.
func (s *ProcessService) Finalize(ctx context.Context, user *org.User, processCode string) (*process.Process, error) {
	p, err := s.store.ProcessByCode(ctx, processCode)
	if err != nil {
		return nil, fmt.Errorf("carregar processo %s: %w", processCode, err)
	}
	if err := s.acl.Enforce(ctx, user, access.ActionFinalizarProcesso, p); err != nil {
		return nil, err
	}

	subs, err := s.store.SubprocessesByProcess(ctx, p.Code)
	if err != nil {
		return nil, fmt.Errorf("carregar subprocessos de %s: %w", p.Code, err)
	}
	for _, sp := range subs {
		if !sp.Status.Terminal() {
			return nil, fmt.Errorf("subprocesso %s da unidade %s ainda em %s", sp.Code, sp.Unit.Sigla, sp.Status)
		}
	}

	p.Status = process.ProcessFinished
	if err := s.store.SaveProcess(ctx, p); err != nil {
		return nil, fmt.Errorf("gravar processo %s: %w", p.Code, err)
	}
	return p, nil
}
