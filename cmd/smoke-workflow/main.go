package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"sgc.org/internal/access"
	"sgc.org/internal/audit"
	"sgc.org/internal/obs"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
	"sgc.org/internal/workflow"
)

type memDirectory struct {
	units map[int64]*org.Unit
}

func (d *memDirectory) RolesOf(context.Context, string) ([]org.RoleAssignment, error) {
	return nil, nil
}

func (d *memDirectory) Unit(_ context.Context, code int64) (*org.Unit, error) {
	u, ok := d.units[code]
	if !ok {
		return nil, process.ErrNotFound
	}
	return u, nil
}

func (d *memDirectory) UnitBySigla(_ context.Context, sigla string) (*org.Unit, error) {
	for _, u := range d.units {
		if u.Sigla == sigla {
			return u, nil
		}
	}
	return nil, process.ErrNotFound
}

func (d *memDirectory) TitularOf(ctx context.Context, code int64) (string, error) {
	u, err := d.Unit(ctx, code)
	if err != nil {
		return "", err
	}
	return u.Titular, nil
}

func main() {
	obs.Init()

	sedoc := &org.Unit{Code: 1, Sigla: "SEDOC", Name: "Secretaria de Documentação", Type: org.UnitRoot, Active: true}
	cosis := &org.Unit{Code: 2, Sigla: "COSIS", Name: "Coordenadoria de Sistemas", Type: org.UnitIntermediate, Superior: sedoc, Active: true}
	sesel := &org.Unit{Code: 3, Sigla: "SESEL", Name: "Seção de Seleção", Type: org.UnitOperational, Superior: cosis, Titular: "111", Active: true}
	dir := &memDirectory{units: map[int64]*org.Unit{1: sedoc, 2: cosis, 3: sesel}}

	admin := &org.User{TituloEleitoral: "900", Name: "Ana", Assignments: []org.RoleAssignment{{Role: org.RoleAdmin, Unit: sedoc}}}
	gestor := &org.User{TituloEleitoral: "333", Name: "Bruno", Assignments: []org.RoleAssignment{{Role: org.RoleGestor, Unit: cosis}}}
	chefe := &org.User{TituloEleitoral: "111", Name: "Carla", Assignments: []org.RoleAssignment{{Role: org.RoleChefe, Unit: sesel}}}

	store := process.NewMemStore()
	acl := access.NewService(audit.LogSink{})
	engine := workflow.NewEngine(store, acl,
		workflow.WithAdminUnit(sedoc),
		workflow.WithEmitter(workflow.EmitterFunc(func(_ context.Context, ev workflow.TransitionEvent) {
			log.Printf("transition %s: %s -> %s", ev.SubprocessCode, ev.From, ev.To)
		})),
	)
	lifecycle := workflow.NewProcessService(store, acl, dir, workflow.WithProcessAdminUnit(sedoc))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := lifecycle.Create(ctx, admin, process.TypeMapeamento, "Mapeamento de competências", time.Now().AddDate(0, 2, 0), []int64{3})
	if err != nil {
		log.Fatalf("create process: %v", err)
	}
	if _, err := lifecycle.Start(ctx, admin, p.Code); err != nil {
		log.Fatalf("start process: %v", err)
	}

	subs, err := store.SubprocessesByProcess(ctx, p.Code)
	if err != nil {
		log.Fatalf("load subprocesses: %v", err)
	}
	sp := subs[0]

	if _, err := engine.DisponibilizarCadastro(ctx, chefe, sp.Code); err != nil {
		log.Fatalf("disponibilizar cadastro: %v", err)
	}
	if _, err := engine.AceitarCadastro(ctx, gestor, sp.Code); err != nil {
		log.Fatalf("aceitar cadastro: %v", err)
	}
	if _, err := engine.HomologarCadastro(ctx, admin, sp.Code); err != nil {
		log.Fatalf("homologar cadastro: %v", err)
	}

	m := &process.MapArtifact{
		Code: "mapa-sesel",
		Competencies: []process.Competency{
			{Code: "c-1", Description: "Gerir seleções e credenciamentos"},
		},
	}
	if _, err := engine.SaveMapEdits(ctx, chefe, sp.Code, m); err != nil {
		log.Fatalf("criar mapa: %v", err)
	}
	if _, err := engine.DisponibilizarMapa(ctx, admin, sp.Code); err != nil {
		log.Fatalf("disponibilizar mapa: %v", err)
	}
	if _, err := engine.ValidarMapa(ctx, chefe, sp.Code); err != nil {
		log.Fatalf("validar mapa: %v", err)
	}
	// COSIS reports straight to SEDOC, so the aceite homologates the map.
	if _, err := engine.AceitarMapa(ctx, gestor, sp.Code); err != nil {
		log.Fatalf("aceitar mapa: %v", err)
	}

	if _, err := lifecycle.Finalize(ctx, admin, p.Code); err != nil {
		log.Fatalf("finalizar processo: %v", err)
	}

	sp, err = store.SubprocessByCode(ctx, sp.Code)
	if err != nil {
		log.Fatalf("reload subprocess: %v", err)
	}
	if !sp.Status.Terminal() {
		log.Fatalf("subprocess not terminal: %s", sp.Status)
	}
	mvs, err := store.MovementsBySubprocess(ctx, sp.Code)
	if err != nil {
		log.Fatalf("movements: %v", err)
	}

	fmt.Printf("✅ workflow smoke passed: process=%s subprocess=%s movements=%d\n", p.Code, sp.Code, len(mvs))
}
