package workflow

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sgc.org/internal/access"
	"sgc.org/internal/audit"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

var engineNow = time.Date(2025, 7, 10, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store  *process.MemStore
	engine *Engine
	events []TransitionEvent

	root, mid, op *org.Unit
	chefe         *org.User
	gestor        *org.User
	admin         *org.User
}

func newFixture(t *testing.T, pt process.ProcessType, status process.SubprocessStatus) *fixture {
	t.Helper()
	f := &fixture{store: process.NewMemStore()}
	f.root = &org.Unit{Code: 1, Sigla: "SEDOC", Type: org.UnitRoot, Active: true}
	f.mid = &org.Unit{Code: 2, Sigla: "COSIS", Type: org.UnitIntermediate, Superior: f.root, Active: true}
	f.op = &org.Unit{Code: 3, Sigla: "SESEL", Type: org.UnitOperational, Superior: f.mid, Titular: "111", Active: true}

	f.chefe = &org.User{TituloEleitoral: "111", Assignments: []org.RoleAssignment{{Role: org.RoleChefe, Unit: f.op}}}
	f.gestor = &org.User{TituloEleitoral: "333", Assignments: []org.RoleAssignment{{Role: org.RoleGestor, Unit: f.mid}}}
	f.admin = &org.User{TituloEleitoral: "900", Assignments: []org.RoleAssignment{{Role: org.RoleAdmin, Unit: f.root}}}

	ctx := context.Background()
	p := &process.Process{Code: "p-1", Type: pt, Status: process.ProcessInProgress}
	if err := f.store.SaveProcess(ctx, p); err != nil {
		t.Fatal(err)
	}
	sp := &process.Subprocess{Code: "sp-1", Process: p, Unit: f.op, Status: status}
	if err := f.store.SaveSubprocess(ctx, sp); err != nil {
		t.Fatal(err)
	}

	acl := access.NewService(audit.NopSink{}, access.WithClock(func() time.Time { return engineNow }))
	f.engine = NewEngine(f.store, acl,
		WithAdminUnit(f.root),
		WithEngineClock(func() time.Time { return engineNow }),
		WithEmitter(EmitterFunc(func(_ context.Context, ev TransitionEvent) {
			f.events = append(f.events, ev)
		})),
	)
	return f
}

func TestDisponibilizarThenDevolverCadastro(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroEmAndamento)
	ctx := context.Background()

	sp, err := f.engine.DisponibilizarCadastro(ctx, f.chefe, "sp-1")
	if err != nil {
		t.Fatalf("disponibilizar: %v", err)
	}
	if sp.Status != process.StatusMapCadastroDisponibilizado {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.CurrentLocation() != f.mid {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}

	sp, err = f.engine.DevolverCadastro(ctx, f.gestor, "sp-1", "atividades incompletas")
	if err != nil {
		t.Fatalf("devolver: %v", err)
	}
	if sp.Status != process.StatusMapCadastroEmAndamento {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.CurrentLocation() != f.op {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}

	mvs, err := f.store.MovementsBySubprocess(ctx, "sp-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(mvs) != 2 {
		t.Fatalf("movements = %d, want 2", len(mvs))
	}
	if mvs[0].Origin != f.op || mvs[0].Destination != f.mid {
		t.Fatalf("first movement %s -> %s", mvs[0].Origin.Sigla, mvs[0].Destination.Sigla)
	}
	if mvs[1].Origin != f.mid || mvs[1].Destination != f.op {
		t.Fatalf("second movement %s -> %s", mvs[1].Origin.Sigla, mvs[1].Destination.Sigla)
	}
	if !strings.Contains(mvs[1].Description, "atividades incompletas") {
		t.Fatalf("devolution description = %q", mvs[1].Description)
	}
	if len(f.events) != 2 || f.events[0].To != process.StatusMapCadastroDisponibilizado {
		t.Fatalf("events = %+v", f.events)
	}
}

func TestAceitarCadastroKeepsStatusMovesUp(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroDisponibilizado)
	ctx := context.Background()

	sp, err := f.engine.AceitarCadastro(ctx, f.gestor, "sp-1")
	if err != nil {
		t.Fatalf("aceitar: %v", err)
	}
	if sp.Status != process.StatusMapCadastroDisponibilizado {
		t.Fatalf("status changed to %s", sp.Status)
	}
	if sp.CurrentLocation() != f.mid {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}
}

func TestInvalidTransitionIsNotADenial(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroEmAndamento)
	ctx := context.Background()

	// Policy refuses the admin: DISPONIBILIZAR stays an operator action
	// even for the admin profile.
	_, err := f.engine.DisponibilizarCadastro(ctx, f.admin, "sp-1")
	var denied *access.DeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected policy denial for admin, got %v", err)
	}

	// Reopening a cadastro that is already open passes policy (the rule has
	// no state gate) but the edge table refuses it.
	_, err = f.engine.ReabrirCadastro(ctx, f.admin, "sp-1", "")
	var invalid *InvalidTransitionError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if invalid.From != process.StatusMapCadastroEmAndamento || invalid.To != process.StatusMapCadastroEmAndamento {
		t.Fatalf("invalid = %+v", invalid)
	}
}

func TestAceitarMapaHomologatesAtTopOfChain(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapMapaValidado)
	ctx := context.Background()

	// First accept forwards from the unit to its superior.
	sp, err := f.engine.AceitarMapa(ctx, f.gestor, "sp-1")
	if err != nil {
		t.Fatalf("aceitar: %v", err)
	}
	if sp.Status != process.StatusMapMapaValidado {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.CurrentLocation() != f.mid {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}

	// The next stop up is the admin unit: accepting homologates.
	sp, err = f.engine.AceitarMapa(ctx, f.gestor, "sp-1")
	if err != nil {
		t.Fatalf("aceitar no topo: %v", err)
	}
	if sp.Status != process.StatusMapMapaHomologado {
		t.Fatalf("status = %s, want homologado", sp.Status)
	}
	if sp.CurrentLocation() != f.root {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}
}

func TestAceitarMapaHomologatesAcrossReloadedUnits(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapMapaValidado)
	ctx := context.Background()

	// A store load rebuilds the unit chain as fresh objects; only the codes
	// survive. The top-of-chain detection must not depend on identity.
	root := &org.Unit{Code: 1, Sigla: "SEDOC", Type: org.UnitRoot, Active: true}
	mid := &org.Unit{Code: 2, Sigla: "COSIS", Type: org.UnitIntermediate, Superior: root, Active: true}
	op := &org.Unit{Code: 3, Sigla: "SESEL", Type: org.UnitOperational, Superior: mid, Titular: "111", Active: true}

	sp, err := f.store.SubprocessByCode(ctx, "sp-1")
	if err != nil {
		t.Fatal(err)
	}
	sp.Unit = op
	sp.Location = mid
	if err := f.store.SaveSubprocess(ctx, sp); err != nil {
		t.Fatal(err)
	}

	sp, err = f.engine.AceitarMapa(ctx, f.gestor, "sp-1")
	if err != nil {
		t.Fatalf("aceitar: %v", err)
	}
	if sp.Status != process.StatusMapMapaHomologado {
		t.Fatalf("status = %s, want homologado", sp.Status)
	}
	if sp.CurrentLocation().Code != f.root.Code {
		t.Fatalf("location = %v", sp.CurrentLocation())
	}
}

func TestHomologarRevisaoSemImpactosCloses(t *testing.T) {
	f := newFixture(t, process.TypeRevisao, process.StatusRevCadastroDisponibilizada)
	WithImpactChecker(ImpactCheckerFunc(func(context.Context, *process.Subprocess) (bool, error) {
		return false, nil
	}))(f.engine)

	sp, err := f.engine.HomologarRevisaoCadastro(context.Background(), f.admin, "sp-1")
	if err != nil {
		t.Fatalf("homologar: %v", err)
	}
	if sp.Status != process.StatusRevMapaHomologado {
		t.Fatalf("status = %s, want terminal", sp.Status)
	}
	if !sp.Status.Terminal() {
		t.Fatal("status not terminal")
	}
}

func TestHomologarRevisaoComImpactos(t *testing.T) {
	f := newFixture(t, process.TypeRevisao, process.StatusRevCadastroDisponibilizada)
	WithImpactChecker(ImpactCheckerFunc(func(context.Context, *process.Subprocess) (bool, error) {
		return true, nil
	}))(f.engine)

	sp, err := f.engine.HomologarRevisaoCadastro(context.Background(), f.admin, "sp-1")
	if err != nil {
		t.Fatalf("homologar: %v", err)
	}
	if sp.Status != process.StatusRevCadastroHomologada {
		t.Fatalf("status = %s", sp.Status)
	}
}

func TestSaveMapEditsCreatesMap(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroHomologado)
	ctx := context.Background()

	m := &process.MapArtifact{Code: "m-1"}
	sp, err := f.engine.SaveMapEdits(ctx, f.chefe, "sp-1", m)
	if err != nil {
		t.Fatalf("salvar mapa: %v", err)
	}
	if sp.Status != process.StatusMapMapaCriado {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.Map != m || m.Subprocess != sp {
		t.Fatal("map not attached")
	}
	// No movement for in-place edits.
	mvs, _ := f.store.MovementsBySubprocess(ctx, "sp-1")
	if len(mvs) != 0 {
		t.Fatalf("movements = %d", len(mvs))
	}
}

func TestSaveMapEditsKeepsStatusDuringRevisao(t *testing.T) {
	f := newFixture(t, process.TypeRevisao, process.StatusRevCadastroEmAndamento)
	ctx := context.Background()

	m := &process.MapArtifact{Code: "m-1"}
	sp, err := f.engine.SaveMapEdits(ctx, f.chefe, "sp-1", m)
	if err != nil {
		t.Fatalf("salvar mapa: %v", err)
	}
	if sp.Status != process.StatusRevCadastroEmAndamento {
		t.Fatalf("status = %s", sp.Status)
	}
	if sp.Map != m {
		t.Fatal("map not attached")
	}
	mvs, _ := f.store.MovementsBySubprocess(ctx, "sp-1")
	if len(mvs) != 0 {
		t.Fatalf("movements = %d", len(mvs))
	}
}

func TestRejectedOperationLeavesAggregateUntouched(t *testing.T) {
	store := process.NewMemStore()
	unit := &org.Unit{Code: 9, Sigla: "ISOLADA", Type: org.UnitOperational, Titular: "111", Active: true}
	chefe := &org.User{TituloEleitoral: "111", Assignments: []org.RoleAssignment{{Role: org.RoleChefe, Unit: unit}}}

	ctx := context.Background()
	p := &process.Process{Code: "p-1", Type: process.TypeMapeamento, Status: process.ProcessInProgress}
	if err := store.SaveProcess(ctx, p); err != nil {
		t.Fatal(err)
	}
	sp := &process.Subprocess{Code: "sp-1", Process: p, Unit: unit, Status: process.StatusMapCadastroEmAndamento}
	if err := store.SaveSubprocess(ctx, sp); err != nil {
		t.Fatal(err)
	}

	// No admin unit: the disponibilização has nowhere to go and is rejected.
	acl := access.NewService(audit.NopSink{}, access.WithClock(func() time.Time { return engineNow }))
	eng := NewEngine(store, acl, WithEngineClock(func() time.Time { return engineNow }))

	var invErr *InvariantError
	if _, err := eng.DisponibilizarCadastro(ctx, chefe, "sp-1"); !errors.As(err, &invErr) {
		t.Fatalf("err = %v, want InvariantError", err)
	}
	got, err := store.SubprocessByCode(ctx, "sp-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.StageEnd1 != nil {
		t.Fatal("rejected operation stamped the stage end")
	}
	if got.Status != process.StatusMapCadastroEmAndamento {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestAlterarDataLimiteNoMovement(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroEmAndamento)
	ctx := context.Background()
	deadline := engineNow.AddDate(0, 1, 0)

	sp, err := f.engine.AlterarDataLimite(ctx, f.admin, "sp-1", 1, deadline)
	if err != nil {
		t.Fatalf("alterar data limite: %v", err)
	}
	if !sp.DeadlineStage1.Equal(deadline) {
		t.Fatalf("deadline = %v", sp.DeadlineStage1)
	}
	mvs, _ := f.store.MovementsBySubprocess(ctx, "sp-1")
	if len(mvs) != 0 {
		t.Fatalf("movements = %d", len(mvs))
	}
	if len(f.events) != 0 {
		t.Fatalf("events = %d", len(f.events))
	}

	if _, err := f.engine.AlterarDataLimite(ctx, f.admin, "sp-1", 3, deadline); err == nil {
		t.Fatal("stage 3 accepted")
	}
}

func TestAutoavaliacaoFlow(t *testing.T) {
	f := newFixture(t, process.TypeDiagnostico, process.StatusDiagAutoavaliacaoEmAndamento)

	sp, err := f.engine.ConcluirAutoavaliacao(context.Background(), f.chefe, "sp-1")
	if err != nil {
		t.Fatalf("concluir: %v", err)
	}
	if sp.Status != process.StatusDiagConcluido {
		t.Fatalf("status = %s", sp.Status)
	}
}

func TestRunUnknownSubprocess(t *testing.T) {
	f := newFixture(t, process.TypeMapeamento, process.StatusMapCadastroEmAndamento)
	_, err := f.engine.DisponibilizarCadastro(context.Background(), f.chefe, "nope")
	if !errors.Is(err, process.ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}
