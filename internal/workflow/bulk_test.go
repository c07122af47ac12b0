package workflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"sgc.org/internal/access"
	"sgc.org/internal/audit"
	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

type bulkFixture struct {
	store *process.MemStore
	coord *Coordinator
	units []*org.Unit

	root, mid *org.Unit
	gestor    *org.User
	admin     *org.User
}

func newBulkFixture(t *testing.T, n int, status process.SubprocessStatus) *bulkFixture {
	t.Helper()
	f := &bulkFixture{store: process.NewMemStore()}
	f.root = &org.Unit{Code: 1, Sigla: "SEDOC", Type: org.UnitRoot, Active: true}
	f.mid = &org.Unit{Code: 2, Sigla: "COSIS", Type: org.UnitIntermediate, Superior: f.root, Active: true}
	f.gestor = &org.User{TituloEleitoral: "333", Assignments: []org.RoleAssignment{{Role: org.RoleGestor, Unit: f.mid}}}
	f.admin = &org.User{TituloEleitoral: "900", Assignments: []org.RoleAssignment{{Role: org.RoleAdmin, Unit: f.root}}}

	ctx := context.Background()
	p := &process.Process{Code: "p-1", Type: process.TypeMapeamento, Status: process.ProcessInProgress}
	if err := f.store.SaveProcess(ctx, p); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= n; i++ {
		u := &org.Unit{Code: int64(10 + i), Sigla: fmt.Sprintf("SE%02d", i), Type: org.UnitOperational, Superior: f.mid, Active: true}
		f.units = append(f.units, u)
		sp := &process.Subprocess{Code: fmt.Sprintf("sp-%d", i), Process: p, Unit: u, Status: status}
		if err := f.store.SaveSubprocess(ctx, sp); err != nil {
			t.Fatal(err)
		}
	}

	now := func() time.Time { return engineNow }
	acl := access.NewService(audit.NopSink{}, access.WithClock(now))
	engine := NewEngine(f.store, acl, WithAdminUnit(f.root), WithEngineClock(now))
	f.coord = NewCoordinator(engine, f.store, acl)
	return f
}

func codes(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("sp-%d", i+1)
	}
	return out
}

func TestAceitarEmBloco(t *testing.T) {
	f := newBulkFixture(t, 3, process.StatusMapCadastroDisponibilizado)

	res, err := f.coord.AceitarEmBloco(context.Background(), f.gestor, "p-1", codes(3))
	if err != nil {
		t.Fatalf("aceitar em bloco: %v", err)
	}
	if len(res.Done) != 3 || res.Failed != "" {
		t.Fatalf("result = %+v", res)
	}
	for _, code := range codes(3) {
		sp, _ := f.store.SubprocessByCode(context.Background(), code)
		if sp.CurrentLocation() != f.mid {
			t.Fatalf("%s location = %v", code, sp.CurrentLocation())
		}
	}
}

func TestBulkFailFastPreservesOrder(t *testing.T) {
	f := newBulkFixture(t, 5, process.StatusMapCadastroDisponibilizado)
	ctx := context.Background()

	// Item 3 is out of the admissible state.
	sp3, _ := f.store.SubprocessByCode(ctx, "sp-3")
	sp3.Status = process.StatusMapCadastroHomologado
	if err := f.store.SaveSubprocess(ctx, sp3); err != nil {
		t.Fatal(err)
	}

	res, err := f.coord.HomologarEmBloco(ctx, f.admin, "p-1", codes(5))
	if err == nil {
		t.Fatal("expected failure on sp-3")
	}
	if res.Failed != "sp-3" {
		t.Fatalf("failed = %q", res.Failed)
	}
	if len(res.Done) != 2 || res.Done[0] != "sp-1" || res.Done[1] != "sp-2" {
		t.Fatalf("done = %v", res.Done)
	}

	// Items after the failure stay untouched.
	for _, code := range []string{"sp-4", "sp-5"} {
		sp, _ := f.store.SubprocessByCode(ctx, code)
		if sp.Status != process.StatusMapCadastroDisponibilizado {
			t.Fatalf("%s status = %s", code, sp.Status)
		}
	}
}

func TestBulkGateDeniesBeforeItems(t *testing.T) {
	f := newBulkFixture(t, 2, process.StatusMapCadastroDisponibilizado)
	servidor := &org.User{TituloEleitoral: "666", Assignments: []org.RoleAssignment{{Role: org.RoleServidor, Unit: f.mid}}}

	_, err := f.coord.AceitarEmBloco(context.Background(), servidor, "p-1", codes(2))
	if err == nil {
		t.Fatal("servidor passed the bulk gate")
	}
	for _, code := range codes(2) {
		sp, _ := f.store.SubprocessByCode(context.Background(), code)
		if sp.Location != nil {
			t.Fatalf("%s moved", code)
		}
	}
}

func TestDisponibilizarMapaEmBloco(t *testing.T) {
	f := newBulkFixture(t, 2, process.StatusMapMapaCriado)
	ctx := context.Background()

	res, err := f.coord.DisponibilizarMapaEmBloco(ctx, f.admin, "p-1", codes(2))
	if err != nil {
		t.Fatalf("disponibilizar em bloco: %v", err)
	}
	if len(res.Done) != 2 {
		t.Fatalf("done = %v", res.Done)
	}
	for i, code := range codes(2) {
		sp, _ := f.store.SubprocessByCode(ctx, code)
		if sp.Status != process.StatusMapMapaDisponibilizado {
			t.Fatalf("%s status = %s", code, sp.Status)
		}
		if sp.CurrentLocation() != f.units[i] {
			t.Fatalf("%s location = %v", code, sp.CurrentLocation())
		}
	}
}
