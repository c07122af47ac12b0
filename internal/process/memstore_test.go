package process

import (
	"context"
	"errors"
	"testing"
	"time"

	"sgc.org/internal/org"
)

func seed(t *testing.T) (*MemStore, *Subprocess) {
	t.Helper()
	s := NewMemStore()
	ctx := context.Background()
	p := &Process{Code: "p-1", Type: TypeMapeamento, Status: ProcessInProgress}
	if err := s.SaveProcess(ctx, p); err != nil {
		t.Fatal(err)
	}
	sp := &Subprocess{
		Code:    "sp-1",
		Process: p,
		Unit:    &org.Unit{Code: 3, Sigla: "SESEL", Type: org.UnitOperational},
		Status:  StatusMapCadastroEmAndamento,
	}
	if err := s.SaveSubprocess(ctx, sp); err != nil {
		t.Fatal(err)
	}
	return s, sp
}

func TestSubprocessesByCodesOrderAndMissing(t *testing.T) {
	s, _ := seed(t)
	ctx := context.Background()
	p, _ := s.ProcessByCode(ctx, "p-1")
	for _, code := range []string{"sp-2", "sp-3"} {
		sp := &Subprocess{Code: code, Process: p, Unit: &org.Unit{Code: 4}, Status: StatusNaoIniciado}
		if err := s.SaveSubprocess(ctx, sp); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.SubprocessesByCodes(ctx, []string{"sp-3", "sp-1", "sp-2"})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"sp-3", "sp-1", "sp-2"}
	for i, sp := range got {
		if sp.Code != want[i] {
			t.Fatalf("position %d: %s, want %s", i, sp.Code, want[i])
		}
	}

	if _, err := s.SubprocessesByCodes(ctx, []string{"sp-1", "nope"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestMovementsChronological(t *testing.T) {
	s, sp := seed(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"mv-a", "mv-b", "mv-c"} {
		mv := &Movement{ID: id, SubprocessCode: sp.Code, At: base.Add(time.Duration(i) * time.Hour)}
		if err := s.AppendMovement(ctx, mv); err != nil {
			t.Fatal(err)
		}
	}

	mvs, err := s.MovementsBySubprocess(ctx, sp.Code)
	if err != nil {
		t.Fatal(err)
	}
	if len(mvs) != 3 {
		t.Fatalf("movements = %d", len(mvs))
	}
	for i := 1; i < len(mvs); i++ {
		if mvs[i].At.Before(mvs[i-1].At) {
			t.Fatalf("movements out of order: %v after %v", mvs[i].At, mvs[i-1].At)
		}
	}

	// Returned movements are copies; mutating them must not touch the trail.
	mvs[0].Description = "adulterado"
	again, _ := s.MovementsBySubprocess(ctx, sp.Code)
	if again[0].Description == "adulterado" {
		t.Fatal("movement trail is mutable through returned slice")
	}
}

func TestCloneDetachesFromSubprocess(t *testing.T) {
	_, sp := seed(t)
	m := &MapArtifact{
		Code:       "m-1",
		Subprocess: sp,
		Activities: []*Activity{{Code: "a-1", Description: "Triar demandas", Knowledge: []string{"SEI"}}},
		Competencies: []Competency{
			{Code: "c-1", Description: "Gerir demandas", ActivityCodes: []string{"a-1"}},
		},
	}

	clone := m.Clone("m-2")
	if clone.Subprocess != nil {
		t.Fatal("clone still attached")
	}
	if clone.Code == m.Code {
		t.Fatal("clone shares code")
	}
	clone.Activities[0].Description = "outra coisa"
	if m.Activities[0].Description != "Triar demandas" {
		t.Fatal("clone shares activity storage")
	}
	if clone.Activities[0].Map != clone {
		t.Fatal("clone activities point at the source map")
	}
}

func TestStatusPhases(t *testing.T) {
	if !StatusNaoIniciado.CadastroPhase() {
		t.Fatal("NAO_INICIADO not in cadastro phase")
	}
	if StatusMapMapaDisponibilizado.CadastroPhase() {
		t.Fatal("MAPA_DISPONIBILIZADO in cadastro phase")
	}
	if !StatusRevMapaAjustado.MapaPhase() {
		t.Fatal("REVISAO_MAPA_AJUSTADO not in mapa phase")
	}
	for _, pt := range []ProcessType{TypeMapeamento, TypeRevisao, TypeDiagnostico} {
		open := InProgressStatus(pt)
		if open.Terminal() {
			t.Fatalf("%s opening status %s is terminal", pt, open)
		}
	}
	for _, st := range []SubprocessStatus{StatusMapMapaHomologado, StatusRevMapaHomologado, StatusDiagConcluido} {
		if !st.Terminal() {
			t.Fatalf("%s not terminal", st)
		}
	}
}
