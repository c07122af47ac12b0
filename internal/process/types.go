package process

import (
	"time"

	"sgc.org/internal/org"
)

// Resource kind discriminators, shared with the access package.
const (
	KindProcesso    = "PROCESSO"
	KindSubprocesso = "SUBPROCESSO"
	KindAtividade   = "ATIVIDADE"
	KindMapa        = "MAPA"
)

// Process is an organization-wide initiative spawning one subprocess per
// participating unit.
type Process struct {
	Code        string
	Type        ProcessType
	Status      ProcessStatus
	Description string
	Deadline    time.Time
	// UnitCodes is the participating-unit snapshot taken at creation.
	UnitCodes []int64
	CreatedAt time.Time
}

func (p *Process) ResourceKind() string    { return KindProcesso }
func (p *Process) ResourceID() string      { return p.Code }
func (p *Process) CurrentState() string    { return string(p.Status) }
func (p *Process) ResourceUnit() *org.Unit { return nil }
func (p *Process) MissingReference() string {
	return ""
}

// Subprocess is the per-unit work item of a process.
type Subprocess struct {
	Code    string
	Process *Process
	Unit    *org.Unit
	Status  SubprocessStatus

	DeadlineStage1 time.Time
	DeadlineStage2 time.Time
	StageEnd1      *time.Time
	StageEnd2      *time.Time

	Map *MapArtifact

	// Location caches the destination of the latest movement; movements
	// remain the authoritative source.
	Location *org.Unit
}

func (s *Subprocess) ResourceKind() string    { return KindSubprocesso }
func (s *Subprocess) ResourceID() string      { return s.Code }
func (s *Subprocess) CurrentState() string    { return string(s.Status) }
func (s *Subprocess) ResourceUnit() *org.Unit { return s.Unit }
func (s *Subprocess) MissingReference() string {
	if s.Process == nil {
		return "Subprocesso sem processo associado"
	}
	return ""
}

// CurrentLocation returns the unit currently holding the subprocess: the
// destination of its latest movement, falling back to its owning unit.
func (s *Subprocess) CurrentLocation() *org.Unit {
	if s.Location != nil {
		return s.Location
	}
	return s.Unit
}

// Competency groups activities under one described competency of a map.
type Competency struct {
	Code        string
	Description string
	// ActivityCodes references the activities the competency covers.
	ActivityCodes []string
}

// MapArtifact is the competency map built for one subprocess.
type MapArtifact struct {
	Code         string
	Subprocess   *Subprocess
	Suggestions  string
	Competencies []Competency
	Activities   []*Activity
}

func (m *MapArtifact) ResourceKind() string { return KindMapa }
func (m *MapArtifact) ResourceID() string   { return m.Code }
func (m *MapArtifact) CurrentState() string {
	if m.Subprocess == nil {
		return ""
	}
	return string(m.Subprocess.Status)
}
func (m *MapArtifact) ResourceUnit() *org.Unit {
	if m.Subprocess == nil {
		return nil
	}
	return m.Subprocess.Unit
}
func (m *MapArtifact) MissingReference() string {
	if m.Subprocess == nil {
		return "Mapa sem subprocesso associado"
	}
	return ""
}

// Clone returns a deep copy of the map detached from any subprocess, used
// when review and diagnosis processes copy a unit's current map.
func (m *MapArtifact) Clone(code string) *MapArtifact {
	out := &MapArtifact{Code: code, Suggestions: m.Suggestions}
	out.Competencies = make([]Competency, len(m.Competencies))
	copy(out.Competencies, m.Competencies)
	out.Activities = make([]*Activity, 0, len(m.Activities))
	for _, a := range m.Activities {
		dup := *a
		dup.Map = out
		out.Activities = append(out.Activities, &dup)
	}
	return out
}

// Activity is one activity of a map's cadastro, with associated knowledge.
type Activity struct {
	Code        string
	Map         *MapArtifact
	Description string
	Knowledge   []string
}

func (a *Activity) ResourceKind() string { return KindAtividade }
func (a *Activity) ResourceID() string   { return a.Code }
func (a *Activity) CurrentState() string {
	if a.Map == nil {
		return ""
	}
	return a.Map.CurrentState()
}
func (a *Activity) ResourceUnit() *org.Unit {
	if a.Map == nil {
		return nil
	}
	return a.Map.ResourceUnit()
}
func (a *Activity) MissingReference() string {
	if a.Map == nil {
		return "Atividade sem mapa associado"
	}
	return a.Map.MissingReference()
}

// Movement is an append-only record of a unit-to-unit handoff. Movements
// are never mutated or deleted; they form the audit trail of the workflow.
type Movement struct {
	ID             string
	SubprocessCode string
	At             time.Time
	Origin         *org.Unit
	Destination    *org.Unit
	Description    string
}
