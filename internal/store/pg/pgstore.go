package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

const (
	pgErrUniqueViolation     = "23505"
	pgErrForeignKeyViolation = "23503"

	maxHierarchyDepth = 32
)

type Store struct {
	db *sql.DB
}

var _ process.Store = (*Store)(nil)

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	// Tuned pool defaults; adjust under load tests
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing handle; used by tests.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) SaveProcess(ctx context.Context, p *process.Process) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		insert into processes(code, type, status, description, deadline, created_at)
		values ($1,$2,$3,$4,$5,$6)
		on conflict (code) do update
		set status = excluded.status,
		    description = excluded.description,
		    deadline = excluded.deadline
	`, p.Code, p.Type, p.Status, p.Description, p.Deadline, p.CreatedAt); err != nil {
		return translateErr(err)
	}
	if _, err := tx.ExecContext(ctx, `delete from process_units where process_code = $1`, p.Code); err != nil {
		return translateErr(err)
	}
	for _, code := range p.UnitCodes {
		if _, err := tx.ExecContext(ctx, `
			insert into process_units(process_code, unit_code) values ($1,$2)
		`, p.Code, code); err != nil {
			return translateErr(err)
		}
	}
	return tx.Commit()
}

func (s *Store) ProcessByCode(ctx context.Context, code string) (*process.Process, error) {
	p := &process.Process{Code: code}
	err := s.db.QueryRowContext(ctx, `
		select type, status, description, deadline, created_at
		from processes where code = $1
	`, code).Scan(&p.Type, &p.Status, &p.Description, &p.Deadline, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		select unit_code from process_units where process_code = $1 order by unit_code
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var uc int64
		if err := rows.Scan(&uc); err != nil {
			return nil, err
		}
		p.UnitCodes = append(p.UnitCodes, uc)
	}
	return p, rows.Err()
}

func (s *Store) SaveSubprocess(ctx context.Context, sp *process.Subprocess) error {
	if sp.Process == nil || sp.Unit == nil {
		return fmt.Errorf("subprocess %s: missing process or unit", sp.Code)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var locCode sql.NullInt64
	if sp.Location != nil {
		locCode = sql.NullInt64{Int64: sp.Location.Code, Valid: true}
	}
	if _, err := tx.ExecContext(ctx, `
		insert into subprocesses(code, process_code, unit_code, status,
			deadline_stage1, deadline_stage2, stage_end1, stage_end2, location_code)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		on conflict (code) do update
		set status = excluded.status,
		    deadline_stage1 = excluded.deadline_stage1,
		    deadline_stage2 = excluded.deadline_stage2,
		    stage_end1 = excluded.stage_end1,
		    stage_end2 = excluded.stage_end2,
		    location_code = excluded.location_code
	`, sp.Code, sp.Process.Code, sp.Unit.Code, sp.Status,
		sp.DeadlineStage1, sp.DeadlineStage2, sp.StageEnd1, sp.StageEnd2, locCode); err != nil {
		return translateErr(err)
	}
	if sp.Map != nil {
		if err := saveMap(ctx, tx, sp.Code, sp.Map); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func saveMap(ctx context.Context, tx *sql.Tx, subprocessCode string, m *process.MapArtifact) error {
	comps, err := json.Marshal(m.Competencies)
	if err != nil {
		return fmt.Errorf("encode competencies of map %s: %w", m.Code, err)
	}
	if _, err := tx.ExecContext(ctx, `
		insert into maps(code, subprocess_code, suggestions, competencies)
		values ($1,$2,$3,$4)
		on conflict (code) do update
		set suggestions = excluded.suggestions,
		    competencies = excluded.competencies
	`, m.Code, subprocessCode, m.Suggestions, comps); err != nil {
		return translateErr(err)
	}
	if _, err := tx.ExecContext(ctx, `delete from activities where map_code = $1`, m.Code); err != nil {
		return translateErr(err)
	}
	for _, a := range m.Activities {
		knowledge, err := json.Marshal(a.Knowledge)
		if err != nil {
			return fmt.Errorf("encode knowledge of activity %s: %w", a.Code, err)
		}
		if _, err := tx.ExecContext(ctx, `
			insert into activities(code, map_code, description, knowledge)
			values ($1,$2,$3,$4)
		`, a.Code, m.Code, a.Description, knowledge); err != nil {
			return translateErr(err)
		}
	}
	return nil
}

func (s *Store) SubprocessByCode(ctx context.Context, code string) (*process.Subprocess, error) {
	sp := &process.Subprocess{Code: code}
	var processCode string
	var unitCode int64
	var locCode sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		select process_code, unit_code, status,
		       deadline_stage1, deadline_stage2, stage_end1, stage_end2, location_code
		from subprocesses where code = $1
	`, code).Scan(&processCode, &unitCode, &sp.Status,
		&sp.DeadlineStage1, &sp.DeadlineStage2, &sp.StageEnd1, &sp.StageEnd2, &locCode)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if sp.Process, err = s.ProcessByCode(ctx, processCode); err != nil {
		return nil, fmt.Errorf("load process %s: %w", processCode, err)
	}
	if sp.Unit, err = s.loadUnit(ctx, unitCode); err != nil {
		return nil, fmt.Errorf("load unit %d: %w", unitCode, err)
	}
	if locCode.Valid && locCode.Int64 != unitCode {
		if sp.Location, err = s.loadUnit(ctx, locCode.Int64); err != nil {
			return nil, fmt.Errorf("load location %d: %w", locCode.Int64, err)
		}
	} else if locCode.Valid {
		sp.Location = sp.Unit
	}
	if sp.Map, err = s.mapBySubprocess(ctx, sp); err != nil {
		return nil, err
	}
	return sp, nil
}

func (s *Store) SubprocessesByCodes(ctx context.Context, codes []string) ([]*process.Subprocess, error) {
	out := make([]*process.Subprocess, 0, len(codes))
	for _, code := range codes {
		sp, err := s.SubprocessByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		out = append(out, sp)
	}
	return out, nil
}

func (s *Store) SubprocessByProcessAndUnit(ctx context.Context, processCode string, unitCode int64) (*process.Subprocess, error) {
	var code string
	err := s.db.QueryRowContext(ctx, `
		select code from subprocesses where process_code = $1 and unit_code = $2
	`, processCode, unitCode).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.SubprocessByCode(ctx, code)
}

func (s *Store) SubprocessesByProcess(ctx context.Context, processCode string) ([]*process.Subprocess, error) {
	rows, err := s.db.QueryContext(ctx, `
		select code from subprocesses where process_code = $1 order by code
	`, processCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return s.SubprocessesByCodes(ctx, codes)
}

func (s *Store) AppendMovement(ctx context.Context, m *process.Movement) error {
	var origin, dest sql.NullInt64
	if m.Origin != nil {
		origin = sql.NullInt64{Int64: m.Origin.Code, Valid: true}
	}
	if m.Destination != nil {
		dest = sql.NullInt64{Int64: m.Destination.Code, Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		insert into movements(id, subprocess_code, at, origin_code, destination_code, description)
		values ($1,$2,$3,$4,$5,$6)
	`, m.ID, m.SubprocessCode, m.At, origin, dest, m.Description)
	return translateErr(err)
}

func (s *Store) MovementsBySubprocess(ctx context.Context, code string) ([]*process.Movement, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, at, origin_code, destination_code, description
		from movements where subprocess_code = $1
		order by at, id
	`, code)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*process.Movement
	for rows.Next() {
		m := &process.Movement{SubprocessCode: code}
		var origin, dest sql.NullInt64
		if err := rows.Scan(&m.ID, &m.At, &origin, &dest, &m.Description); err != nil {
			return nil, err
		}
		if origin.Valid {
			if m.Origin, err = s.loadUnit(ctx, origin.Int64); err != nil {
				return nil, err
			}
		}
		if dest.Valid {
			if m.Destination, err = s.loadUnit(ctx, dest.Int64); err != nil {
				return nil, err
			}
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) LatestMapByUnit(ctx context.Context, unitCode int64) (*process.MapArtifact, error) {
	var code, suggestions string
	var comps []byte
	err := s.db.QueryRowContext(ctx, `
		select m.code, m.suggestions, m.competencies
		from maps m
		join subprocesses s on s.code = m.subprocess_code
		where s.unit_code = $1
		  and s.status in ($2, $3)
		order by s.created_at desc
		limit 1
	`, unitCode, process.StatusMapMapaHomologado, process.StatusRevMapaHomologado).
		Scan(&code, &suggestions, &comps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	m := &process.MapArtifact{Code: code, Suggestions: suggestions}
	if len(comps) > 0 {
		if err := json.Unmarshal(comps, &m.Competencies); err != nil {
			return nil, fmt.Errorf("decode competencies of map %s: %w", code, err)
		}
	}
	if err := s.loadActivities(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) mapBySubprocess(ctx context.Context, sp *process.Subprocess) (*process.MapArtifact, error) {
	var code, suggestions string
	var comps []byte
	err := s.db.QueryRowContext(ctx, `
		select code, suggestions, competencies from maps where subprocess_code = $1
	`, sp.Code).Scan(&code, &suggestions, &comps)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m := &process.MapArtifact{Code: code, Subprocess: sp, Suggestions: suggestions}
	if len(comps) > 0 {
		if err := json.Unmarshal(comps, &m.Competencies); err != nil {
			return nil, fmt.Errorf("decode competencies of map %s: %w", code, err)
		}
	}
	if err := s.loadActivities(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Store) loadActivities(ctx context.Context, m *process.MapArtifact) error {
	rows, err := s.db.QueryContext(ctx, `
		select code, description, knowledge from activities where map_code = $1 order by code
	`, m.Code)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		a := &process.Activity{Map: m}
		var knowledge []byte
		if err := rows.Scan(&a.Code, &a.Description, &knowledge); err != nil {
			return err
		}
		if len(knowledge) > 0 {
			if err := json.Unmarshal(knowledge, &a.Knowledge); err != nil {
				return fmt.Errorf("decode knowledge of activity %s: %w", a.Code, err)
			}
		}
		m.Activities = append(m.Activities, a)
	}
	return rows.Err()
}

// loadUnit materializes the unit and its superior chain up to the root.
func (s *Store) loadUnit(ctx context.Context, code int64) (*org.Unit, error) {
	var head, tail *org.Unit
	next := sql.NullInt64{Int64: code, Valid: true}
	for depth := 0; next.Valid; depth++ {
		if depth >= maxHierarchyDepth {
			return nil, fmt.Errorf("unit %d: hierarchy deeper than %d levels", code, maxHierarchyDepth)
		}
		u := &org.Unit{Code: next.Int64}
		err := s.db.QueryRowContext(ctx, `
			select sigla, name, type, superior_code, titular, active
			from units where code = $1
		`, next.Int64).Scan(&u.Sigla, &u.Name, &u.Type, &next, &u.Titular, &u.Active)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, process.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		if head == nil {
			head = u
		} else {
			tail.Superior = u
		}
		tail = u
	}
	return head, nil
}

func translateErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrUniqueViolation:
			return process.ErrConflict
		case pgErrForeignKeyViolation:
			return fmt.Errorf("%w: %s", process.ErrConflict, pgErr.ConstraintName)
		}
	}
	return err
}
