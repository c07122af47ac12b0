package pg

import (
	"context"
	"database/sql"
	"errors"

	"sgc.org/internal/org"
	"sgc.org/internal/process"
)

var _ org.Directory = (*Store)(nil)

func (s *Store) RolesOf(ctx context.Context, tituloEleitoral string) ([]org.RoleAssignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		select role, unit_code, temporary, valid_from, valid_until
		from user_roles where titulo_eleitoral = $1
		order by unit_code, role
	`, tituloEleitoral)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []org.RoleAssignment
	for rows.Next() {
		var ra org.RoleAssignment
		var unitCode int64
		if err := rows.Scan(&ra.Role, &unitCode, &ra.Temporary, &ra.ValidFrom, &ra.ValidUntil); err != nil {
			return nil, err
		}
		if ra.Unit, err = s.loadUnit(ctx, unitCode); err != nil {
			return nil, err
		}
		out = append(out, ra)
	}
	return out, rows.Err()
}

func (s *Store) Unit(ctx context.Context, code int64) (*org.Unit, error) {
	return s.loadUnit(ctx, code)
}

func (s *Store) UnitBySigla(ctx context.Context, sigla string) (*org.Unit, error) {
	var code int64
	err := s.db.QueryRowContext(ctx, `select code from units where sigla = $1`, sigla).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.loadUnit(ctx, code)
}

func (s *Store) TitularOf(ctx context.Context, unitCode int64) (string, error) {
	var titular string
	err := s.db.QueryRowContext(ctx, `select titular from units where code = $1`, unitCode).Scan(&titular)
	if errors.Is(err, sql.ErrNoRows) {
		return "", process.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return titular, nil
}

// UserOf assembles a full user with every role assignment resolved from the
// directory tables.
func (s *Store) UserOf(ctx context.Context, tituloEleitoral string) (*org.User, error) {
	var name string
	err := s.db.QueryRowContext(ctx, `
		select name from users where titulo_eleitoral = $1
	`, tituloEleitoral).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, process.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	assignments, err := s.RolesOf(ctx, tituloEleitoral)
	if err != nil {
		return nil, err
	}
	return &org.User{TituloEleitoral: tituloEleitoral, Name: name, Assignments: assignments}, nil
}
