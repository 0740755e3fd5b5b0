package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/yakoovad/groups-service/internal/db"
)

type User struct {
	ID      string `db:"id"`
	TeamID  string `db:"team_id"`
	Name    string `db:"name"`
	IsAdmin bool   `db:"is_admin"`
}

type UserRepository interface {
	Get(ctx context.Context, userID string) (*User, error)
}

type pgxUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgxUserRepository(pool *pgxpool.Pool) UserRepository {
	return &pgxUserRepository{pool: pool}
}

func (p *pgxUserRepository) Get(ctx context.Context, userID string) (*User, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "name", "is_admin"),
		sm.From("users"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(userID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	u := &User{}
	if err = e.QueryRow(ctx, sql, args...).Scan(
		&u.ID,
		&u.TeamID,
		&u.Name,
		&u.IsAdmin,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

