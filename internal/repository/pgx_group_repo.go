package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/stephenafamo/bob/dialect/psql"
	"github.com/stephenafamo/bob/dialect/psql/dm"
	"github.com/stephenafamo/bob/dialect/psql/im"
	"github.com/stephenafamo/bob/dialect/psql/sm"
	"github.com/stephenafamo/bob/dialect/psql/um"
	"github.com/yakoovad/groups-service/internal/db"
)

type Group struct {
	ID     string `db:"id"`
	TeamID string `db:"team_id"`
	Name   string `db:"name"`
}

type GroupRepository interface {
	Create(ctx context.Context, group *Group) error
	Get(ctx context.Context, groupID string) (*Group, error)
	ListByTeam(ctx context.Context, teamID string) ([]*Group, error)
	UpdateName(ctx context.Context, groupID, name string) (*Group, error)
	Delete(ctx context.Context, groupID string) error
}

type pgxGroupRepository struct {
	pool *pgxpool.Pool
}

func NewPgxGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &pgxGroupRepository{pool: pool}
}

func (p *pgxGroupRepository) Create(ctx context.Context, group *Group) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("groups", "id", "team_id", "name"),
		im.Values(psql.Arg(group.ID), psql.Arg(group.TeamID), psql.Arg(group.Name)),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrAlreadyExists
	}

	return err
}

func (p *pgxGroupRepository) Get(ctx context.Context, groupID string) (*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "name"),
		sm.From("groups"),
		sm.Where(psql.Quote("id").EQ(psql.Arg(groupID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	group := &Group{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&group.ID, &group.TeamID, &group.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

// ListByTeam returns the team's groups ordered by name then id, so listings
// stay deterministic when names collide.
func (p *pgxGroupRepository) ListByTeam(ctx context.Context, teamID string) ([]*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns("id", "team_id", "name"),
		sm.From("groups"),
		sm.Where(psql.Quote("team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("name"),
		sm.OrderBy("id"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Group, error) {
		group := &Group{}
		if err = row.Scan(&group.ID, &group.TeamID, &group.Name); err != nil {
			return nil, err
		}
		return group, nil
	})
	if err != nil {
		return nil, err
	}

	return groups, nil
}

func (p *pgxGroupRepository) UpdateName(ctx context.Context, groupID, name string) (*Group, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Update(
		um.Table("groups"),
		um.SetCol("name").ToArg(name),
		um.Where(psql.Quote("id").EQ(psql.Arg(groupID))),
		um.Returning("id", "team_id", "name"),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	group := &Group{}
	if err = e.QueryRow(ctx, sql, args...).Scan(&group.ID, &group.TeamID, &group.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

func (p *pgxGroupRepository) Delete(ctx context.Context, groupID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("groups"),
		dm.Where(psql.Quote("id").EQ(psql.Arg(groupID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	tag, err := e.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
