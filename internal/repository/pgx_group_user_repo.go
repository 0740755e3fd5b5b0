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
	"github.com/yakoovad/groups-service/internal/db"
)

type GroupUser struct {
	ID      string `db:"id"`
	TeamID  string `db:"team_id"`
	GroupID string `db:"group_id"`
	UserID  string `db:"user_id"`
}

// Member is a membership row joined with its user row.
type Member struct {
	User       User
	Membership GroupUser
}

type GroupUserRepository interface {
	Add(ctx context.Context, membership *GroupUser) error
	Remove(ctx context.Context, groupID, userID string) error
	DeleteForGroup(ctx context.Context, groupID string) error
	ListMembers(ctx context.Context, groupID, teamID, nameQuery string) ([]*Member, error)
}

type pgxGroupUserRepository struct {
	pool *pgxpool.Pool
}

func NewPgxGroupUserRepository(pool *pgxpool.Pool) GroupUserRepository {
	return &pgxGroupUserRepository{pool: pool}
}

func (p *pgxGroupUserRepository) Add(ctx context.Context, membership *GroupUser) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Insert(
		im.Into("group_users", "id", "team_id", "group_id", "user_id"),
		im.Values(
			psql.Arg(membership.ID),
			psql.Arg(membership.TeamID),
			psql.Arg(membership.GroupID),
			psql.Arg(membership.UserID),
		),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // (group_id, user_id) already granted
			return ErrAlreadyExists
		case "23503": // group or user does not exist
			return ErrNotFound
		}
	}
	return err
}

func (p *pgxGroupUserRepository) Remove(ctx context.Context, groupID, userID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("group_users"),
		dm.Where(psql.Quote("group_id").EQ(psql.Arg(groupID))),
		dm.Where(psql.Quote("user_id").EQ(psql.Arg(userID))),
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

// DeleteForGroup removes every membership of a group. Deleting zero rows is
// fine here: the group may simply have no members.
func (p *pgxGroupUserRepository) DeleteForGroup(ctx context.Context, groupID string) error {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Delete(
		dm.From("group_users"),
		dm.Where(psql.Quote("group_id").EQ(psql.Arg(groupID))),
	)

	sql, args, err := q.Build(ctx)
	if err != nil {
		return err
	}

	_, err = e.Exec(ctx, sql, args...)
	return err
}

func (p *pgxGroupUserRepository) ListMembers(ctx context.Context, groupID, teamID, nameQuery string) ([]*Member, error) {
	e := db.GetPgxExecutorFromContext(ctx, p.pool)

	q := psql.Select(
		sm.Columns(
			"users.id", "users.team_id", "users.name", "users.is_admin",
			"group_users.id", "group_users.team_id", "group_users.group_id", "group_users.user_id",
		),
		sm.From("group_users"),
		sm.InnerJoin("users").On(psql.Quote("group_users", "user_id").EQ(psql.Quote("users", "id"))),
		sm.Where(psql.Quote("group_users", "group_id").EQ(psql.Arg(groupID))),
		sm.Where(psql.Quote("users", "team_id").EQ(psql.Arg(teamID))),
		sm.OrderBy("users.name"),
	)

	if nameQuery != "" {
		q.Apply(sm.Where(psql.Raw("users.name ILIKE ?", "%"+nameQuery+"%")))
	}

	sql, args, err := q.Build(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := e.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Member, error) {
		m := &Member{}
		if err = row.Scan(
			&m.User.ID,
			&m.User.TeamID,
			&m.User.Name,
			&m.User.IsAdmin,
			&m.Membership.ID,
			&m.Membership.TeamID,
			&m.Membership.GroupID,
			&m.Membership.UserID,
		); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return members, nil
}
