package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/yakoovad/groups-service/internal/db"
	"github.com/yakoovad/groups-service/internal/model"
	"github.com/yakoovad/groups-service/internal/policy"
	"github.com/yakoovad/groups-service/internal/repository"
	"github.com/yakoovad/groups-service/pkg/logger"
	"go.uber.org/zap"
)

type GroupService struct {
	tx     db.Transactor
	engine *policy.Engine

	groups  repository.GroupRepository
	members repository.GroupUserRepository
	users   repository.UserRepository
}

func NewGroupService(tx db.Transactor) *GroupService {
	return &GroupService{
		tx:     tx,
		engine: policy.NewEngine(),
	}
}

// Create inserts a group owned by the actor's team. Authorization comes
// before name validation so a non-admin always observes Forbidden.
func (g *GroupService) Create(ctx context.Context, actor *model.Actor, name string) (*model.GroupInfo, *Error) {
	l := logger.FromContext(ctx)

	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	if serviceErr := g.authorize(ctx, actor, policy.ActionCreate, nil); serviceErr != nil {
		return nil, serviceErr
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewError(ErrorCodeInvalidBody, "group name must not be empty")
	}

	repoGroup := &repository.Group{
		ID:     uuid.NewString(),
		TeamID: actor.TeamID,
		Name:   name,
	}
	if err := g.groups.Create(ctx, repoGroup); err != nil {
		l.Error("failed to create group",
			zap.String("team_id", actor.TeamID),
			zap.String("group_name", name),
			zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to create group")
	}

	l.Info("group created",
		zap.String("group_id", repoGroup.ID),
		zap.String("team_id", repoGroup.TeamID))

	group := toModelGroup(repoGroup)
	return &model.GroupInfo{Group: group, Abilities: g.engine.Abilities(actor, group)}, nil
}

func (g *GroupService) Update(ctx context.Context, actor *model.Actor, groupID, name string) (*model.GroupInfo, *Error) {
	l := logger.FromContext(ctx)

	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionUpdate, group); serviceErr != nil {
		return nil, serviceErr
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewError(ErrorCodeInvalidBody, "group name must not be empty")
	}

	updated, err := g.groups.UpdateName(ctx, groupID, name)
	if errors.Is(err, repository.ErrNotFound) {
		// Deleted between the load and the update.
		return nil, NewError(ErrorCodeNotFound, "group not found")
	}
	if err != nil {
		l.Error("failed to update group", zap.String("group_id", groupID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to update group")
	}

	updatedGroup := toModelGroup(updated)
	return &model.GroupInfo{Group: updatedGroup, Abilities: g.engine.Abilities(actor, updatedGroup)}, nil
}

// Delete removes the group and its memberships in one transaction.
func (g *GroupService) Delete(ctx context.Context, actor *model.Actor, groupID string) *Error {
	l := logger.FromContext(ctx)

	if actor == nil {
		return ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionDelete, group); serviceErr != nil {
		return serviceErr
	}

	err := g.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := g.members.DeleteForGroup(txCtx, groupID); err != nil {
			l.Error("failed to remove group memberships", zap.String("group_id", groupID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to remove group memberships")
		}

		if err := g.groups.Delete(txCtx, groupID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return NewError(ErrorCodeNotFound, "group not found")
			}
			l.Error("failed to delete group", zap.String("group_id", groupID), zap.Error(err))
			return NewError(ErrorCodeUnspecified, "failed to delete group")
		}

		return nil
	})
	if err != nil {
		var res *Error
		if errors.As(err, &res) {
			return res
		}
		return NewError(ErrorCodeUnspecified, "failed to delete group")
	}

	l.Info("group deleted", zap.String("group_id", groupID), zap.String("team_id", group.TeamID))

	return nil
}

// List returns the actor's team groups with per-group abilities. Team scope
// is a query filter here: other teams' groups are never candidates.
func (g *GroupService) List(ctx context.Context, actor *model.Actor) ([]*model.GroupInfo, *Error) {
	l := logger.FromContext(ctx)

	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	repoGroups, err := g.groups.ListByTeam(ctx, actor.TeamID)
	if err != nil {
		l.Error("failed to list groups", zap.String("team_id", actor.TeamID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list groups")
	}

	infos := make([]*model.GroupInfo, 0, len(repoGroups))
	for _, repoGroup := range repoGroups {
		group := toModelGroup(repoGroup)
		infos = append(infos, &model.GroupInfo{
			Group:     group,
			Abilities: g.engine.Abilities(actor, group),
		})
	}

	return infos, nil
}

func (g *GroupService) Info(ctx context.Context, actor *model.Actor, groupID string) (*model.GroupInfo, *Error) {
	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionRead, group); serviceErr != nil {
		return nil, serviceErr
	}

	return &model.GroupInfo{Group: group, Abilities: g.engine.Abilities(actor, group)}, nil
}

// Members lists the group's memberships joined with same-team users. A
// non-empty query keeps only users whose name contains it case-insensitively.
func (g *GroupService) Members(ctx context.Context, actor *model.Actor, groupID, query string) (*model.GroupMembers, *Error) {
	l := logger.FromContext(ctx)

	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionRead, group); serviceErr != nil {
		return nil, serviceErr
	}

	repoMembers, err := g.members.ListMembers(ctx, groupID, group.TeamID, strings.TrimSpace(query))
	if err != nil {
		l.Error("failed to list group members", zap.String("group_id", groupID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to list group members")
	}

	result := &model.GroupMembers{
		Users:       make([]*model.User, 0, len(repoMembers)),
		Memberships: make([]*model.GroupUser, 0, len(repoMembers)),
	}
	for _, member := range repoMembers {
		result.Users = append(result.Users, &model.User{
			ID:      member.User.ID,
			Name:    member.User.Name,
			TeamID:  member.User.TeamID,
			IsAdmin: member.User.IsAdmin,
		})
		result.Memberships = append(result.Memberships, &model.GroupUser{
			ID:      member.Membership.ID,
			TeamID:  member.Membership.TeamID,
			GroupID: member.Membership.GroupID,
			UserID:  member.Membership.UserID,
		})
	}

	return result, nil
}

// AddMember grants a user membership in the group. The target user must
// exist and belong to the group's team; the store's unique constraint keeps
// the (group, user) pair unique.
func (g *GroupService) AddMember(ctx context.Context, actor *model.Actor, groupID, userID string) (*model.GroupUser, *Error) {
	l := logger.FromContext(ctx)

	if actor == nil {
		return nil, ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return nil, serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionUpdate, group); serviceErr != nil {
		return nil, serviceErr
	}

	user, err := g.users.Get(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeInvalidBody, "user does not exist")
	}
	if err != nil {
		l.Error("failed to get user", zap.String("user_id", userID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get user")
	}
	if user.TeamID != group.TeamID {
		return nil, NewError(ErrorCodeInvalidBody, "user belongs to a different team")
	}

	membership := &repository.GroupUser{
		ID:      uuid.NewString(),
		TeamID:  group.TeamID,
		GroupID: group.ID,
		UserID:  user.ID,
	}
	if err = g.members.Add(ctx, membership); err != nil {
		switch {
		case errors.Is(err, repository.ErrAlreadyExists):
			return nil, NewError(ErrorCodeMemberExists, "user is already a member of this group")
		case errors.Is(err, repository.ErrNotFound):
			return nil, NewError(ErrorCodeNotFound, "group not found")
		default:
			l.Error("failed to add group member",
				zap.String("group_id", groupID),
				zap.String("user_id", userID),
				zap.Error(err))
			return nil, NewError(ErrorCodeUnspecified, "failed to add group member")
		}
	}

	l.Info("group member added",
		zap.String("group_id", groupID),
		zap.String("user_id", userID))

	return &model.GroupUser{
		ID:      membership.ID,
		TeamID:  membership.TeamID,
		GroupID: membership.GroupID,
		UserID:  membership.UserID,
	}, nil
}

func (g *GroupService) RemoveMember(ctx context.Context, actor *model.Actor, groupID, userID string) *Error {
	l := logger.FromContext(ctx)

	if actor == nil {
		return ErrUnauthenticated()
	}

	group, serviceErr := g.loadGroup(ctx, groupID)
	if serviceErr != nil {
		return serviceErr
	}

	if serviceErr = g.authorize(ctx, actor, policy.ActionUpdate, group); serviceErr != nil {
		return serviceErr
	}

	if err := g.members.Remove(ctx, groupID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return NewError(ErrorCodeNotFound, "membership not found")
		}
		l.Error("failed to remove group member",
			zap.String("group_id", groupID),
			zap.String("user_id", userID),
			zap.Error(err))
		return NewError(ErrorCodeUnspecified, "failed to remove group member")
	}

	l.Info("group member removed",
		zap.String("group_id", groupID),
		zap.String("user_id", userID))

	return nil
}

func (g *GroupService) loadGroup(ctx context.Context, groupID string) (*model.Group, *Error) {
	repoGroup, err := g.groups.Get(ctx, groupID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, NewError(ErrorCodeNotFound, "group not found")
	}
	if err != nil {
		logger.FromContext(ctx).Error("failed to get group", zap.String("group_id", groupID), zap.Error(err))
		return nil, NewError(ErrorCodeUnspecified, "failed to get group")
	}
	return toModelGroup(repoGroup), nil
}

// authorize runs the policy engine and collapses any denial into a Forbidden
// service error. The internal reason stays in the log only: callers observe
// the same 403 for a role failure and a team-scope failure.
func (g *GroupService) authorize(ctx context.Context, actor *model.Actor, action policy.Action, group *model.Group) *Error {
	denial := g.engine.Authorize(actor, action, group)
	if denial == nil {
		return nil
	}

	fields := []zap.Field{
		zap.String("user_id", actor.UserID),
		zap.String("team_id", actor.TeamID),
		zap.String("action", string(denial.Action)),
		zap.String("reason", string(denial.Reason)),
	}
	if group != nil {
		fields = append(fields, zap.String("group_id", group.ID))
	}
	logger.FromContext(ctx).Warn("authorization denied", fields...)

	return NewError(ErrorCodeForbidden, "access denied")
}

func toModelGroup(group *repository.Group) *model.Group {
	return &model.Group{
		ID:     group.ID,
		Name:   group.Name,
		TeamID: group.TeamID,
	}
}

func (g *GroupService) WithGroupRepo(r repository.GroupRepository) *GroupService {
	g.groups = r
	return g
}

func (g *GroupService) WithGroupUserRepo(r repository.GroupUserRepository) *GroupService {
	g.members = r
	return g
}

func (g *GroupService) WithUserRepo(r repository.UserRepository) *GroupService {
	g.users = r
	return g
}
