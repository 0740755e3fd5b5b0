package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/yakoovad/groups-service/internal/model"
	"github.com/yakoovad/groups-service/internal/service"
	"github.com/yakoovad/groups-service/pkg/logger"
	"go.uber.org/zap"
)

type Handler struct {
	groups *service.GroupService

	healthChecker HealthChecker
	rateLimiter   echo.MiddlewareFunc

	logger *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

func (h *Handler) WithGroupService(groups *service.GroupService) *Handler {
	h.groups = groups
	return h
}

func (h *Handler) WithHealthChecker(c HealthChecker) *Handler {
	h.healthChecker = c
	return h
}

func (h *Handler) WithRateLimiter(mw echo.MiddlewareFunc) *Handler {
	h.rateLimiter = mw
	return h
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.Validator = NewValidator()
	e.Use(middleware.RequestID())
	e.Use(ZapLoggerMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if h.healthChecker != nil {
		e.GET("/health", h.healthChecker.HealthCheck())
	}

	// Admin-only operations are not route-gated: the policy engine is the
	// single place role and team-scope rules are applied.
	secured := e.Group("", AuthMiddleware())
	if h.rateLimiter != nil {
		secured.Use(h.rateLimiter)
	}

	secured.POST("/groups", h.CreateGroup)
	secured.GET("/groups", h.ListGroups)
	secured.GET("/groups/info", h.GetGroupInfo)
	secured.POST("/groups/update", h.UpdateGroup)
	secured.POST("/groups/delete", h.DeleteGroup)
	secured.GET("/groups/members", h.GetGroupMembers)
	secured.POST("/groups/members/add", h.AddGroupMember)
	secured.POST("/groups/members/remove", h.RemoveGroupMember)
}

func (h *Handler) CreateGroup(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	// Name is deliberately not bind-required: the service validates it
	// after authorization so a non-admin observes Forbidden, not a
	// validation failure.
	var req struct {
		Name string `json:"group_name"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("creating group", zap.String("group_name", req.Name))

	info, err := h.groups.Create(e.Request().Context(), ActorFromContext(e), req.Name)
	if err != nil {
		l.Error("failed to create group", zap.String("group_name", req.Name), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, info)
}

func (h *Handler) ListGroups(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	infos, err := h.groups.List(e.Request().Context(), ActorFromContext(e))
	if err != nil {
		l.Error("failed to list groups", zap.Any("error", err))
		return h.transportError(e, err)
	}

	response := struct {
		Groups []*model.GroupInfo `json:"groups"`
	}{Groups: infos}

	return e.JSON(http.StatusOK, response)
}

func (h *Handler) GetGroupInfo(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	groupID := e.QueryParam("group_id")

	l.Info("getting group info", zap.String("group_id", groupID))

	info, err := h.groups.Info(e.Request().Context(), ActorFromContext(e), groupID)
	if err != nil {
		l.Error("failed to get group info", zap.String("group_id", groupID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, info)
}

func (h *Handler) UpdateGroup(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		ID   string `json:"group_id" validate:"required"`
		Name string `json:"group_name"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("updating group",
		zap.String("group_id", req.ID),
		zap.String("group_name", req.Name))

	info, err := h.groups.Update(e.Request().Context(), ActorFromContext(e), req.ID, req.Name)
	if err != nil {
		l.Error("failed to update group", zap.String("group_id", req.ID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, info)
}

func (h *Handler) DeleteGroup(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		ID string `json:"group_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("deleting group", zap.String("group_id", req.ID))

	if err := h.groups.Delete(e.Request().Context(), ActorFromContext(e), req.ID); err != nil {
		l.Error("failed to delete group", zap.String("group_id", req.ID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, successResponse{Success: true})
}

func (h *Handler) GetGroupMembers(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	groupID := e.QueryParam("group_id")
	query := e.QueryParam("query")

	l.Info("getting group members",
		zap.String("group_id", groupID),
		zap.String("query", query))

	members, err := h.groups.Members(e.Request().Context(), ActorFromContext(e), groupID, query)
	if err != nil {
		l.Error("failed to get group members", zap.String("group_id", groupID), zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, members)
}

func (h *Handler) AddGroupMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		GroupID string `json:"group_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("adding group member",
		zap.String("group_id", req.GroupID),
		zap.String("user_id", req.UserID))

	membership, err := h.groups.AddMember(e.Request().Context(), ActorFromContext(e), req.GroupID, req.UserID)
	if err != nil {
		l.Error("failed to add group member",
			zap.String("group_id", req.GroupID),
			zap.String("user_id", req.UserID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusCreated, membership)
}

func (h *Handler) RemoveGroupMember(e echo.Context) error {
	l := logger.FromContext(e.Request().Context())

	var req struct {
		GroupID string `json:"group_id" validate:"required"`
		UserID  string `json:"user_id" validate:"required"`
	}

	if err := h.decodeRequest(e, &req); err != nil {
		l.Error("invalid request", zap.Any("error", err))
		return h.transportError(e, err)
	}

	l.Info("removing group member",
		zap.String("group_id", req.GroupID),
		zap.String("user_id", req.UserID))

	if err := h.groups.RemoveMember(e.Request().Context(), ActorFromContext(e), req.GroupID, req.UserID); err != nil {
		l.Error("failed to remove group member",
			zap.String("group_id", req.GroupID),
			zap.String("user_id", req.UserID),
			zap.Any("error", err))
		return h.transportError(e, err)
	}

	return e.JSON(http.StatusOK, successResponse{Success: true})
}

type successResponse struct {
	Success bool `json:"success"`
}

func (h *Handler) decodeRequest(e echo.Context, req any) *service.Error {
	if err := e.Bind(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, "invalid request body")
	}

	if err := e.Validate(req); err != nil {
		return service.NewError(service.ErrorCodeInvalidBody, errors.Wrap(err, "request validation failed").Error())
	}
	return nil
}

func (h *Handler) transportError(e echo.Context, err *service.Error) error {
	response := struct {
		Error *service.Error `json:"error"`
	}{Error: err}

	switch err.Code {
	case service.ErrorCodeUnauthenticated:
		return e.JSON(http.StatusUnauthorized, response)
	case service.ErrorCodeForbidden:
		return e.JSON(http.StatusForbidden, response)
	case service.ErrorCodeNotFound:
		return e.JSON(http.StatusNotFound, response)
	case service.ErrorCodeInvalidBody:
		return e.JSON(http.StatusBadRequest, response)
	case service.ErrorCodeMemberExists:
		return e.JSON(http.StatusConflict, response)
	case service.ErrorCodeRateLimited:
		return e.JSON(http.StatusTooManyRequests, response)
	default:
		return e.JSON(http.StatusInternalServerError, response)
	}
}
