package handlers

import (
	"errors"
	"strconv"

	"dinepos/internal/common"
	"dinepos/internal/repositories"
	"dinepos/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// respondError maps service errors onto the standard error envelope.
func respondError(c echo.Context, err error) error {
	var verr *services.ValidationError
	var conflict *services.ConflictError
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &verr):
		return common.SendValidationErrors(c, verr.Details)
	case errors.As(err, &conflict):
		if conflict.TableBusy {
			return common.SendConflictError(c, conflict.Message)
		}
		return common.SendClientError(c, conflict.Message)
	case errors.As(err, &notFound):
		return common.SendNotFoundError(c, notFound.Resource)
	case errors.Is(err, repositories.ErrNotFound):
		return common.SendNotFoundError(c, "Resource")
	case errors.Is(err, services.ErrReceiptsDisabled):
		return common.SendClientError(c, err.Error())
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"method": c.Request().Method,
		"path":   c.Path(),
	}).Error("request failed")
	return common.SendServerError(c, "Internal server error")
}

// outletAndUser reads the identity placed on the request by the auth middleware.
func outletAndUser(c echo.Context) (uuid.UUID, uuid.UUID, bool) {
	ctx := c.Request().Context()
	outletID, ok := common.GetOutletIDFromContext(ctx)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	userID, ok := common.GetUserIDFromContext(ctx)
	return outletID, userID, ok
}

func pathUUID(c echo.Context, name string) (uuid.UUID, error) {
	return common.ValidateUUID(c.Param(name), name)
}

// pagination reads limit and offset, ignoring values that are not integers.
func pagination(c echo.Context) (int, int, error) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return common.ValidatePaginationParams(limit, offset)
}
