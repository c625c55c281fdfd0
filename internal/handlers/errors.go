package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.groupchat/internal/model"
)

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, model.ErrorInvalidGroup):
		return echo.NewHTTPError(http.StatusNotFound, "invalid group")
	case errors.Is(err, model.ErrorInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrorEncodingFailure):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, model.ErrorAccessDenied):
		return echo.NewHTTPError(http.StatusUnauthorized, "denied")
	}
	return err
}

func groupParam(c echo.Context) model.GroupID {
	return model.GroupID(c.Param("groupId"))
}
