package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"uk.co.dudmesh.groupchat/internal/model"
)

type AccessChecker interface {
	CheckGroupAccess(ctx context.Context, groupID model.GroupID, password string) error
}

type Throttle interface {
	Allow(key string) bool
	Fail(key string)
	Reset(key string)
}

type accessRequest struct {
	Password string `json:"password"`
}

// CheckGroupAccess answers whether the password opens the group. A grant is
// not a session: later reads and writes only need the group id.
func CheckGroupAccess(chat AccessChecker, throttle Throttle) echo.HandlerFunc {
	return func(c echo.Context) error {
		groupID := groupParam(c)
		params := &accessRequest{}
		if err := c.Bind(params); err != nil {
			return err
		}

		key := c.RealIP() + "/" + string(groupID)
		if throttle != nil && !throttle.Allow(key) {
			c.Logger().Warnf("access throttled for %s", key)
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "denied"})
		}

		err := chat.CheckGroupAccess(c.Request().Context(), groupID, params.Password)
		if errors.Is(err, model.ErrorAccessDenied) {
			if throttle != nil {
				throttle.Fail(key)
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"status": "denied"})
		}
		if err != nil {
			return err
		}

		if throttle != nil {
			throttle.Reset(key)
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "granted"})
	}
}

func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
