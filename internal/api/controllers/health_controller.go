package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthController struct{}

func NewHealthController() *HealthController {
	return &HealthController{}
}

func (c *HealthController) RegisterRoutes(e *echo.Echo) {
	e.GET("/ping", c.Ping)
}

func (c *HealthController) Ping(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"message": "Backend running"})
}
