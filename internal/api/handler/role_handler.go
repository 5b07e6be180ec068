package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/userhub/directory-api/internal/core/ports"
)

// RoleHandler exposes the fixed role catalog.
type RoleHandler struct {
	roles ports.RoleDirectory
}

func NewRoleHandler(roles ports.RoleDirectory) *RoleHandler {
	return &RoleHandler{roles: roles}
}

// List returns the role catalog.
//
// @Summary      List roles
// @Tags         roles
// @Produce      json
// @Success      200  {array}  domain.Role
// @Router       /roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	roles, err := h.roles.ReadAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, roles)
}
