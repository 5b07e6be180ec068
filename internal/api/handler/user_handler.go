package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/userhub/directory-api/internal/api/metrics"
	"github.com/userhub/directory-api/internal/core/domain"
	"github.com/userhub/directory-api/internal/core/ports"
	"github.com/userhub/directory-api/internal/core/service"
)

// UserHandler exposes the role-gated user CRUD surface. Authorization is
// decided per request from the verified token identity; a caller whose token
// failed verification is treated as anonymous.
type UserHandler struct {
	users ports.UserService
}

func NewUserHandler(users ports.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// List returns all users.
//
// @Summary      List users (administrators only)
// @Tags         users
// @Produce      json
// @Success      200  {array}   userResponse
// @Failure      401  {object}  errorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	caller := callerIdentity(c)
	if !service.CanListUsers(caller) {
		metrics.AuthzDeniedTotal.WithLabelValues("list_users").Inc()
		return domain.ErrUnauthorized
	}

	users, err := h.users.ReadAll(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

// Read returns a single user.
//
// @Summary      Read a user (self or administrator)
// @Tags         users
// @Produce      json
// @Param        id   path      int  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Read(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if !service.CanReadUser(callerIdentity(c), id) {
		metrics.AuthzDeniedTotal.WithLabelValues("read_user").Inc()
		return domain.ErrUnauthorized
	}

	user, err := h.users.Read(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Create registers a new user. Anonymous signup is allowed as long as the
// request does not grant the Administrator role.
//
// @Summary      Create a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createUserRequest  true  "User details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller := callerIdentity(c)
	names := roleNames(req.Roles)
	if !service.CanCreateUser(caller, names) {
		metrics.AuthzDeniedTotal.WithLabelValues("create_user").Inc()
		return domain.ErrUnauthorized
	}

	user, err := h.users.Create(c.Request().Context(), caller, ports.UserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Roles:     names,
	})
	if err != nil {
		return err
	}

	metrics.UsersCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Update overwrites a user's profile.
//
// @Summary      Update a user (administrator, or self without granting Administrator)
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      int                true  "User id"
// @Param        body  body      updateUserRequest  true  "New user details"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	caller := callerIdentity(c)
	names := roleNames(req.Roles)
	if !service.CanUpdateUser(caller, id, names) {
		metrics.AuthzDeniedTotal.WithLabelValues("update_user").Inc()
		return domain.ErrUnauthorized
	}

	user, err := h.users.Update(c.Request().Context(), caller, id, ports.UserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Roles:     names,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// Delete removes a user.
//
// @Summary      Delete a user (self or administrator)
// @Tags         users
// @Param        id   path  int  true  "User id"
// @Success      200
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	caller := callerIdentity(c)
	if !service.CanDeleteUser(caller, id) {
		metrics.AuthzDeniedTotal.WithLabelValues("delete_user").Inc()
		return domain.ErrUnauthorized
	}

	deleted, err := h.users.Delete(c.Request().Context(), caller, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domain.ErrUserNotFound
	}
	return c.NoContent(http.StatusOK)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	return id, nil
}
