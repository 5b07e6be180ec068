package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/userhub/directory-api/internal/api/middleware"
	"github.com/userhub/directory-api/internal/core/domain"
	"github.com/userhub/directory-api/internal/core/ports"
)

func adminCaller() *domain.Identity {
	return &domain.Identity{ID: 1, Roles: []string{domain.RoleAdministrator}}
}

func guestCaller(id int64) *domain.Identity {
	return &domain.Identity{ID: id, Roles: []string{domain.RoleGuest}}
}

func withCaller(c echo.Context, caller *domain.Identity) echo.Context {
	if caller != nil {
		c.Set(middleware.IdentityKey, caller)
	}
	return c
}

func TestUserHandler_List_RequiresAdministrator(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		readAllFn: func(context.Context) ([]domain.User, error) {
			return []domain.User{{ID: 1, Email: "a@y.com", PasswordHash: "$2a$hash"}}, nil
		},
	})

	c, _ := newTestContext(t, http.MethodGet, "/users", "")
	if err := h.List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous list: expected ErrUnauthorized, got %v", err)
	}

	c, _ = newTestContext(t, http.MethodGet, "/users", "")
	withCaller(c, guestCaller(1))
	if err := h.List(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("guest list: expected ErrUnauthorized, got %v", err)
	}

	c, rec := newTestContext(t, http.MethodGet, "/users", "")
	withCaller(c, adminCaller())
	if err := h.List(c); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "hash") || strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response leaks the password hash: %s", rec.Body.String())
	}
}

func TestUserHandler_Read_SelfOrAdmin(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		readFn: func(_ context.Context, id int64) (*domain.User, error) {
			return &domain.User{ID: id, Email: "a@y.com"}, nil
		},
	})

	cases := []struct {
		name   string
		caller *domain.Identity
		target string
		deny   bool
	}{
		{"anonymous", nil, "5", true},
		{"self", guestCaller(5), "5", false},
		{"other non-admin", guestCaller(5), "6", true},
		{"admin", adminCaller(), "6", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newTestContext(t, http.MethodGet, "/users/"+tc.target, "")
			c.SetParamNames("id")
			c.SetParamValues(tc.target)
			withCaller(c, tc.caller)

			err := h.Read(c)
			if tc.deny {
				if !errors.Is(err, domain.ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
		})
	}
}

func TestUserHandler_Create_AnonymousGuestSignup(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		createFn: func(_ context.Context, actor *domain.Identity, input ports.UserInput) (*domain.User, error) {
			if actor != nil {
				t.Fatalf("expected anonymous actor")
			}
			return &domain.User{
				ID:        2,
				FirstName: input.FirstName,
				LastName:  input.LastName,
				Email:     input.Email,
				Roles:     []domain.Role{{ID: 2, Name: domain.RoleGuest}},
			}, nil
		},
	})

	body := `{"email":"x@y.com","password":"pw1234","firstName":"A","lastName":"B"}`
	c, rec := newTestContext(t, http.MethodPost, "/users", body)
	if err := h.Create(c); err != nil {
		t.Fatalf("create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Roles) != 1 || resp.Roles[0].Name != domain.RoleGuest {
		t.Fatalf("expected exactly the Guest role, got %v", resp.Roles)
	}
}

func TestUserHandler_Create_AdministratorGrant(t *testing.T) {
	adminBody := `{"email":"x@y.com","password":"pw1234","firstName":"A","lastName":"B","roles":[{"name":"Administrator"}]}`

	h := NewUserHandler(&stubUserService{
		createFn: func(_ context.Context, _ *domain.Identity, input ports.UserInput) (*domain.User, error) {
			return &domain.User{ID: 3, Email: input.Email, Roles: []domain.Role{{ID: 1, Name: domain.RoleAdministrator}}}, nil
		},
	})

	// Anonymous attempt to grant Administrator is denied.
	c, _ := newTestContext(t, http.MethodPost, "/users", adminBody)
	if err := h.Create(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous admin grant: expected ErrUnauthorized, got %v", err)
	}

	// So is a non-admin caller.
	c, _ = newTestContext(t, http.MethodPost, "/users", adminBody)
	withCaller(c, guestCaller(9))
	if err := h.Create(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("guest admin grant: expected ErrUnauthorized, got %v", err)
	}

	// An administrator may grant the role.
	c, rec := newTestContext(t, http.MethodPost, "/users", adminBody)
	withCaller(c, adminCaller())
	if err := h.Create(c); err != nil {
		t.Fatalf("admin create: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	var resp userResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Roles) != 1 || resp.Roles[0].Name != domain.RoleAdministrator {
		t.Fatalf("expected Administrator role attached, got %v", resp.Roles)
	}
}

func TestUserHandler_Update_SelfCannotGrantAdministrator(t *testing.T) {
	h := NewUserHandler(&stubUserService{
		updateFn: func(_ context.Context, _ *domain.Identity, id int64, input ports.UserInput) (*domain.User, error) {
			return &domain.User{ID: id, Email: input.Email}, nil
		},
	})

	body := `{"email":"x@y.com","firstName":"A","lastName":"B","roles":[{"name":"Administrator"}]}`
	c, _ := newTestContext(t, http.MethodPut, "/users/5", body)
	c.SetParamNames("id")
	c.SetParamValues("5")
	withCaller(c, guestCaller(5))

	if err := h.Update(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Without the grant the same caller may edit their own record.
	body = `{"email":"x@y.com","firstName":"A","lastName":"B"}`
	c, rec := newTestContext(t, http.MethodPut, "/users/5", body)
	c.SetParamNames("id")
	c.SetParamValues("5")
	withCaller(c, guestCaller(5))

	if err := h.Update(c); err != nil {
		t.Fatalf("self update: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Delete(t *testing.T) {
	existing := map[int64]bool{5: true}
	h := NewUserHandler(&stubUserService{
		deleteFn: func(_ context.Context, _ *domain.Identity, id int64) (bool, error) {
			if existing[id] {
				delete(existing, id)
				return true, nil
			}
			return false, nil
		},
	})

	// Anonymous is denied before the service runs.
	c, _ := newTestContext(t, http.MethodDelete, "/users/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	if err := h.Delete(c); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("anonymous delete: expected ErrUnauthorized, got %v", err)
	}

	// The owning non-admin user may delete themselves.
	c, rec := newTestContext(t, http.MethodDelete, "/users/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	withCaller(c, guestCaller(5))
	if err := h.Delete(c); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	// A second delete of the same id maps to not found.
	c, _ = newTestContext(t, http.MethodDelete, "/users/5", "")
	c.SetParamNames("id")
	c.SetParamValues("5")
	withCaller(c, guestCaller(5))
	if err := h.Delete(c); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserHandler_InvalidID(t *testing.T) {
	h := NewUserHandler(&stubUserService{})

	c, _ := newTestContext(t, http.MethodGet, "/users/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")
	withCaller(c, adminCaller())

	err := h.Read(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
