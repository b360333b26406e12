package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_LoginKeepsSessionCookie(t *testing.T) {
	var sawCookie bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			http.SetCookie(w, &http.Cookie{Name: "qsights_session", Value: "abc", Path: "/"})
			json.NewEncoder(w).Encode(User{ID: "u1", Email: "admin@qsights.com", Role: "admin"})
		case "/api/auth/me":
			cookie, err := r.Cookie("qsights_session")
			sawCookie = err == nil && cookie.Value == "abc"
			json.NewEncoder(w).Encode(User{ID: "u1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	user, err := c.Login(context.Background(), "admin@qsights.com", "secret")
	require.NoError(t, err)
	require.Equal(t, "u1", user.ID)

	_, err = c.CurrentUser(context.Background())
	require.NoError(t, err)
	require.True(t, sawCookie)
}

func TestClient_ListPrograms(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/programs", r.URL.Path)
		require.Equal(t, "expired", r.URL.Query().Get("status"))
		require.Equal(t, "2", r.URL.Query().Get("page"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []Program{{ID: "p1", Code: "TP-001", Status: "expired"}},
			"pagination": Pagination{
				Page:    2,
				PerPage: 15,
				Total:   16,
			},
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	programs, pagination, err := c.ListPrograms(context.Background(), ListProgramsOptions{
		Status: "expired",
		Page:   2,
	})
	require.NoError(t, err)
	require.Len(t, programs, 1)
	require.Equal(t, "TP-001", programs[0].Code)
	require.EqualValues(t, 16, pagination.Total)
}

func TestClient_ValidationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    "VALIDATION_FAILED",
			"message": "Validation failed",
			"errors":  map[string][]string{"role_name": {"A role with this name already exists in this program"}},
		})
	}))
	defer server.Close()

	c, err := New(server.URL)
	require.NoError(t, err)

	_, err = c.CreateRole(context.Background(), "p1", CreateRoleRequest{RoleName: "Dup"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	require.NotEmpty(t, apiErr.Errors["role_name"])
}
