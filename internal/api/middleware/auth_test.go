package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
)

type stubUserSource struct {
	user *model.User
	err  error
}

func (s *stubUserSource) GetByAPIKey(context.Context, string) (*model.User, error) {
	return s.user, s.err
}

func TestAuth_MissingKey(t *testing.T) {
	mw := Auth(&stubUserSource{})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/requests", nil)

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_InvalidKey(t *testing.T) {
	mw := Auth(&stubUserSource{err: errors.New("not found")})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/requests", nil)
	r.Header.Set("X-API-Key", "bogus")

	mw(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler should not run")
	})).ServeHTTP(w, r)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_StoresUser(t *testing.T) {
	user := &model.User{ID: "u-1", Role: model.RoleDeveloper}
	mw := Auth(&stubUserSource{user: user})
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/requests", nil)
	r.Header.Set("X-API-Key", "valid-key")

	var got *model.User
	mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = UserFrom(r.Context())
	})).ServeHTTP(w, r)

	require.NotNil(t, got)
	assert.Equal(t, "u-1", got.ID)
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(model.RoleTeamLead, model.RoleAdmin)(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))

	cases := []struct {
		name string
		user *model.User
		want int
	}{
		{"team lead allowed", &model.User{Role: model.RoleTeamLead}, http.StatusNoContent},
		{"admin allowed", &model.User{Role: model.RoleAdmin}, http.StatusNoContent},
		{"developer forbidden", &model.User{Role: model.RoleDeveloper}, http.StatusForbidden},
		{"unauthenticated", nil, http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodPost, "/requests/1/approve", nil)
			if tc.user != nil {
				r = r.WithContext(WithUser(r.Context(), tc.user))
			}
			handler.ServeHTTP(w, r)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
