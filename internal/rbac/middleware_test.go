package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/medika-erp/medika-erp/internal/shared"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func requestWithSession(t *testing.T, userID string, role Role) *http.Request {
	t.Helper()
	sess := &shared.Session{}
	if userID != "" {
		sess.SetUser(userID)
		sess.SetRole(string(role))
	}
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	return req.WithContext(shared.ContextWithSession(req.Context(), sess))
}

func TestRequireRoleAnonymous(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleSales)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, "", ""))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRoleDenied(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleSales)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, "7", RoleCustomer))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRequireRoleAllowed(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleSales)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, "7", RoleSales))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAdminAlwaysPasses(t *testing.T) {
	mw := Middleware{}
	handler := mw.RequireRole(RoleCustomer)(okHandler())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithSession(t, "1", RoleAdmin))
	require.Equal(t, http.StatusOK, rec.Code)
}
