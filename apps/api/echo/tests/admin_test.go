package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawadhq/rawad/core/registration"
	testutil "github.com/rawadhq/rawad/tests"
)

func seedAdmin(t *testing.T) {
	t.Helper()
	testutil.SeedAdmin(t, adminRepo, adminPassword)
}

func login(t *testing.T, password string) *http.Response {
	t.Helper()
	body := marchallObj(t, map[string]string{"password": password})
	req, rec := newRequest(http.MethodPost, "/v1/admin/login", body)
	app.ServeHTTP(rec, req)
	return rec.Result()
}

func TestAdminLogin(t *testing.T) {
	seedAdmin(t)

	t.Run("missing password", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/admin/login", []byte(`{}`))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		res := login(t, "nope")
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)

		var fields map[string]string
		require.NoError(t, json.NewDecoder(res.Body).Decode(&fields))
		assert.Contains(t, fields, "password")
	})

	t.Run("correct password returns a token", func(t *testing.T) {
		seedAdmin(t)
		res := login(t, adminPassword)
		require.Equal(t, http.StatusOK, res.StatusCode)

		var data struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.NewDecoder(res.Body).Decode(&data))
		assert.NotEmpty(t, data.Token)

		// the issued token opens an authed endpoint
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations", data.Token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("lockout after repeated failures", func(t *testing.T) {
		seedAdmin(t)
		for i := 0; i < 4; i++ {
			res := login(t, "nope")
			require.Equal(t, http.StatusBadRequest, res.StatusCode)
		}
		// the fifth failure locks
		res := login(t, "nope")
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		// locked out even with the correct password
		res = login(t, adminPassword)
		assert.Equal(t, http.StatusForbidden, res.StatusCode)

		// operator unlock restores access
		require.NoError(t, adminSvc.Unlock(context.Background()))
		res = login(t, adminPassword)
		assert.Equal(t, http.StatusOK, res.StatusCode)
	})
}

func TestAdminEndpointsRequireAuth(t *testing.T) {
	tests := []httpTest{
		{name: "list", method: http.MethodGet, path: "/v1/admin/registrations", wantCode: http.StatusUnauthorized},
		{name: "detail", method: http.MethodGet, path: "/v1/admin/registrations/some-id", wantCode: http.StatusUnauthorized},
		{name: "delete", method: http.MethodDelete, path: "/v1/admin/registrations", wantCode: http.StatusUnauthorized},
		{name: "live", method: http.MethodGet, path: "/v1/admin/registrations/live", wantCode: http.StatusUnauthorized},
		{name: "analytics", method: http.MethodGet, path: "/v1/admin/analytics", wantCode: http.StatusUnauthorized},
		{name: "reports", method: http.MethodGet, path: "/v1/admin/reports/csv", wantCode: http.StatusUnauthorized},
		{name: "password", method: http.MethodPut, path: "/v1/admin/password", wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path)
			app.ServeHTTP(rec, req)
			require.Equal(t, tt.wantCode, rec.Code)

			var herr httpErr
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &herr))
			assert.Equal(t, errMissingToken, herr)
		})
	}
}

func TestAdminRegistrations(t *testing.T) {
	token := getToken(t)
	mentor := testutil.CreateRegistration(t, regRepo, "سارة الأحمد", "sara-admin@example.com", "0511111111", registration.RoleMentor)
	beneficiary := testutil.CreateRegistration(t, regRepo, "خالد العتيبي", "khaled-admin@example.com", "0522222222", registration.RoleBeneficiary)

	t.Run("list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var regs []registration.Registration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
		assert.GreaterOrEqual(t, len(regs), 2)
	})

	t.Run("list filtered by role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations?role="+registration.RoleBeneficiary, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var regs []registration.Registration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
		require.NotEmpty(t, regs)
		for _, reg := range regs {
			assert.Equal(t, registration.RoleBeneficiary, reg.Role)
		}
	})

	t.Run("list filtered by search", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations?search=khaled-admin", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var regs []registration.Registration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
		require.Len(t, regs, 1)
		assert.Equal(t, beneficiary.ID, regs[0].ID)
	})

	t.Run("malformed filter lists everything", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations?created_from=not-a-date", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var regs []registration.Registration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
		assert.GreaterOrEqual(t, len(regs), 2)
	})

	t.Run("detail", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations/"+mentor.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var reg registration.Registration
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
		assert.Equal(t, mentor.ID, reg.ID)
		assert.Equal(t, "sara-admin@example.com", reg.Email)
	})

	t.Run("detail not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/admin/registrations/missing", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete multiple", func(t *testing.T) {
		victim := testutil.CreateRegistration(t, regRepo, "للحذف", "delete-me@example.com", "0533333333", registration.RoleMentor)

		req, rec := newAuthRequest(http.MethodDelete, "/v1/admin/registrations?id="+victim.ID, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/v1/admin/registrations/"+victim.ID, token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestAdminAnalytics(t *testing.T) {
	token := getToken(t)
	testutil.CreateRegistration(t, regRepo, "محلل", "analytics@example.com", "0544444444", registration.RoleMentor)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/analytics", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary registration.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.GreaterOrEqual(t, summary.Total, 1)
	assert.Len(t, summary.Daily, 30)
	assert.Len(t, summary.RoleDistribution, 2)
}

func TestAdminReportCSV(t *testing.T) {
	token := getToken(t)
	testutil.CreateRegistration(t, regRepo, "تقرير", "report@example.com", "0555555555", registration.RoleMentor)

	req, rec := newAuthRequest(http.MethodGet, "/v1/admin/reports/csv", token)
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte{0xEF, 0xBB, 0xBF}))
	assert.Contains(t, rec.Body.String(), "report@example.com")
}

func TestAdminChangePassword(t *testing.T) {
	token := getToken(t)
	seedAdmin(t)

	t.Run("wrong current password", func(t *testing.T) {
		body := marchallObj(t, map[string]string{
			"current_password":     "nope",
			"new_password":         "N3w.Secret!",
			"new_password_confirm": "N3w.Secret!",
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/password", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Contains(t, fields, "current_password")
	})

	t.Run("weak new password", func(t *testing.T) {
		seedAdmin(t)
		body := marchallObj(t, map[string]string{
			"current_password":     adminPassword,
			"new_password":         "short",
			"new_password_confirm": "short",
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/password", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var fields map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fields))
		assert.Contains(t, fields, "new_password")
	})

	t.Run("successful rotation", func(t *testing.T) {
		seedAdmin(t)
		body := marchallObj(t, map[string]string{
			"current_password":     adminPassword,
			"new_password":         "N3w.Secret!",
			"new_password_confirm": "N3w.Secret!",
		})
		req, rec := newAuthRequest(http.MethodPut, "/v1/admin/password", token, body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		res := login(t, "N3w.Secret!")
		assert.Equal(t, http.StatusOK, res.StatusCode)
		res = login(t, adminPassword)
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}
