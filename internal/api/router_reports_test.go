package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubroster/internal/models"
	"clubroster/internal/report"
)

func seedReportRoster(t *testing.T, h http.Handler, token string) {
	t.Helper()
	for _, m := range []map[string]any{
		{"name": "Ada", "member_number": "1", "financial": true, "email1": "ada@example.com", "expiry_date": "2099-01-01"},
		{"name": "Bob", "member_number": "2", "financial": false, "email1": "bob@example.com", "expiry_date": "2020-01-01"},
		{"name": "Cy", "member_number": "3", "financial": true, "inactive": true},
	} {
		w := doJSON(t, h, "POST", "/api/members", token, m)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
}

func TestDashboardOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")
	seedReportRoster(t, h, token)

	w := doJSON(t, h, "GET", "/api/stats/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var stats report.Stats
	decodeBody(t, w, &stats)
	assert.Equal(t, 3, stats.TotalMembers)
	assert.Equal(t, 1, stats.FinancialMembers)
	assert.Equal(t, 1, stats.InactiveMembers)
}

func TestMemberReportOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")
	seedReportRoster(t, h, token)

	var resp struct {
		Members []report.Row `json:"members"`
		Count   int          `json:"count"`
	}

	w := doJSON(t, h, "GET", "/api/reports/members?filter_type=all", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decodeBody(t, w, &resp)
	assert.Equal(t, 3, resp.Count)

	w = doJSON(t, h, "GET", "/api/reports/members?filter_type=unfinancial", token, nil)
	decodeBody(t, w, &resp)
	require.Equal(t, 1, resp.Count)
	assert.Equal(t, "Bob", resp.Members[0].Name)

	w = doJSON(t, h, "GET", "/api/reports/members?filter_type=bogus", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestContactListOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")
	seedReportRoster(t, h, token)

	w := doJSON(t, h, "GET", "/api/contact-lists?list_type=email", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list report.ContactList
	decodeBody(t, w, &list)
	assert.Equal(t, 2, list.Count)
	assert.Equal(t, "ada@example.com;bob@example.com", list.Contacts)

	w = doJSON(t, h, "GET", "/api/contact-lists?list_type=fax", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMarkExpiredUnfinancialOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	editor := registerUser(t, h, "editor@example.com", "Editor")
	seedReportRoster(t, h, admin)

	w := doJSON(t, h, "POST", "/api/admin/mark-expired-unfinancial", editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// expired member exists but is already unfinancial; add a financial one
	mw := doJSON(t, h, "POST", "/api/members", admin, map[string]any{
		"name": "Lapsed", "financial": true, "expiry_date": "2020-06-01",
	})
	require.Equal(t, http.StatusCreated, mw.Code)

	w = doJSON(t, h, "POST", "/api/admin/mark-expired-unfinancial", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]int
	decodeBody(t, w, &resp)
	assert.Equal(t, 1, resp["updated_count"])
}

func TestClearAllDataOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	seedReportRoster(t, h, admin)

	w := doJSON(t, h, "POST", "/api/admin/clear-all-data", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = doJSON(t, h, "POST", "/api/admin/clear-all-data?confirm=DELETE_ALL_DATA", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "GET", "/api/members", admin, nil)
	var members []models.Member
	decodeBody(t, w, &members)
	assert.Empty(t, members)

	// the admin session survives the wipe
	w = doJSON(t, h, "GET", "/api/auth/me", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
