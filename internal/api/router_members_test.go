package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubroster/internal/models"
)

func TestMemberCRUDOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")

	w := doJSON(t, h, "POST", "/api/members", admin, map[string]any{
		"name": "Ada Lovelace", "suburb": "Berwick", "email1": "ada@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Member
	decodeBody(t, w, &created)
	assert.Equal(t, "1", created.MemberNumber)

	w = doJSON(t, h, "GET", "/api/members/"+created.MemberID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// partial update: rename and clear the email with an explicit null
	w = doJSON(t, h, "PUT", "/api/members/"+created.MemberID, admin, map[string]any{
		"name": "Ada King", "email1": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Member
	decodeBody(t, w, &updated)
	assert.Equal(t, "Ada King", updated.Name)
	assert.Nil(t, updated.Email1)

	// empty payload is rejected
	w = doJSON(t, h, "PUT", "/api/members/"+created.MemberID, admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, "DELETE", "/api/members/"+created.MemberID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, "GET", "/api/members/"+created.MemberID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMemberDeleteIsAdminOnly(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	editor := registerUser(t, h, "editor@example.com", "Editor")

	w := doJSON(t, h, "POST", "/api/members", editor, map[string]any{"name": "Bob"})
	require.Equal(t, http.StatusCreated, w.Code) // any role may create
	var m models.Member
	decodeBody(t, w, &m)

	w = doJSON(t, h, "DELETE", "/api/members/"+m.MemberID, editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, h, "DELETE", "/api/members/"+m.MemberID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMemberSearchAndNumberLookup(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")

	for _, m := range []map[string]any{
		{"name": "Ada", "member_number": "2", "email1": "ada@example.com"},
		{"name": "Bob", "member_number": "10"},
		{"name": "Cy", "member_number": "10A"},
	} {
		w := doJSON(t, h, "POST", "/api/members", token, m)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, h, "GET", "/api/members", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []models.Member
	decodeBody(t, w, &members)
	require.Len(t, members, 3)
	assert.Equal(t, "2", members[0].MemberNumber) // alphanumeric order

	w = doJSON(t, h, "GET", "/api/members?search=ADA", token, nil)
	decodeBody(t, w, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "Ada", members[0].Name)

	w = doJSON(t, h, "GET", "/api/members?member_number=10A", token, nil)
	decodeBody(t, w, &members)
	require.Len(t, members, 1)
	assert.Equal(t, "Cy", members[0].Name)
}

func TestMemberNumberConflictOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")

	w := doJSON(t, h, "POST", "/api/members", token, map[string]any{"name": "A", "member_number": "7"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, h, "POST", "/api/members", token, map[string]any{"name": "B", "member_number": "7"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestBulkUploadMembersOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")

	csv := "member_number,name\n,First Member\n,Second Member\n"
	w := uploadCSV(t, h, "/api/members/bulk-upload", token, "members.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.BulkResult
	decodeBody(t, w, &result)
	assert.Equal(t, 2, result.InsertedCount)
	assert.Zero(t, result.SkippedCount)

	w = uploadCSV(t, h, "/api/members/bulk-upload", token, "members.txt", []byte(csv))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = uploadCSV(t, h, "/api/members/bulk-upload", token, "members.csv", []byte{0x61, 0x81, 0x62})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportMembersOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")

	w := doJSON(t, h, "POST", "/api/members", token, map[string]any{"name": "Ada"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, h, "POST", "/api/members/export", token, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "member_number")
}

func TestPrintableListAndSuburbs(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	token := registerUser(t, h, "admin@example.com", "Admin")

	for _, m := range []map[string]any{
		{"name": "B", "member_number": "10", "suburb": "Berwick"},
		{"name": "A", "member_number": "2", "suburb": "Armadale"},
	} {
		w := doJSON(t, h, "POST", "/api/members", token, m)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, h, "GET", "/api/members/printable-list", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var members []models.Member
	decodeBody(t, w, &members)
	require.Len(t, members, 2)
	assert.Equal(t, "2", members[0].MemberNumber)

	w = doJSON(t, h, "GET", "/api/members/suburbs/list", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var suburbs struct {
		Suburbs []string `json:"suburbs"`
	}
	decodeBody(t, w, &suburbs)
	assert.Equal(t, []string{"Armadale", "Berwick"}, suburbs.Suburbs)
}
