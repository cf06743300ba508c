package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clubroster/internal/models"
)

func createTestMember(t *testing.T, h http.Handler, token, name string) models.Member {
	t.Helper()
	w := doJSON(t, h, "POST", "/api/members", token, map[string]any{"name": name})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var m models.Member
	decodeBody(t, w, &m)
	return m
}

func TestVehicleLifecycleOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	owner := createTestMember(t, h, admin, "Owner")

	w := doJSON(t, h, "POST", "/api/vehicles", admin, map[string]any{
		"member_id": owner.MemberID, "registration": "ABC123", "make": "Holden", "year": 1972,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var v models.Vehicle
	decodeBody(t, w, &v)
	assert.Equal(t, "Active", v.Status)

	// duplicate active registration conflicts
	w = doJSON(t, h, "POST", "/api/vehicles", admin, map[string]any{
		"member_id": owner.MemberID, "registration": "abc123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// DELETE archives rather than deleting
	w = doJSON(t, h, "DELETE", "/api/vehicles/"+v.VehicleID, admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var archived models.Vehicle
	decodeBody(t, w, &archived)
	assert.True(t, archived.Archived)

	w = doJSON(t, h, "GET", "/api/vehicles", admin, nil)
	var visible []models.Vehicle
	decodeBody(t, w, &visible)
	assert.Empty(t, visible)

	w = doJSON(t, h, "GET", "/api/vehicles?include_archived=true", admin, nil)
	decodeBody(t, w, &visible)
	assert.Len(t, visible, 1)

	w = doJSON(t, h, "POST", "/api/vehicles/"+v.VehicleID+"/restore", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var restored models.Vehicle
	decodeBody(t, w, &restored)
	assert.False(t, restored.Archived)

	w = doJSON(t, h, "DELETE", "/api/vehicles/"+v.VehicleID+"/permanent", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, "GET", "/api/vehicles/"+v.VehicleID, admin, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestVehicleRolePolicy(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	editor := registerUser(t, h, "editor@example.com", "Editor") // member_editor
	owner := createTestMember(t, h, admin, "Owner")

	// member_editor may read but not write vehicles
	w := doJSON(t, h, "GET", "/api/vehicles", editor, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, h, "POST", "/api/vehicles", editor, map[string]any{
		"member_id": owner.MemberID, "registration": "XYZ789",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, h, "POST", "/api/vehicles", admin, map[string]any{
		"member_id": owner.MemberID, "registration": "XYZ789",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var v models.Vehicle
	decodeBody(t, w, &v)

	w = doJSON(t, h, "DELETE", "/api/vehicles/"+v.VehicleID, editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	// restore and permanent delete stay admin-only
	w = doJSON(t, h, "POST", "/api/vehicles/"+v.VehicleID+"/restore", editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = doJSON(t, h, "DELETE", "/api/vehicles/"+v.VehicleID+"/permanent", editor, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestVehicleUpdateOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	owner := createTestMember(t, h, admin, "Owner")

	w := doJSON(t, h, "POST", "/api/vehicles", admin, map[string]any{
		"member_id": owner.MemberID, "registration": "ABC123", "expiry_date": "2026-06-30",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var v models.Vehicle
	decodeBody(t, w, &v)

	w = doJSON(t, h, "PUT", "/api/vehicles/"+v.VehicleID, admin, map[string]any{
		"status": "Cancelled", "reason": "Sold Vehicle", "expiry_date": nil,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Vehicle
	decodeBody(t, w, &updated)
	assert.Equal(t, "Cancelled", updated.Status)
	assert.Equal(t, "Sold Vehicle", updated.Reason)
	assert.Nil(t, updated.ExpiryDate)

	w = doJSON(t, h, "PUT", "/api/vehicles/"+v.VehicleID, admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBulkUploadVehiclesOverHTTP(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	owner := createTestMember(t, h, admin, "Owner")

	csv := "member_id,registration\n" + owner.MemberID + ",AAA111\n" + owner.MemberID + ",AAA111\n"
	w := uploadCSV(t, h, "/api/vehicles/bulk-upload", admin, "vehicles.csv", []byte(csv))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.BulkResult
	decodeBody(t, w, &result)
	assert.Equal(t, 1, result.InsertedCount)
	assert.Equal(t, 1, result.SkippedCount)
}

func TestVehicleOptionsOverHTTP(t *testing.T) {
	h, svc := newTestRouter(t, nil)
	admin := registerUser(t, h, "admin@example.com", "Admin")
	editor := registerUser(t, h, "editor@example.com", "Editor")

	require.NoError(t, svc.EnsureDefaultOptions(testCtx()))

	w := doJSON(t, h, "GET", "/api/vehicle-options?type=status", editor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var options []models.VehicleOption
	decodeBody(t, w, &options)
	assert.Len(t, options, 3)

	w = doJSON(t, h, "POST", "/api/vehicle-options", editor, map[string]string{
		"type": "status", "value": "Pending",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, h, "POST", "/api/vehicle-options", admin, map[string]string{
		"type": "status", "value": "Pending",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var o models.VehicleOption
	decodeBody(t, w, &o)

	w = doJSON(t, h, "DELETE", "/api/vehicle-options/"+o.OptionID, admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, h, "GET", "/api/vehicle-options?type=colour", admin, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
