package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"clubroster/internal/middleware"
	"clubroster/internal/models"
	"clubroster/internal/service"
	"clubroster/internal/util"
)

func (h *Handlers) ListVehicles(w http.ResponseWriter, r *http.Request) {
	q := models.VehicleQuery{
		MemberID:        r.URL.Query().Get("member_id"),
		Registration:    r.URL.Query().Get("registration"),
		IncludeArchived: r.URL.Query().Get("include_archived") == "true",
	}
	vehicles, err := h.svc.ListVehicles(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	util.WriteJSON(w, 200, vehicles)
}

func (h *Handlers) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req service.VehicleCreate
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	v, err := h.svc.CreateVehicle(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 201, v)
}

func (h *Handlers) GetVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.GetVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, v)
}

func (h *Handlers) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var patch service.VehiclePatch
	if err := util.DecodeJSON(r, &patch); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	v, err := h.svc.UpdateVehicle(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, v)
}

// ArchiveVehicle answers DELETE: the default delete is a soft archive.
func (h *Handlers) ArchiveVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.ArchiveVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, v)
}

func (h *Handlers) RestoreVehicle(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.RestoreVehicle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, v)
}

func (h *Handlers) DeleteVehiclePermanently(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVehiclePermanently(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "deleted"})
}

func (h *Handlers) BulkUploadVehicles(w http.ResponseWriter, r *http.Request) {
	filename, content, err := uploadedCSV(r)
	if err != nil {
		util.WriteError(w, 400, "bad_request", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	result, err := h.svc.BulkUploadVehicles(r.Context(), filename, content)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	util.WriteJSON(w, 200, result)
}

func (h *Handlers) ListVehicleOptions(w http.ResponseWriter, r *http.Request) {
	options, err := h.svc.ListVehicleOptions(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if options == nil {
		options = []models.VehicleOption{}
	}
	util.WriteJSON(w, 200, options)
}

type createOptionRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (h *Handlers) CreateVehicleOption(w http.ResponseWriter, r *http.Request) {
	var req createOptionRequest
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	o, err := h.svc.CreateVehicleOption(r.Context(), req.Type, req.Value)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 201, o)
}

func (h *Handlers) DeleteVehicleOption(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteVehicleOption(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "deleted"})
}
