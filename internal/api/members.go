package api

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"clubroster/internal/middleware"
	"clubroster/internal/models"
	"clubroster/internal/service"
	"clubroster/internal/util"
)

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	q := models.MemberQuery{
		Search:       r.URL.Query().Get("search"),
		MemberNumber: r.URL.Query().Get("member_number"),
	}
	members, err := h.svc.ListMembers(r.Context(), q)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	util.WriteJSON(w, 200, members)
}

func (h *Handlers) CreateMember(w http.ResponseWriter, r *http.Request) {
	var req service.MemberCreate
	if err := util.DecodeJSON(r, &req); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	m, err := h.svc.CreateMember(r.Context(), req)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 201, m)
}

func (h *Handlers) GetMember(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, m)
}

func (h *Handlers) UpdateMember(w http.ResponseWriter, r *http.Request) {
	var patch service.MemberPatch
	if err := util.DecodeJSON(r, &patch); err != nil {
		util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
		return
	}
	m, err := h.svc.UpdateMember(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, m)
}

func (h *Handlers) DeleteMember(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.DeleteMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]any{"status": "deleted", "vehicles_deleted": n})
}

// uploadedCSV pulls the multipart file out of a bulk-upload request.
func uploadedCSV(r *http.Request) (string, []byte, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return "", nil, fmt.Errorf("invalid multipart form")
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, fmt.Errorf("missing file field")
	}
	defer file.Close()
	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return "", nil, fmt.Errorf("unreadable upload")
	}
	return header.Filename, content, nil
}

func (h *Handlers) BulkUploadMembers(w http.ResponseWriter, r *http.Request) {
	filename, content, err := uploadedCSV(r)
	if err != nil {
		util.WriteError(w, 400, "bad_request", err.Error(), middleware.RequestID(r.Context()))
		return
	}
	result, err := h.svc.BulkUploadMembers(r.Context(), filename, content)
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if result.Errors == nil {
		result.Errors = []string{}
	}
	util.WriteJSON(w, 200, result)
}

func (h *Handlers) ExportMembers(w http.ResponseWriter, r *http.Request) {
	var filters models.ExportFilters
	if r.ContentLength > 0 {
		if err := util.DecodeJSON(r, &filters); err != nil {
			util.WriteError(w, 400, "bad_request", "invalid json", middleware.RequestID(r.Context()))
			return
		}
	}
	filename := fmt.Sprintf("members_export_%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := h.svc.ExportMembersCSV(r.Context(), filters, w); err != nil {
		// headers are already out; all we can do is log and cut the stream
		log.Printf("export failed request_id=%s err=%v", middleware.RequestID(r.Context()), err)
	}
}

func (h *Handlers) PrintableList(w http.ResponseWriter, r *http.Request) {
	members, err := h.svc.PrintableList(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	util.WriteJSON(w, 200, members)
}

func (h *Handlers) Suburbs(w http.ResponseWriter, r *http.Request) {
	suburbs, err := h.svc.Suburbs(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if suburbs == nil {
		suburbs = []string{}
	}
	util.WriteJSON(w, 200, map[string][]string{"suburbs": suburbs})
}
