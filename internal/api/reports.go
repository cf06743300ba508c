package api

import (
	"net/http"

	"clubroster/internal/report"
	"clubroster/internal/util"
)

func (h *Handlers) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.DashboardStats(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, stats)
}

func (h *Handlers) MemberReport(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.MemberReport(r.Context(), r.URL.Query().Get("filter_type"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	if rows == nil {
		rows = []report.Row{}
	}
	util.WriteJSON(w, 200, map[string]any{"members": rows, "count": len(rows)})
}

func (h *Handlers) ContactList(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.ContactList(r.Context(), r.URL.Query().Get("list_type"), r.URL.Query().Get("interest"))
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, list)
}

func (h *Handlers) MarkExpiredUnfinancial(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkExpiredUnfinancial(r.Context())
	if err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]int{"updated_count": n})
}

func (h *Handlers) ClearAllData(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAllData(r.Context(), r.URL.Query().Get("confirm")); err != nil {
		h.writeErr(w, r, err)
		return
	}
	util.WriteJSON(w, 200, map[string]string{"status": "cleared"})
}
