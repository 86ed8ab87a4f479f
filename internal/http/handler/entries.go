package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"yeardiary/internal/diary"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
)

type EntryHandler struct {
	Store    diary.Store
	Validate *Validator
	Log      *log.Logger
}

type listQuery struct {
	StartDate string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate   string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := listQuery{
		StartDate: strings.TrimSpace(r.URL.Query().Get("startDate")),
		EndDate:   strings.TrimSpace(r.URL.Query().Get("endDate")),
	}
	if err := h.Validate.Struct(q); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	entries, err := h.Store.List(r.Context(), identity(r).UserID, diary.Range{Start: q.StartDate, End: q.EndDate})
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	if entries == nil {
		entries = []diary.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

type contentResp struct {
	Content string `json:"content"`
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := h.Validate.Var("date", date, "required,"+dateRule); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	content, err := h.Store.Get(r.Context(), identity(r).UserID, date)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, contentResp{Content: content})
}

type saveEntryReq struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Content string `json:"content"`
}

type savedResp struct {
	Message string `json:"message"`
	Date    string `json:"date,omitempty"`
	Content string `json:"content,omitempty"`
}

// Save upserts an entry. Content that is empty after trimming deletes it.
func (h *EntryHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req saveEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Date = strings.TrimSpace(req.Date)
	if err := h.Validate.Struct(req); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	owner := identity(r).UserID
	stored, err := h.Store.Upsert(r.Context(), owner, req.Date, req.Content)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	if stored == "" {
		h.Log.Debug("entry deleted by empty save", "user_id", owner, "date", req.Date)
		writeJSON(w, http.StatusOK, savedResp{Message: "entry deleted"})
		return
	}

	h.Log.Debug("entry saved", "user_id", owner, "date", req.Date)
	writeJSON(w, http.StatusOK, savedResp{Message: "entry saved", Date: req.Date, Content: stored})
}

func (h *EntryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	if err := h.Validate.Var("date", date, "required,"+dateRule); err != nil {
		fail(w, r, h.Log, err)
		return
	}

	if err := h.Store.Delete(r.Context(), identity(r).UserID, date); err != nil {
		fail(w, r, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, savedResp{Message: "entry deleted"})
}

func (h *EntryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Store.YearlyStats(r.Context(), identity(r).UserID)
	if err != nil {
		fail(w, r, h.Log, err)
		return
	}
	if stats == nil {
		stats = []diary.YearStat{}
	}
	writeJSON(w, http.StatusOK, stats)
}
