package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"budgetbuddy/internal/http/respond"
	"budgetbuddy/internal/ledger"
	"budgetbuddy/internal/middleware"
	"budgetbuddy/internal/models"
	"budgetbuddy/internal/models/dto"
	"budgetbuddy/internal/storage"
)

// LedgerHandler owns the income, expense, and summary endpoints. The two
// entry kinds share one code path; only the route prefix and wire labels
// differ.
type LedgerHandler struct {
	svc *ledger.Service
}

// NewLedgerHandler constructs the handler.
func NewLedgerHandler(svc *ledger.Service) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// Register attaches ledger routes to the mux. Every route runs behind the
// given auth wrapper.
func (h *LedgerHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.Handler) {
	for _, k := range []models.Kind{models.KindIncome, models.KindExpense} {
		kind := k
		prefix := "/" + string(kind)
		mux.Handle("POST "+prefix, protect(h.create(kind)))
		mux.Handle("GET "+prefix, protect(h.list(kind)))
		mux.Handle("PUT "+prefix+"/{id}", protect(h.update(kind)))
		mux.Handle("DELETE "+prefix+"/{id}", protect(h.delete(kind)))
	}
	mux.Handle("GET /summary", protect(h.summary))
}

// label returns the capitalized kind name used in response messages.
func label(kind models.Kind) string {
	if kind == models.KindExpense {
		return "Expense"
	}
	return "Income"
}

func (h *LedgerHandler) create(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		var req dto.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		amount := req.AmountFor(kind)
		if req.Source == nil || amount == nil {
			respond.Error(w, http.StatusBadRequest, "source and amount are required")
			return
		}

		entry, err := h.svc.Add(r.Context(), kind, identity.UserID, *req.Source, *amount)
		if err != nil {
			h.writeLedgerError(w, kind, err)
			return
		}

		respond.JSON(w, http.StatusCreated, map[string]any{
			"message":    label(kind) + " saved",
			string(kind): dto.ViewEntry(kind, entry),
		})
	}
}

func (h *LedgerHandler) list(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		entries, total, err := h.svc.List(r.Context(), kind, identity.UserID)
		if err != nil {
			h.writeLedgerError(w, kind, err)
			return
		}

		respond.JSON(w, http.StatusOK, map[string]any{
			string(kind) + "s": dto.ViewEntries(kind, entries),
			"total":            total,
		})
	}
}

func (h *LedgerHandler) update(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		id, err := parseID(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		var req dto.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
			return
		}

		if err := h.svc.Update(r.Context(), kind, identity.UserID, id, req.Source, req.AmountFor(kind)); err != nil {
			h.writeLedgerError(w, kind, err)
			return
		}
		respond.Message(w, http.StatusOK, label(kind)+" updated")
	}
}

func (h *LedgerHandler) delete(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, ok := middleware.IdentityFrom(r.Context())
		if !ok {
			respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
			return
		}

		id, err := parseID(r)
		if err != nil {
			respond.Error(w, http.StatusBadRequest, "invalid id")
			return
		}

		if err := h.svc.Delete(r.Context(), kind, identity.UserID, id); err != nil {
			h.writeLedgerError(w, kind, err)
			return
		}
		respond.Message(w, http.StatusOK, label(kind)+" deleted")
	}
}

func (h *LedgerHandler) summary(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "Access denied. No token provided.")
		return
	}

	summary, err := h.svc.Summary(r.Context(), identity.UserID)
	if err != nil {
		log.Printf("summary error: %v", err)
		respond.Error(w, http.StatusInternalServerError, "failed to compute summary")
		return
	}
	respond.JSON(w, http.StatusOK, summary)
}

func (h *LedgerHandler) writeLedgerError(w http.ResponseWriter, kind models.Kind, err error) {
	switch {
	case errors.Is(err, ledger.ErrSourceRequired), errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrNothingToUpdate):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		respond.Error(w, http.StatusNotFound, label(kind)+" not found")
	default:
		log.Printf("ledger %s error: %v", kind, err)
		respond.Error(w, http.StatusInternalServerError, "storage error")
	}
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
