package handlers

import (
	"encoding/json"
	"net/http"

	"budgetbuddy/internal/advisor"
	"budgetbuddy/internal/http/respond"
	"budgetbuddy/internal/models/dto"
)

// RecommendationHandler owns the affordability endpoint.
type RecommendationHandler struct {
	engine *advisor.Engine
}

// NewRecommendationHandler constructs the handler.
func NewRecommendationHandler(engine *advisor.Engine) *RecommendationHandler {
	return &RecommendationHandler{engine: engine}
}

// Register attaches the recommendation route behind the auth wrapper.
func (h *RecommendationHandler) Register(mux *http.ServeMux, protect func(http.HandlerFunc) http.Handler) {
	mux.Handle("POST /recommendation", protect(h.handleRecommendation))
}

func (h *RecommendationHandler) handleRecommendation(w http.ResponseWriter, r *http.Request) {
	var req dto.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	if req.Income == nil || req.Expenses == nil || req.ItemPrice == nil {
		respond.Error(w, http.StatusBadRequest, "income, expenses, and itemPrice are required")
		return
	}

	rec := h.engine.Recommend(r.Context(), *req.Income, *req.Expenses, *req.ItemPrice)
	respond.JSON(w, http.StatusOK, rec)
}
