package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/service"
	"github.com/efreitasn/matchingengine/internal/store"
)

// InstrumentHandler handles HTTP requests for instrument endpoints.
type InstrumentHandler struct {
	exec  CommandSubmitter
	books *store.BookStore
}

// NewInstrumentHandler creates a new InstrumentHandler.
func NewInstrumentHandler(exec CommandSubmitter, books *store.BookStore) *InstrumentHandler {
	return &InstrumentHandler{exec: exec, books: books}
}

// createInstrumentRequest is the JSON request body for POST /instruments.
type createInstrumentRequest struct {
	SecurityID string `json:"securityId"`
	Symbol     string `json:"symbol"`
}

// instrumentResponse is the JSON response for GET /instruments/{securityId}.
type instrumentResponse struct {
	SecurityID  string        `json:"securityId"`
	Symbol      string        `json:"symbol"`
	MarketPrice *domain.Price `json:"marketPrice"`
}

// Create handles POST /instruments.
func (h *InstrumentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createInstrumentRequest
	if err := ParseJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	cmd := domain.CreateInstrument{SecurityID: req.SecurityID, Symbol: req.Symbol}
	if err := service.ValidateCreateInstrument(cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	if err := h.exec.Submit(r.Context(), cmd); err != nil {
		writeCommandError(w, err)
		return
	}
	WriteAccepted(w, "Instrument creation submitted for security: "+cmd.SecurityID)
}

// Get handles GET /instruments/{securityId}.
func (h *InstrumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	securityID := chi.URLParam(r, "securityId")

	book, ok := h.books.Find(securityID)
	if !ok {
		WriteError(w, http.StatusNotFound, "not_found", "Instrument not found")
		return
	}

	inst := book.Instrument()
	resp := instrumentResponse{SecurityID: inst.SecurityID, Symbol: inst.Symbol}
	if p, ok := inst.MarketPrice(); ok {
		resp.MarketPrice = &p
	}
	WriteJSON(w, http.StatusOK, resp)
}

// writeCommandError maps validation and submission failures to HTTP.
func writeCommandError(w http.ResponseWriter, err error) {
	var valErr *domain.ValidationError
	switch {
	case errors.As(err, &valErr):
		WriteError(w, http.StatusBadRequest, "validation_error", valErr.Message)
	case errors.Is(err, domain.ErrExecutorClosed):
		WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Engine is shutting down")
	default:
		WriteError(w, http.StatusServiceUnavailable, "service_unavailable", "Command could not be queued")
	}
}
