package report

// HTTP handlers for the visibility service.
//
// All routes expect an x-user-id header forwarded by the Gateway.
//
// Routes:
//
//	GET  /reports/candidates     → one report page with phone decisions
//	POST /visibility/evaluate    → decisions for a caller-supplied snapshot
//	POST /visibility/contact     → messaging link for a visible number

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"jobmate/visibility-service/internal/visibility"
)

// maxBodyBytes bounds snapshot uploads.
const maxBodyBytes = 4 << 20

// Handler exposes a Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all visibility routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/reports/candidates", h.handleReport)
	mux.HandleFunc("/visibility/evaluate", h.handleEvaluate)
	mux.HandleFunc("/visibility/contact", h.handleContact)
}

// handleReport handles GET /reports/candidates?client=&status=&offset=&limit=
func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("x-user-id") == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	q := r.URL.Query()
	f := Filter{ClientName: q.Get("client"), Status: q.Get("status")}
	var err error
	if f.Offset, err = intParam(q.Get("offset")); err != nil {
		jsonError(w, "offset must be an integer", http.StatusBadRequest)
		return
	}
	if f.Limit, err = intParam(q.Get("limit")); err != nil {
		jsonError(w, "limit must be an integer", http.StatusBadRequest)
		return
	}

	rep, err := h.svc.CandidateReport(r.Context(), f)
	if err != nil {
		writeServiceError(w, "candidateReport", err)
		return
	}
	jsonOK(w, rep)
}

// handleEvaluate handles POST /visibility/evaluate
func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if r.Header.Get("x-user-id") == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body EvaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	resp, err := h.svc.Evaluate(r.Context(), body)
	if err != nil {
		writeServiceError(w, "evaluate", err)
		return
	}
	jsonOK(w, resp)
}

// handleContact handles POST /visibility/contact
func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return
	}

	var body ContactRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if body.JobID == "" && body.CandidateID == "" {
		jsonError(w, "body must contain jobId or candidateId", http.StatusBadRequest)
		return
	}

	target, err := h.svc.OpenContact(r.Context(), userID, body)
	if err != nil {
		writeServiceError(w, "openContact", err)
		return
	}
	jsonOK(w, target)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// writeServiceError maps service errors to HTTP statuses.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		jsonError(w, ve.Msg, http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, visibility.ErrMaskedContact):
		jsonError(w, visibility.MaskedContactMessage, http.StatusForbidden)
	default:
		log.Printf("[report] %s error: %v", op, err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

func jsonOK(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
