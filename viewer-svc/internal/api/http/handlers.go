package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	core "cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/rating"
	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"
	"cibo-compass/viewer-svc/internal/service"

	"github.com/gorilla/mux"
)

type Handler struct {
	Sessions service.SessionServiceInterface
}

func NewHandler(sessions service.SessionServiceInterface) *Handler {
	return &Handler{Sessions: sessions}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")
	r.HandleFunc("/api/nationalities", h.getNationalities).Methods("GET")

	r.HandleFunc("/api/sessions", h.createSession).Methods("POST")
	r.HandleFunc("/api/sessions/{id}", h.getSession).Methods("GET")
	r.HandleFunc("/api/sessions/{id}", h.deleteSession).Methods("DELETE")
	r.HandleFunc("/api/sessions/{id}/search", h.search).Methods("POST")

	r.HandleFunc("/api/sessions/{id}/countries", h.getCountries).Methods("GET")
	r.HandleFunc("/api/sessions/{id}/countries/open", h.openCountries).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/countries/select", h.selectCountry).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/countries/confirm", h.confirmCountry).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/countries/cancel", h.cancelCountry).Methods("POST")

	r.HandleFunc("/api/sessions/{id}/feedback/open", h.openFeedback).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/feedback/stars", h.pickStars).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/feedback/submit", h.submitFeedback).Methods("POST")
	r.HandleFunc("/api/sessions/{id}/feedback/cancel", h.cancelFeedback).Methods("POST")

	r.HandleFunc("/api/dishes/{name}/share.png", h.getShareCode).Methods("GET")
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "viewer-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) getNationalities(w http.ResponseWriter, r *http.Request) {
	nationalities := core.Nationalities()
	views := make([]domain.CountryView, 0, len(nationalities))
	for _, n := range nationalities {
		views = append(views, domain.CountryView{Nationality: n.Label(), Flag: n.Flag()})
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) createSession(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Dish string `json:"dish"`
	}
	if err := decodeOptional(r, &payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	view, err := h.Sessions.Create(r.Context(), payload.Dish)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.Get(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	view, err := h.Sessions.Search(r.Context(), mux.Vars(r)["id"], payload.Query)
	respond(w, view, err)
}

func (h *Handler) getCountries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	countries, err := h.Sessions.Countries(r.Context(), mux.Vars(r)["id"], query.Get("filter"), query.Get("sort") == "stars")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

func (h *Handler) openCountries(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.OpenCountries(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) selectCountry(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	view, err := h.Sessions.SelectCountry(r.Context(), mux.Vars(r)["id"], payload.Country)
	respond(w, view, err)
}

func (h *Handler) confirmCountry(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.ConfirmCountry(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) cancelCountry(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.CancelCountry(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) openFeedback(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.OpenFeedback(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) pickStars(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Stars int `json:"stars"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	view, err := h.Sessions.PickStars(r.Context(), mux.Vars(r)["id"], payload.Stars)
	respond(w, view, err)
}

func (h *Handler) submitFeedback(w http.ResponseWriter, r *http.Request) {
	result, err := h.Sessions.SubmitFeedback(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) cancelFeedback(w http.ResponseWriter, r *http.Request) {
	view, err := h.Sessions.CancelFeedback(r.Context(), mux.Vars(r)["id"])
	respond(w, view, err)
}

func (h *Handler) getShareCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.Sessions.ShareCode(mux.Vars(r)["name"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	w.Write(code)
}

func respond(w http.ResponseWriter, view *domain.SessionView, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, viewstate.ErrInvalidTransition), errors.Is(err, viewstate.ErrNoDish):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, viewstate.ErrNoStarsPicked),
		errors.Is(err, rating.ErrStarsOutOfRange),
		errors.Is(err, core.ErrUnknownNationality),
		errors.Is(err, service.ErrEmptyDishName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// decodeOptional accepts an empty body.
func decodeOptional(r *http.Request, v interface{}) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
