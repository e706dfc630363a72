// Package remotetest provides an in-process stand-in for the remote dish API.
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"cibo-compass/dishcore/domain"

	"github.com/gorilla/mux"
)

type Request struct {
	Method      string
	Dish        string
	Nationality string
	Feedback    domain.Feedback
}

// Server serves GET /v1/dishes/{dishName} and POST
// /v1/dishes/{dishName}/feedback from an in-memory catalogue.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	dishes   map[string]domain.Dish
	votes    map[string]map[string][2]int
	broken   map[string]bool
	rejected map[string]bool
	delays   map[string]time.Duration
	requests []Request
}

func NewServer() *Server {
	s := &Server{
		dishes:   map[string]domain.Dish{},
		votes:    map[string]map[string][2]int{},
		broken:   map[string]bool{},
		rejected: map[string]bool{},
		delays:   map[string]time.Duration{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/v1/dishes/{dishName}", s.getDish).Methods("GET")
	r.HandleFunc("/v1/dishes/{dishName}/feedback", s.postFeedback).Methods("POST")
	s.Server = httptest.NewServer(r)
	return s
}

func (s *Server) BaseURL() string { return s.URL + "/v1" }

func (s *Server) AddDish(dish domain.Dish) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dishes[dish.Name] = dish
}

// SetVotes sets like/dislike counts of a dish for one nationality.
func (s *Server) SetVotes(dish string, nationality domain.Nationality, like, dislike int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.votes[dish] == nil {
		s.votes[dish] = map[string][2]int{}
	}
	s.votes[dish][string(nationality)] = [2]int{like, dislike}
}

// BreakConnection makes every request scoped to nationality fail at the
// transport level.
func (s *Server) BreakConnection(nationality domain.Nationality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broken[string(nationality)] = true
}

// RejectNationality makes requests scoped to nationality answer 500.
func (s *Server) RejectNationality(nationality domain.Nationality) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[string(nationality)] = true
}

func (s *Server) Delay(nationality domain.Nationality, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[string(nationality)] = d
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request{}, s.requests...)
}

// DishFetches counts GET requests for dish scoped to nationality.
func (s *Server) DishFetches(dish string, nationality domain.Nationality) int {
	count := 0
	for _, req := range s.Requests() {
		if req.Method == http.MethodGet && req.Dish == dish && req.Nationality == string(nationality) {
			count++
		}
	}
	return count
}

func (s *Server) Votes(dish string, nationality domain.Nationality) (like, dislike int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.votes[dish][string(nationality)]
	return v[0], v[1]
}

func (s *Server) intercept(w http.ResponseWriter, r *http.Request, req Request) bool {
	nationality := r.Header.Get("X-User-Nationality")

	s.mu.Lock()
	s.requests = append(s.requests, req)
	broken := s.broken[nationality]
	rejected := s.rejected[nationality]
	delay := s.delays[nationality]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if broken {
		if hj, ok := w.(http.Hijacker); ok {
			if conn, _, err := hj.Hijack(); err == nil {
				conn.Close()
				return true
			}
		}
	}
	if rejected {
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"error": "internal error", "success": false})
		return true
	}
	if nationality == "" {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "resource not found", "success": false})
		return true
	}
	return false
}

func (s *Server) getDish(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dishName"]
	nationality := r.Header.Get("X-User-Nationality")
	if s.intercept(w, r, Request{Method: r.Method, Dish: name, Nationality: nationality}) {
		return
	}

	s.mu.Lock()
	dish, ok := s.dishes[name]
	votes := s.votes[name][nationality]
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "resource not found", "success": false})
		return
	}

	dish.Like, dish.Dislike = votes[0], votes[1]
	dish.Nationality = nationality
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "data": dish})
}

func (s *Server) postFeedback(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["dishName"]
	nationality := r.Header.Get("X-User-Nationality")

	var input struct {
		Feedback domain.Feedback `json:"feedback"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "invalid request body", "success": false})
		return
	}
	if s.intercept(w, r, Request{Method: r.Method, Dish: name, Nationality: nationality, Feedback: input.Feedback}) {
		return
	}
	if input.Feedback != domain.FeedbackLike && input.Feedback != domain.FeedbackDislike {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"error": "feedback must be either 'like' or 'dislike'", "success": false})
		return
	}

	s.mu.Lock()
	_, ok := s.dishes[name]
	if ok {
		if s.votes[name] == nil {
			s.votes[name] = map[string][2]int{}
		}
		v := s.votes[name][nationality]
		if input.Feedback == domain.FeedbackLike {
			v[0]++
		} else {
			v[1]++
		}
		s.votes[name][nationality] = v
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": "resource not found", "success": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "message": "Feedback recorded successfully"})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
