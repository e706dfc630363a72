package viewstate

import (
	"errors"

	"cibo-compass/dishcore/domain"
)

var (
	ErrInvalidTransition = errors.New("invalid view transition")
	ErrNoStarsPicked     = errors.New("pick a star rating before submitting")
	ErrNoDish            = errors.New("no dish loaded")
)

// Mode is the active screen of a viewer. Exactly one mode is active at a
// time; the search flag is tracked separately.
type Mode string

const (
	ModeBrowsing         Mode = "browsing"
	ModeCountrySelection Mode = "country-selection"
	ModeFeedbackEntry    Mode = "feedback-entry"
)

type SearchStatus string

const (
	SearchIdle     SearchStatus = "idle"
	Searching      SearchStatus = "searching"
	SearchFound    SearchStatus = "found"
	SearchNotFound SearchStatus = "not-found"
)

// Sequence numbers requests that write the dish snapshot or the nation
// ratings. A response is applied only when it is newer than the last one
// applied.
type Sequence struct {
	DishIssued     uint64 `json:"dish_issued"`
	DishApplied    uint64 `json:"dish_applied"`
	LastSearch     uint64 `json:"last_search"`
	RatingsIssued  uint64 `json:"ratings_issued"`
	RatingsApplied uint64 `json:"ratings_applied"`
}

type State struct {
	Mode            Mode                  `json:"mode"`
	Dish            *domain.Dish          `json:"dish,omitempty"`
	RatingCountry   domain.Nationality    `json:"rating_country"`
	SelectedCountry domain.Nationality    `json:"selected_country"`
	UserStars       int                   `json:"user_stars"`
	NationRatings   []domain.NationRating `json:"nation_ratings"`
	Search          SearchStatus          `json:"search"`
	NotFound        bool                  `json:"not_found"`
	Loading         bool                  `json:"loading"`
	Sequence        Sequence              `json:"sequence"`
}

func NewState(ratingCountry domain.Nationality) State {
	return State{
		Mode:            ModeBrowsing,
		RatingCountry:   ratingCountry,
		SelectedCountry: ratingCountry,
		NationRatings:   zeroRatings(),
		Search:          SearchIdle,
	}
}

func (s State) Clone() State {
	out := s
	if s.Dish != nil {
		dish := s.Dish.Clone()
		out.Dish = &dish
	}
	out.NationRatings = append([]domain.NationRating{}, s.NationRatings...)
	return out
}

// normalize repairs a state decoded from storage. Requests that were in
// flight when the snapshot was taken are gone, so nothing is loading.
func (s *State) normalize(defaultNationality domain.Nationality) {
	switch s.Mode {
	case ModeBrowsing, ModeCountrySelection, ModeFeedbackEntry:
	default:
		s.Mode = ModeBrowsing
	}
	if s.Search == "" || s.Search == Searching {
		s.Search = SearchIdle
	}
	s.Loading = false
	if s.RatingCountry == "" {
		s.RatingCountry = defaultNationality
	}
	if s.SelectedCountry == "" {
		s.SelectedCountry = s.RatingCountry
	}
	if s.NationRatings == nil {
		s.NationRatings = zeroRatings()
	}
	if s.Dish != nil {
		s.Dish.Normalize()
	}
}

func (s *State) requireMode(mode Mode) error {
	if s.Mode != mode {
		return ErrInvalidTransition
	}
	return nil
}

func (s *State) issueDishRequest() uint64 {
	s.Sequence.DishIssued++
	s.Loading = true
	return s.Sequence.DishIssued
}

// settleDishRequest reports whether the response numbered seq may replace
// the snapshot, and clears the loading flag once the newest request settles.
func (s *State) settleDishRequest(seq uint64) bool {
	if seq == s.Sequence.DishIssued {
		s.Loading = false
	}
	return seq > s.Sequence.DishApplied
}

func (s *State) applyDish(seq uint64, dish *domain.Dish) {
	s.Dish = dish
	s.Sequence.DishApplied = seq
}

func zeroRatings() []domain.NationRating {
	nationalities := domain.Nationalities()
	ratings := make([]domain.NationRating, len(nationalities))
	for i, n := range nationalities {
		ratings[i] = domain.NationRating{Nationality: n}
	}
	return ratings
}
