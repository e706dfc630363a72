package viewstate

import (
	"context"
	"strings"
	"sync"

	"cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/rating"

	"github.com/sirupsen/logrus"
)

type DishService interface {
	GetDish(ctx context.Context, name string, nationality domain.Nationality) (*domain.Dish, error)
	SendFeedback(ctx context.Context, name string, nationality domain.Nationality, feedback domain.Feedback) error
}

type RatingAggregator interface {
	Aggregate(ctx context.Context, dishName string) []domain.NationRating
}

// FeedbackReceipt describes a submitted vote. Delivered is false when the
// dish API could not be reached or refused the vote; the submission still
// counts as done for the viewer.
type FeedbackReceipt struct {
	Dish        string             `json:"dish"`
	Nationality domain.Nationality `json:"nationality"`
	Stars       int                `json:"stars"`
	Feedback    domain.Feedback    `json:"feedback"`
	Delivered   bool               `json:"delivered"`
}

// Session drives the view state of one viewer. The lock is never held while
// a request to the dish API is in flight, so a slow fetch does not block
// other transitions.
type Session struct {
	mu    sync.Mutex
	state State

	dishes             DishService
	ratings            RatingAggregator
	defaultNationality domain.Nationality
	log                logrus.FieldLogger
}

func NewSession(dishes DishService, ratings RatingAggregator, defaultNationality domain.Nationality, log logrus.FieldLogger) *Session {
	return RestoreSession(NewState(defaultNationality), dishes, ratings, defaultNationality, log)
}

func RestoreSession(state State, dishes DishService, ratings RatingAggregator, defaultNationality domain.Nationality, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	state = state.Clone()
	state.normalize(defaultNationality)
	return &Session{
		state:              state,
		dishes:             dishes,
		ratings:            ratings,
		defaultNationality: defaultNationality,
		log:                log,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Load fetches the dish shown when the viewer opens. Any failure installs
// the fallback dish.
func (s *Session) Load(ctx context.Context, name string) State {
	name = strings.TrimSpace(name)
	if name == "" {
		name = domain.FallbackDishName
	}

	s.mu.Lock()
	seq := s.state.issueDishRequest()
	s.state.UserStars = 0
	s.mu.Unlock()

	dish, err := s.dishes.GetDish(ctx, name, s.defaultNationality)
	if err != nil {
		s.log.WithField("dish", name).WithError(err).Warn("Using fallback dish")
		fallback := domain.FallbackDish()
		dish = &fallback
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.settleDishRequest(seq) {
		s.state.applyDish(seq, dish)
		s.state.NotFound = false
	}
	return s.state.Clone()
}

// Search looks up a dish by name. A blank query is ignored. A miss or a
// failed request clears the dish and marks the result as not found.
func (s *Session) Search(ctx context.Context, query string) State {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if query == "" {
		defer s.mu.Unlock()
		return s.state.Clone()
	}
	seq := s.state.issueDishRequest()
	s.state.Sequence.LastSearch = seq
	s.state.Search = Searching
	s.state.NotFound = false
	s.state.UserStars = 0
	s.mu.Unlock()

	log := s.log.WithField("dish", query)
	dish, err := s.dishes.GetDish(ctx, query, s.defaultNationality)
	if err != nil {
		log.WithError(err).Info("Search found no dish")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.state.settleDishRequest(seq)
	if applied {
		if err == nil {
			s.state.applyDish(seq, dish)
		} else {
			s.state.applyDish(seq, nil)
		}
		s.state.NotFound = err != nil
	} else {
		log.Debug("Discarding stale search response")
	}

	if seq == s.state.Sequence.LastSearch {
		switch {
		case !applied:
			s.state.Search = SearchIdle
		case err != nil:
			s.state.Search = SearchNotFound
		default:
			s.state.Search = SearchFound
		}
	}
	return s.state.Clone()
}

// OpenCountryPanel switches to country selection and, when a dish is shown,
// recomputes the per-nationality ratings.
func (s *Session) OpenCountryPanel(ctx context.Context) (State, error) {
	s.mu.Lock()
	if err := s.state.requireMode(ModeBrowsing); err != nil {
		defer s.mu.Unlock()
		return s.state.Clone(), err
	}
	s.state.Mode = ModeCountrySelection
	s.state.SelectedCountry = s.state.RatingCountry
	if s.state.Dish == nil {
		defer s.mu.Unlock()
		return s.state.Clone(), nil
	}
	name := s.state.Dish.Name
	s.state.Sequence.RatingsIssued++
	seq := s.state.Sequence.RatingsIssued
	s.state.NationRatings = zeroRatings()
	s.mu.Unlock()

	ratings := s.ratings.Aggregate(ctx, name)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.state.Sequence.RatingsApplied {
		s.state.NationRatings = ratings
		s.state.Sequence.RatingsApplied = seq
	}
	return s.state.Clone(), nil
}

func (s *Session) SelectCountry(nationality domain.Nationality) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.requireMode(ModeCountrySelection); err != nil {
		return s.state.Clone(), err
	}
	if !nationality.Known() {
		return s.state.Clone(), domain.ErrUnknownNationality
	}
	s.state.SelectedCountry = nationality
	return s.state.Clone(), nil
}

// ConfirmCountry returns to browsing. When the selection changed it becomes
// the rating country and the dish is fetched once more under it; a failed
// fetch keeps the current dish.
func (s *Session) ConfirmCountry(ctx context.Context) (State, error) {
	s.mu.Lock()
	if err := s.state.requireMode(ModeCountrySelection); err != nil {
		defer s.mu.Unlock()
		return s.state.Clone(), err
	}
	s.state.Mode = ModeBrowsing
	if s.state.SelectedCountry == s.state.RatingCountry {
		defer s.mu.Unlock()
		return s.state.Clone(), nil
	}
	s.state.RatingCountry = s.state.SelectedCountry
	if s.state.Dish == nil {
		defer s.mu.Unlock()
		return s.state.Clone(), nil
	}
	name := s.state.Dish.Name
	country := s.state.RatingCountry
	seq := s.state.issueDishRequest()
	s.mu.Unlock()

	dish, err := s.dishes.GetDish(ctx, name, country)

	s.mu.Lock()
	defer s.mu.Unlock()
	fresh := s.state.settleDishRequest(seq)
	switch {
	case err != nil:
		s.log.WithFields(logrus.Fields{"dish": name, "nationality": country}).
			WithError(err).Warn("Error fetching dish for country")
	case fresh:
		s.state.applyDish(seq, dish)
	}
	return s.state.Clone(), nil
}

func (s *Session) CancelCountry() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.requireMode(ModeCountrySelection); err != nil {
		return s.state.Clone(), err
	}
	s.state.Mode = ModeBrowsing
	s.state.SelectedCountry = s.state.RatingCountry
	return s.state.Clone(), nil
}

func (s *Session) OpenFeedback() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.requireMode(ModeBrowsing); err != nil {
		return s.state.Clone(), err
	}
	if s.state.Dish == nil {
		return s.state.Clone(), ErrNoDish
	}
	s.state.Mode = ModeFeedbackEntry
	s.state.UserStars = 0
	return s.state.Clone(), nil
}

func (s *Session) PickStars(stars int) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.requireMode(ModeFeedbackEntry); err != nil {
		return s.state.Clone(), err
	}
	if stars < 1 || stars > rating.MaxStars {
		return s.state.Clone(), rating.ErrStarsOutOfRange
	}
	s.state.UserStars = stars
	return s.state.Clone(), nil
}

// SubmitFeedback sends the picked stars as a like or dislike under the
// default nationality and returns to browsing whatever the outcome.
func (s *Session) SubmitFeedback(ctx context.Context) (FeedbackReceipt, error) {
	s.mu.Lock()
	if err := s.state.requireMode(ModeFeedbackEntry); err != nil {
		s.mu.Unlock()
		return FeedbackReceipt{}, err
	}
	if s.state.UserStars == 0 {
		s.mu.Unlock()
		return FeedbackReceipt{}, ErrNoStarsPicked
	}
	if s.state.Dish == nil {
		s.mu.Unlock()
		return FeedbackReceipt{}, ErrNoDish
	}
	s.state.Mode = ModeBrowsing
	stars := s.state.UserStars
	name := s.state.Dish.Name
	s.mu.Unlock()

	feedback, err := rating.FeedbackFor(stars)
	if err != nil {
		return FeedbackReceipt{}, err
	}

	receipt := FeedbackReceipt{
		Dish:        name,
		Nationality: s.defaultNationality,
		Stars:       stars,
		Feedback:    feedback,
		Delivered:   true,
	}
	if err := s.dishes.SendFeedback(ctx, name, s.defaultNationality, feedback); err != nil {
		s.log.WithFields(logrus.Fields{"dish": name, "feedback": feedback}).
			WithError(err).Warn("Feedback was not delivered")
		receipt.Delivered = false
	}
	return receipt, nil
}

func (s *Session) CancelFeedback() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.state.requireMode(ModeFeedbackEntry); err != nil {
		return s.state.Clone(), err
	}
	s.state.Mode = ModeBrowsing
	return s.state.Clone(), nil
}
