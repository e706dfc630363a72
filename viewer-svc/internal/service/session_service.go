package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"cibo-compass/dishcore/aggregate"
	core "cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/rating"
	"cibo-compass/dishcore/remote"
	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEmptyDishName = errors.New("dish name is required")

type Config struct {
	DefaultNationality core.Nationality
	ImagesBaseURL      string
}

// SessionService owns the live viewer sessions. Every operation writes the
// resulting state to the store, and an id that is not live is restored from
// its stored snapshot. Store access happens under mu so a delete cannot
// interleave with a save or a restore.
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*viewstate.Session

	dishes    viewstate.DishService
	ratings   viewstate.RatingAggregator
	store     SessionStore
	publisher FeedbackPublisher
	share     ShareCodeGenerator
	cfg       Config
	log       logrus.FieldLogger
}

func NewSessionService(dishes viewstate.DishService, ratings viewstate.RatingAggregator, store SessionStore,
	publisher FeedbackPublisher, share ShareCodeGenerator, cfg Config, log logrus.FieldLogger) *SessionService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SessionService{
		sessions:  map[string]*viewstate.Session{},
		dishes:    dishes,
		ratings:   ratings,
		store:     store,
		publisher: publisher,
		share:     share,
		cfg:       cfg,
		log:       log,
	}
}

func (s *SessionService) Create(ctx context.Context, dishName string) (*domain.SessionView, error) {
	id := uuid.NewString()
	session := viewstate.NewSession(s.dishes, s.ratings, s.cfg.DefaultNationality, s.log.WithField("session", id))

	s.mu.Lock()
	s.sessions[id] = session
	s.mu.Unlock()

	state := session.Load(ctx, dishName)
	s.persist(ctx, id, session)
	s.log.WithFields(logrus.Fields{"session": id, "dish": dishName}).Info("Session created")
	return s.view(id, state), nil
}

func (s *SessionService) Get(ctx context.Context, id string) (*domain.SessionView, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.view(id, session.State()), nil
}

func (s *SessionService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, live := s.sessions[id]
	delete(s.sessions, id)

	err := s.store.Delete(ctx, id)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrSessionNotFound):
		if live {
			return nil
		}
		return domain.ErrSessionNotFound
	default:
		return fmt.Errorf("failed to delete session: %w", err)
	}
}

func (s *SessionService) Search(ctx context.Context, id, query string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.Search(ctx, query), nil
	})
}

func (s *SessionService) OpenCountries(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.OpenCountryPanel(ctx)
	})
}

// Countries lists the nation ratings of the session, narrowed by filter and
// optionally ordered by stars.
func (s *SessionService) Countries(ctx context.Context, id, filter string, byStars bool) ([]domain.CountryView, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	ratings := aggregate.Filter(session.State().NationRatings, filter)
	if byStars {
		ratings = aggregate.SortByStars(ratings)
	}
	return countryViews(ratings), nil
}

func (s *SessionService) SelectCountry(ctx context.Context, id, country string) (*domain.SessionView, error) {
	nationality, err := core.ParseNationality(country)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.SelectCountry(nationality)
	})
}

func (s *SessionService) ConfirmCountry(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.ConfirmCountry(ctx)
	})
}

func (s *SessionService) CancelCountry(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.CancelCountry()
	})
}

func (s *SessionService) OpenFeedback(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.OpenFeedback()
	})
}

func (s *SessionService) PickStars(ctx context.Context, id string, stars int) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.PickStars(stars)
	})
}

// SubmitFeedback always thanks the viewer once stars are picked, whether or
// not the dish API accepted the vote.
func (s *SessionService) SubmitFeedback(ctx context.Context, id string) (*domain.FeedbackResult, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	receipt, err := session.SubmitFeedback(ctx)
	s.persist(ctx, id, session)
	if err != nil {
		return nil, err
	}

	if s.publisher != nil {
		event := domain.FeedbackEvent{
			Type:        "dish_feedback",
			Dish:        receipt.Dish,
			Nationality: string(receipt.Nationality),
			Feedback:    string(receipt.Feedback),
			Stars:       receipt.Stars,
			Delivered:   receipt.Delivered,
			Timestamp:   time.Now(),
		}
		if err := s.publisher.PublishFeedback(ctx, event); err != nil {
			s.log.WithFields(logrus.Fields{"session": id, "dish": receipt.Dish}).
				WithError(err).Warn("Failed to publish feedback event")
		}
	}

	return &domain.FeedbackResult{
		Message:   domain.FeedbackThanks,
		Delivered: receipt.Delivered,
		Session:   s.view(id, session.State()),
	}, nil
}

func (s *SessionService) CancelFeedback(ctx context.Context, id string) (*domain.SessionView, error) {
	return s.apply(ctx, id, func(session *viewstate.Session) (viewstate.State, error) {
		return session.CancelFeedback()
	})
}

func (s *SessionService) ShareCode(dishName string) ([]byte, error) {
	dishName = strings.TrimSpace(dishName)
	if dishName == "" {
		return nil, ErrEmptyDishName
	}
	code, err := s.share.Generate(dishName)
	if err != nil {
		return nil, fmt.Errorf("failed to generate share code: %w", err)
	}
	return code, nil
}

func (s *SessionService) apply(ctx context.Context, id string, op func(*viewstate.Session) (viewstate.State, error)) (*domain.SessionView, error) {
	session, err := s.lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	state, err := op(session)
	s.persist(ctx, id, session)
	if err != nil {
		return nil, err
	}
	return s.view(id, state), nil
}

func (s *SessionService) lookup(ctx context.Context, id string) (*viewstate.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}

	state, err := s.store.Load(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}

	session := viewstate.RestoreSession(state, s.dishes, s.ratings, s.cfg.DefaultNationality, s.log.WithField("session", id))
	s.sessions[id] = session
	s.log.WithField("session", id).Info("Session restored from store")
	return session, nil
}

// persist saves the snapshot of a session that is still registered. A
// session deleted while one of its operations was in flight stays deleted.
func (s *SessionService) persist(ctx context.Context, id string, session *viewstate.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions[id] != session {
		return
	}
	if err := s.store.Save(ctx, id, session.State()); err != nil {
		s.log.WithField("session", id).WithError(err).Warn("Failed to save session")
	}
}

func (s *SessionService) view(id string, state viewstate.State) *domain.SessionView {
	view := &domain.SessionView{
		ID:              id,
		Mode:            string(state.Mode),
		RatingCountry:   state.RatingCountry.Label(),
		RatingFlag:      state.RatingCountry.Flag(),
		SelectedCountry: state.SelectedCountry.Label(),
		UserStars:       state.UserStars,
		NationRatings:   countryViews(state.NationRatings),
		Search:          string(state.Search),
		NotFound:        state.NotFound,
		Loading:         state.Loading,
	}
	if state.Dish != nil {
		view.Dish = s.dishView(*state.Dish)
	}
	return view
}

func (s *SessionService) dishView(dish core.Dish) *domain.DishView {
	ingredients := make([]domain.IngredientView, 0, len(dish.Ingredients))
	for _, ingredient := range dish.Ingredients {
		ingredients = append(ingredients, domain.IngredientView{
			ID:   ingredient.ID,
			Name: ingredient.Name,
			Img:  remote.ResolveImageURL(s.cfg.ImagesBaseURL, ingredient.Img),
		})
	}
	return &domain.DishView{
		Name:        dish.Name,
		Img:         remote.ResolveImageURL(s.cfg.ImagesBaseURL, dish.Img),
		Description: dish.Description,
		Like:        dish.Like,
		Dislike:     dish.Dislike,
		Stars:       rating.DishStars(dish),
		Badges:      core.BadgesFor(dish.Name),
		Ingredients: ingredients,
	}
}

func countryViews(ratings []core.NationRating) []domain.CountryView {
	views := make([]domain.CountryView, 0, len(ratings))
	for _, r := range ratings {
		views = append(views, domain.CountryView{
			Nationality: r.Nationality.Label(),
			Flag:        r.Nationality.Flag(),
			Stars:       r.Stars,
		})
	}
	return views
}
