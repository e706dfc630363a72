package service

import (
	"context"

	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"
)

type SessionServiceInterface interface {
	Create(ctx context.Context, dishName string) (*domain.SessionView, error)
	Get(ctx context.Context, id string) (*domain.SessionView, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, id, query string) (*domain.SessionView, error)
	OpenCountries(ctx context.Context, id string) (*domain.SessionView, error)
	Countries(ctx context.Context, id, filter string, byStars bool) ([]domain.CountryView, error)
	SelectCountry(ctx context.Context, id, country string) (*domain.SessionView, error)
	ConfirmCountry(ctx context.Context, id string) (*domain.SessionView, error)
	CancelCountry(ctx context.Context, id string) (*domain.SessionView, error)
	OpenFeedback(ctx context.Context, id string) (*domain.SessionView, error)
	PickStars(ctx context.Context, id string, stars int) (*domain.SessionView, error)
	SubmitFeedback(ctx context.Context, id string) (*domain.FeedbackResult, error)
	CancelFeedback(ctx context.Context, id string) (*domain.SessionView, error)
	ShareCode(dishName string) ([]byte, error)
}

// SessionStore keeps view state snapshots so a session outlives the process
// that created it. Load returns domain.ErrSessionNotFound for unknown ids.
type SessionStore interface {
	Save(ctx context.Context, id string, state viewstate.State) error
	Load(ctx context.Context, id string) (viewstate.State, error)
	Delete(ctx context.Context, id string) error
}

type FeedbackPublisher interface {
	PublishFeedback(ctx context.Context, event domain.FeedbackEvent) error
}

type ShareCodeGenerator interface {
	Generate(dishName string) ([]byte, error)
}

var _ SessionServiceInterface = (*SessionService)(nil)
