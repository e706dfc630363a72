package mocks

import (
	"context"

	"cibo-compass/viewer-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type SessionServiceInterface struct {
	mock.Mock
}

func NewSessionServiceInterface(t testingT) *SessionServiceInterface {
	m := &SessionServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func sessionView(ret mock.Arguments) (*domain.SessionView, error) {
	view, _ := ret.Get(0).(*domain.SessionView)
	return view, ret.Error(1)
}

func (m *SessionServiceInterface) Create(ctx context.Context, dishName string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, dishName))
}

func (m *SessionServiceInterface) Get(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SessionServiceInterface) Search(ctx context.Context, id, query string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id, query))
}

func (m *SessionServiceInterface) OpenCountries(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) Countries(ctx context.Context, id, filter string, byStars bool) ([]domain.CountryView, error) {
	ret := m.Called(ctx, id, filter, byStars)
	countries, _ := ret.Get(0).([]domain.CountryView)
	return countries, ret.Error(1)
}

func (m *SessionServiceInterface) SelectCountry(ctx context.Context, id, country string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id, country))
}

func (m *SessionServiceInterface) ConfirmCountry(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) CancelCountry(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) OpenFeedback(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) PickStars(ctx context.Context, id string, stars int) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id, stars))
}

func (m *SessionServiceInterface) SubmitFeedback(ctx context.Context, id string) (*domain.FeedbackResult, error) {
	ret := m.Called(ctx, id)
	result, _ := ret.Get(0).(*domain.FeedbackResult)
	return result, ret.Error(1)
}

func (m *SessionServiceInterface) CancelFeedback(ctx context.Context, id string) (*domain.SessionView, error) {
	return sessionView(m.Called(ctx, id))
}

func (m *SessionServiceInterface) ShareCode(dishName string) ([]byte, error) {
	ret := m.Called(dishName)
	code, _ := ret.Get(0).([]byte)
	return code, ret.Error(1)
}
