package mocks

import (
	"context"

	core "cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/viewstate"
	"cibo-compass/viewer-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type SessionStore struct {
	mock.Mock
}

func NewSessionStore(t testingT) *SessionStore {
	m := &SessionStore{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *SessionStore) Save(ctx context.Context, id string, state viewstate.State) error {
	return m.Called(ctx, id, state).Error(0)
}

func (m *SessionStore) Load(ctx context.Context, id string) (viewstate.State, error) {
	ret := m.Called(ctx, id)
	state, _ := ret.Get(0).(viewstate.State)
	return state, ret.Error(1)
}

func (m *SessionStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type FeedbackPublisher struct {
	mock.Mock
}

func NewFeedbackPublisher(t testingT) *FeedbackPublisher {
	m := &FeedbackPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *FeedbackPublisher) PublishFeedback(ctx context.Context, event domain.FeedbackEvent) error {
	return m.Called(ctx, event).Error(0)
}

type ShareCodeGenerator struct {
	mock.Mock
}

func NewShareCodeGenerator(t testingT) *ShareCodeGenerator {
	m := &ShareCodeGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ShareCodeGenerator) Generate(dishName string) ([]byte, error) {
	ret := m.Called(dishName)
	code, _ := ret.Get(0).([]byte)
	return code, ret.Error(1)
}

type DishService struct {
	mock.Mock
}

func NewDishService(t testingT) *DishService {
	m := &DishService{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DishService) GetDish(ctx context.Context, name string, nationality core.Nationality) (*core.Dish, error) {
	ret := m.Called(ctx, name, nationality)
	dish, _ := ret.Get(0).(*core.Dish)
	return dish, ret.Error(1)
}

func (m *DishService) SendFeedback(ctx context.Context, name string, nationality core.Nationality, feedback core.Feedback) error {
	return m.Called(ctx, name, nationality, feedback).Error(0)
}

type RatingAggregator struct {
	mock.Mock
}

func NewRatingAggregator(t testingT) *RatingAggregator {
	m := &RatingAggregator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RatingAggregator) Aggregate(ctx context.Context, dishName string) []core.NationRating {
	ratings, _ := m.Called(ctx, dishName).Get(0).([]core.NationRating)
	return ratings
}

type MessageWriter struct {
	mock.Mock
}

func NewMessageWriter(t testingT) *MessageWriter {
	m := &MessageWriter{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MessageWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}
