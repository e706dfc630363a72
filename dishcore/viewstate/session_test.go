package viewstate_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"cibo-compass/dishcore/aggregate"
	"cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/rating"
	"cibo-compass/dishcore/remote"
	"cibo-compass/dishcore/remote/remotetest"
	"cibo-compass/dishcore/viewstate"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDishService struct {
	mock.Mock
}

func (m *mockDishService) GetDish(ctx context.Context, name string, nationality domain.Nationality) (*domain.Dish, error) {
	args := m.Called(ctx, name, nationality)
	dish, _ := args.Get(0).(*domain.Dish)
	return dish, args.Error(1)
}

func (m *mockDishService) SendFeedback(ctx context.Context, name string, nationality domain.Nationality, feedback domain.Feedback) error {
	return m.Called(ctx, name, nationality, feedback).Error(0)
}

type mockAggregator struct {
	mock.Mock
}

func (m *mockAggregator) Aggregate(ctx context.Context, dishName string) []domain.NationRating {
	ratings, _ := m.Called(ctx, dishName).Get(0).([]domain.NationRating)
	return ratings
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func browsingWith(dish domain.Dish, ratingCountry domain.Nationality) viewstate.State {
	state := viewstate.NewState(ratingCountry)
	state.Dish = &dish
	return state
}

func TestSession_ConfirmNewCountryRefetchesOnce(t *testing.T) {
	dishes := &mockDishService{}
	ratings := &mockAggregator{}
	ctx := context.Background()

	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen", Like: 1}, domain.Italy),
		dishes, ratings, domain.France, quietLogger())

	allRatings := []domain.NationRating{
		{Nationality: domain.France, Stars: 1}, {Nationality: domain.India, Stars: 2},
		{Nationality: domain.Italy, Stars: 3}, {Nationality: domain.Japan, Stars: 4}, {Nationality: domain.USA, Stars: 5},
	}
	ratings.On("Aggregate", ctx, "Ramen").Return(allRatings).Once()
	dishes.On("GetDish", ctx, "Ramen", domain.Japan).
		Return(&domain.Dish{Name: "Ramen", Like: 9, Dislike: 1, Nationality: "Japan"}, nil).Once()

	state, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewstate.ModeCountrySelection, state.Mode)
	assert.Equal(t, domain.Italy, state.SelectedCountry)
	assert.Equal(t, allRatings, state.NationRatings)

	_, err = session.SelectCountry(domain.Japan)
	require.NoError(t, err)

	state, err = session.ConfirmCountry(ctx)
	require.NoError(t, err)
	assert.Equal(t, viewstate.ModeBrowsing, state.Mode)
	assert.Equal(t, domain.Japan, state.RatingCountry)
	assert.Equal(t, 9, state.Dish.Like)
	assert.False(t, state.Loading)

	dishes.AssertNumberOfCalls(t, "GetDish", 1)
	dishes.AssertExpectations(t)
	ratings.AssertExpectations(t)
}

func TestSession_CancelCountryKeepsConfirmedCountry(t *testing.T) {
	dishes := &mockDishService{}
	ratings := &mockAggregator{}
	ctx := context.Background()

	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.Italy),
		dishes, ratings, domain.France, quietLogger())
	ratings.On("Aggregate", ctx, "Ramen").Return([]domain.NationRating{}).Once()

	_, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	_, err = session.SelectCountry(domain.USA)
	require.NoError(t, err)

	state, err := session.CancelCountry()
	require.NoError(t, err)
	assert.Equal(t, viewstate.ModeBrowsing, state.Mode)
	assert.Equal(t, domain.Italy, state.RatingCountry)
	assert.Equal(t, domain.Italy, state.SelectedCountry)
	dishes.AssertNotCalled(t, "GetDish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_ConfirmUnchangedCountryIsNoop(t *testing.T) {
	dishes := &mockDishService{}
	ratings := &mockAggregator{}
	ctx := context.Background()

	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.France),
		dishes, ratings, domain.France, quietLogger())
	ratings.On("Aggregate", ctx, "Ramen").Return([]domain.NationRating{}).Once()

	_, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	state, err := session.ConfirmCountry(ctx)
	require.NoError(t, err)

	assert.Equal(t, viewstate.ModeBrowsing, state.Mode)
	assert.Equal(t, domain.France, state.RatingCountry)
	dishes.AssertNotCalled(t, "GetDish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_ConfirmCountryFetchFailureKeepsDish(t *testing.T) {
	dishes := &mockDishService{}
	ratings := &mockAggregator{}
	ctx := context.Background()

	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen", Like: 4}, domain.France),
		dishes, ratings, domain.France, quietLogger())
	ratings.On("Aggregate", ctx, "Ramen").Return([]domain.NationRating{}).Once()
	dishes.On("GetDish", ctx, "Ramen", domain.India).Return(nil, errors.New("timeout")).Once()

	_, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	_, err = session.SelectCountry(domain.India)
	require.NoError(t, err)
	state, err := session.ConfirmCountry(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.India, state.RatingCountry)
	require.NotNil(t, state.Dish)
	assert.Equal(t, 4, state.Dish.Like)
	assert.False(t, state.Loading)
}

func TestSession_OpenCountryPanelWithoutDishSkipsAggregation(t *testing.T) {
	ratings := &mockAggregator{}
	session := viewstate.NewSession(&mockDishService{}, ratings, domain.France, quietLogger())

	state, err := session.OpenCountryPanel(context.Background())
	require.NoError(t, err)

	assert.Equal(t, viewstate.ModeCountrySelection, state.Mode)
	assert.Len(t, state.NationRatings, len(domain.Nationalities()))
	ratings.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything)
}

func TestSession_SelectCountryRejectsUnknown(t *testing.T) {
	session := viewstate.NewSession(&mockDishService{}, &mockAggregator{}, domain.France, quietLogger())

	_, err := session.SelectCountry(domain.Japan)
	assert.ErrorIs(t, err, viewstate.ErrInvalidTransition)

	_, err = session.OpenCountryPanel(context.Background())
	require.NoError(t, err)
	_, err = session.SelectCountry(domain.Nationality("Atlantis"))
	assert.ErrorIs(t, err, domain.ErrUnknownNationality)
}

func TestSession_FeedbackSignals(t *testing.T) {
	tests := []struct {
		stars    int
		expected domain.Feedback
	}{
		{1, domain.FeedbackDislike},
		{2, domain.FeedbackDislike},
		{3, domain.FeedbackLike},
		{4, domain.FeedbackLike},
		{5, domain.FeedbackLike},
	}

	for _, testCase := range tests {
		dishes := &mockDishService{}
		ctx := context.Background()
		session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.Japan),
			dishes, &mockAggregator{}, domain.France, quietLogger())
		dishes.On("SendFeedback", ctx, "Ramen", domain.France, testCase.expected).Return(nil).Once()

		state, err := session.OpenFeedback()
		require.NoError(t, err)
		assert.Equal(t, viewstate.ModeFeedbackEntry, state.Mode)
		assert.Equal(t, 0, state.UserStars)

		_, err = session.PickStars(testCase.stars)
		require.NoError(t, err)

		receipt, err := session.SubmitFeedback(ctx)
		require.NoError(t, err)
		assert.Equal(t, testCase.expected, receipt.Feedback)
		assert.True(t, receipt.Delivered)
		assert.Equal(t, viewstate.ModeBrowsing, session.State().Mode)
		assert.Equal(t, testCase.stars, session.State().UserStars)
		dishes.AssertExpectations(t)
	}
}

func TestSession_SubmitWithoutStarsIsRefused(t *testing.T) {
	dishes := &mockDishService{}
	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.France),
		dishes, &mockAggregator{}, domain.France, quietLogger())

	_, err := session.OpenFeedback()
	require.NoError(t, err)

	_, err = session.SubmitFeedback(context.Background())
	assert.ErrorIs(t, err, viewstate.ErrNoStarsPicked)
	assert.Equal(t, viewstate.ModeFeedbackEntry, session.State().Mode)
	dishes.AssertNotCalled(t, "SendFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	_, err = session.PickStars(0)
	assert.ErrorIs(t, err, rating.ErrStarsOutOfRange)
	_, err = session.PickStars(6)
	assert.ErrorIs(t, err, rating.ErrStarsOutOfRange)
}

// Delivery failures are swallowed: the viewer returns to browsing and the
// caller sees no error.
func TestSession_SubmitFeedbackDeliveryFailureReportsSuccess(t *testing.T) {
	dishes := &mockDishService{}
	ctx := context.Background()
	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.France),
		dishes, &mockAggregator{}, domain.France, quietLogger())
	dishes.On("SendFeedback", ctx, "Ramen", domain.France, domain.FeedbackDislike).
		Return(errors.New("connection refused")).Once()

	_, err := session.OpenFeedback()
	require.NoError(t, err)
	_, err = session.PickStars(2)
	require.NoError(t, err)

	receipt, err := session.SubmitFeedback(ctx)
	require.NoError(t, err)
	assert.False(t, receipt.Delivered)
	assert.Equal(t, domain.FeedbackDislike, receipt.Feedback)
	assert.Equal(t, viewstate.ModeBrowsing, session.State().Mode)
}

func TestSession_ModesAreExclusive(t *testing.T) {
	ctx := context.Background()
	ratings := &mockAggregator{}
	ratings.On("Aggregate", ctx, "Ramen").Return([]domain.NationRating{})
	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.France),
		&mockDishService{}, ratings, domain.France, quietLogger())

	_, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	_, err = session.OpenFeedback()
	assert.ErrorIs(t, err, viewstate.ErrInvalidTransition)
	_, err = session.CancelFeedback()
	assert.ErrorIs(t, err, viewstate.ErrInvalidTransition)

	_, err = session.CancelCountry()
	require.NoError(t, err)
	_, err = session.OpenFeedback()
	require.NoError(t, err)
	_, err = session.OpenCountryPanel(ctx)
	assert.ErrorIs(t, err, viewstate.ErrInvalidTransition)
	_, err = session.ConfirmCountry(ctx)
	assert.ErrorIs(t, err, viewstate.ErrInvalidTransition)

	state, err := session.CancelFeedback()
	require.NoError(t, err)
	assert.Equal(t, viewstate.ModeBrowsing, state.Mode)
}

func TestSession_OpenFeedbackNeedsDish(t *testing.T) {
	session := viewstate.NewSession(&mockDishService{}, &mockAggregator{}, domain.France, quietLogger())

	_, err := session.OpenFeedback()
	assert.ErrorIs(t, err, viewstate.ErrNoDish)
	assert.Equal(t, viewstate.ModeBrowsing, session.State().Mode)
}

func TestSession_SubmitAfterDishLostKeepsFeedbackOpen(t *testing.T) {
	dishes := &mockDishService{}
	ctx := context.Background()
	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.France),
		dishes, &mockAggregator{}, domain.France, quietLogger())

	_, err := session.OpenFeedback()
	require.NoError(t, err)

	dishes.On("GetDish", ctx, "Haggis", domain.France).Return(nil, remote.ErrDishNotFound).Once()
	state := session.Search(ctx, "Haggis")
	require.Nil(t, state.Dish)

	_, err = session.PickStars(4)
	require.NoError(t, err)

	_, err = session.SubmitFeedback(ctx)
	assert.ErrorIs(t, err, viewstate.ErrNoDish)
	assert.Equal(t, viewstate.ModeFeedbackEntry, session.State().Mode)
	assert.Equal(t, 4, session.State().UserStars)
	dishes.AssertNotCalled(t, "SendFeedback", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_BlankSearchIsIgnored(t *testing.T) {
	dishes := &mockDishService{}
	initial := browsingWith(domain.Dish{Name: "Ramen"}, domain.France)
	session := viewstate.RestoreSession(initial, dishes, &mockAggregator{}, domain.France, quietLogger())

	before := session.State()
	state := session.Search(context.Background(), "   \t ")

	assert.Equal(t, before, state)
	dishes.AssertNotCalled(t, "GetDish", mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_Search(t *testing.T) {
	dishes := &mockDishService{}
	ctx := context.Background()
	session := viewstate.RestoreSession(browsingWith(domain.Dish{Name: "Ramen"}, domain.Japan),
		dishes, &mockAggregator{}, domain.France, quietLogger())

	dishes.On("GetDish", ctx, "Unknown", domain.France).Return(nil, remote.ErrDishNotFound).Once()
	state := session.Search(ctx, " Unknown ")
	assert.Nil(t, state.Dish)
	assert.True(t, state.NotFound)
	assert.Equal(t, viewstate.SearchNotFound, state.Search)

	dishes.On("GetDish", ctx, "Pizza Margherita", domain.France).
		Return(&domain.Dish{Name: "Pizza Margherita", Like: 10}, nil).Once()
	state = session.Search(ctx, "Pizza Margherita")
	require.NotNil(t, state.Dish)
	assert.Equal(t, "Pizza Margherita", state.Dish.Name)
	assert.False(t, state.NotFound)
	assert.Equal(t, viewstate.SearchFound, state.Search)
	assert.False(t, state.Loading)

	dishes.On("GetDish", ctx, "Sushi", domain.France).Return(nil, errors.New("dns failure")).Once()
	state = session.Search(ctx, "Sushi")
	assert.Nil(t, state.Dish)
	assert.True(t, state.NotFound)
}

func TestSession_LoadFallsBackOnFailure(t *testing.T) {
	dishes := &mockDishService{}
	ctx := context.Background()
	session := viewstate.NewSession(dishes, &mockAggregator{}, domain.France, quietLogger())

	dishes.On("GetDish", ctx, domain.FallbackDishName, domain.France).Return(nil, errors.New("offline")).Once()
	state := session.Load(ctx, "")

	require.NotNil(t, state.Dish)
	assert.Equal(t, domain.FallbackDish(), *state.Dish)
	assert.False(t, state.Loading)

	dishes.On("GetDish", ctx, "Pizza Margherita", domain.France).Return(nil, remote.ErrDishNotFound).Once()
	state = session.Load(ctx, "Pizza Margherita")
	assert.Equal(t, domain.FallbackDishName, state.Dish.Name)
}

type gatedService struct {
	mu    sync.Mutex
	gates map[string]chan struct{}
}

func (g *gatedService) gate(name string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gates == nil {
		g.gates = map[string]chan struct{}{}
	}
	if g.gates[name] == nil {
		g.gates[name] = make(chan struct{})
	}
	return g.gates[name]
}

func (g *gatedService) GetDish(ctx context.Context, name string, nationality domain.Nationality) (*domain.Dish, error) {
	<-g.gate(name)
	return &domain.Dish{Name: name}, nil
}

func (g *gatedService) SendFeedback(context.Context, string, domain.Nationality, domain.Feedback) error {
	return nil
}

func TestSession_StaleSearchResponseIsDiscarded(t *testing.T) {
	service := &gatedService{}
	session := viewstate.NewSession(service, &mockAggregator{}, domain.France, quietLogger())
	ctx := context.Background()

	older := make(chan viewstate.State)
	go func() { older <- session.Search(ctx, "Pizza Margherita") }()
	require.Eventually(t, func() bool { return session.State().Sequence.DishIssued == 1 }, time.Second, 5*time.Millisecond)

	newer := make(chan viewstate.State)
	go func() { newer <- session.Search(ctx, "Spaghetti Carbonara") }()
	require.Eventually(t, func() bool { return session.State().Sequence.DishIssued == 2 }, time.Second, 5*time.Millisecond)

	close(service.gate("Spaghetti Carbonara"))
	state := <-newer
	assert.Equal(t, "Spaghetti Carbonara", state.Dish.Name)
	assert.False(t, state.Loading)

	close(service.gate("Pizza Margherita"))
	<-older

	final := session.State()
	assert.Equal(t, "Spaghetti Carbonara", final.Dish.Name)
	assert.Equal(t, viewstate.SearchFound, final.Search)
	assert.False(t, final.Loading)
}

func TestSession_AgainstDishAPI(t *testing.T) {
	api := remotetest.NewServer()
	defer api.Close()

	api.AddDish(domain.Dish{Name: "Pizza Margherita", Img: "./imgs/pizza.jpg"})
	api.SetVotes("Pizza Margherita", domain.France, 6, 4)
	api.SetVotes("Pizza Margherita", domain.Italy, 19, 1)
	api.SetVotes("Pizza Margherita", domain.Japan, 3, 1)
	api.RejectNationality(domain.USA)

	client := remote.NewClient(api.BaseURL(), nil, quietLogger())
	session := viewstate.NewSession(client, aggregate.NewAggregator(client, nil, quietLogger()), domain.France, quietLogger())
	ctx := context.Background()

	state := session.Load(ctx, "Pizza Margherita")
	assert.Equal(t, 3, rating.DishStars(*state.Dish))

	state, err := session.OpenCountryPanel(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.NationRating{
		{Nationality: domain.France, Stars: 3},
		{Nationality: domain.India, Stars: 0},
		{Nationality: domain.Italy, Stars: 5},
		{Nationality: domain.Japan, Stars: 4},
		{Nationality: domain.USA, Stars: 0},
	}, state.NationRatings)

	_, err = session.SelectCountry(domain.Italy)
	require.NoError(t, err)
	state, err = session.ConfirmCountry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 19, state.Dish.Like)
	assert.Equal(t, 2, api.DishFetches("Pizza Margherita", domain.Italy))

	_, err = session.OpenFeedback()
	require.NoError(t, err)
	_, err = session.PickStars(5)
	require.NoError(t, err)
	receipt, err := session.SubmitFeedback(ctx)
	require.NoError(t, err)
	assert.True(t, receipt.Delivered)

	like, dislike := api.Votes("Pizza Margherita", domain.France)
	assert.Equal(t, 7, like)
	assert.Equal(t, 4, dislike)
}
