package aggregate

import (
	"context"
	"sort"
	"strings"
	"sync"

	"cibo-compass/dishcore/domain"
	"cibo-compass/dishcore/rating"

	"github.com/sirupsen/logrus"
)

type DishFetcher interface {
	GetDish(ctx context.Context, name string, nationality domain.Nationality) (*domain.Dish, error)
}

// Aggregator derives one star rating per configured nationality for a dish.
type Aggregator struct {
	fetcher       DishFetcher
	nationalities []domain.Nationality
	log           logrus.FieldLogger
}

func NewAggregator(fetcher DishFetcher, nationalities []domain.Nationality, log logrus.FieldLogger) *Aggregator {
	if nationalities == nil {
		nationalities = domain.Nationalities()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Aggregator{
		fetcher:       fetcher,
		nationalities: append([]domain.Nationality{}, nationalities...),
		log:           log,
	}
}

// Aggregate fetches the dish once per nationality, all at once, and waits
// for every fetch to settle. The result has one entry per nationality in
// configured order; a failed fetch yields 0 stars for that nationality.
func (a *Aggregator) Aggregate(ctx context.Context, dishName string) []domain.NationRating {
	ratings := make([]domain.NationRating, len(a.nationalities))

	var wg sync.WaitGroup
	for i, nationality := range a.nationalities {
		ratings[i] = domain.NationRating{Nationality: nationality}

		wg.Add(1)
		go func(slot int, nationality domain.Nationality) {
			defer wg.Done()

			dish, err := a.fetcher.GetDish(ctx, dishName, nationality)
			if err != nil {
				a.log.WithFields(logrus.Fields{
					"dish":        dishName,
					"nationality": nationality,
				}).WithError(err).Warn("Error loading nationality rating")
				return
			}
			ratings[slot].Stars = rating.DishStars(*dish)
		}(i, nationality)
	}
	wg.Wait()

	return ratings
}

// Filter keeps ratings whose nationality label contains query, ignoring
// case. An empty query keeps everything.
func Filter(ratings []domain.NationRating, query string) []domain.NationRating {
	query = strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.NationRating, 0, len(ratings))
	for _, r := range ratings {
		if strings.Contains(strings.ToLower(r.Nationality.Label()), query) {
			out = append(out, r)
		}
	}
	return out
}

// SortByStars returns a copy ordered by stars, highest first. Ties keep
// their original order.
func SortByStars(ratings []domain.NationRating) []domain.NationRating {
	out := append([]domain.NationRating{}, ratings...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Stars > out[j].Stars })
	return out
}
