package rating

import (
	"errors"

	"cibo-compass/dishcore/domain"
)

const MaxStars = 5

var (
	ErrNoStars         = errors.New("no star selected")
	ErrStarsOutOfRange = errors.New("star value must be between 1 and 5")
)

// Lower bounds (inclusive) of the like percentage for 5, 4, 3, 2 and 1 stars.
var thresholds = [MaxStars]int64{90, 75, 60, 40, 20}

// StarRating buckets the like share of all votes into 0..5 stars. No votes
// means 0 stars. Negative counts are treated as 0.
func StarRating(like, dislike int) int {
	l, d := int64(max(like, 0)), int64(max(dislike, 0))
	total := l + d
	if total == 0 {
		return 0
	}

	for i, threshold := range thresholds {
		if l*100 >= threshold*total {
			return MaxStars - i
		}
	}
	return 0
}

func DishStars(dish domain.Dish) int {
	return StarRating(dish.Like, dish.Dislike)
}

// FeedbackFor maps a picked star value to the vote sent to the dish API:
// one or two stars is a dislike, three and up a like.
func FeedbackFor(stars int) (domain.Feedback, error) {
	switch {
	case stars == 0:
		return "", ErrNoStars
	case stars < 0 || stars > MaxStars:
		return "", ErrStarsOutOfRange
	case stars >= 3:
		return domain.FeedbackLike, nil
	default:
		return domain.FeedbackDislike, nil
	}
}
