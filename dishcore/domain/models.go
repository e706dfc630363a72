package domain

import "errors"

var ErrUnknownNationality = errors.New("unknown nationality")

type Ingredient struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Img  string `json:"img"`
}

type Dish struct {
	Name        string       `json:"name"`
	Img         string       `json:"img,omitempty"`
	Description string       `json:"description"`
	Like        int          `json:"like"`
	Dislike     int          `json:"dislike"`
	Nationality string       `json:"nationality,omitempty"`
	Ingredients []Ingredient `json:"ingredients"`
}

// Normalize fills in what a sparse payload may leave out so that rating
// derivation and rendering stay total.
func (d *Dish) Normalize() {
	if d.Ingredients == nil {
		d.Ingredients = []Ingredient{}
	}
	if d.Like < 0 {
		d.Like = 0
	}
	if d.Dislike < 0 {
		d.Dislike = 0
	}
}

func (d Dish) Clone() Dish {
	out := d
	out.Ingredients = append([]Ingredient{}, d.Ingredients...)
	return out
}

type NationRating struct {
	Nationality Nationality `json:"nationality"`
	Stars       int         `json:"stars"`
}

type Feedback string

const (
	FeedbackLike    Feedback = "like"
	FeedbackDislike Feedback = "dislike"
)

const FallbackDishName = "Fiorentina Steak"

// FallbackDish is shown when the initial load cannot reach the dish API.
func FallbackDish() Dish {
	return Dish{
		Name: FallbackDishName,
		Description: "Fiorentina Steak is a juicy cut of beef, grilled or pan-seared to perfection. " +
			"It is often seasoned simply with salt and pepper. Served with sides like potatoes or vegetables, " +
			"it is a favorite worldwide.",
		Like:        75,
		Dislike:     25,
		Nationality: string(Italy),
		Ingredients: []Ingredient{},
	}
}
