package domain

import (
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

const FeedbackThanks = "Thank you for your feedback!"

type IngredientView struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Img  string `json:"img"`
}

type DishView struct {
	Name        string           `json:"name"`
	Img         string           `json:"img"`
	Description string           `json:"description"`
	Like        int              `json:"like"`
	Dislike     int              `json:"dislike"`
	Stars       int              `json:"stars"`
	Badges      []string         `json:"badges"`
	Ingredients []IngredientView `json:"ingredients"`
}

type CountryView struct {
	Nationality string `json:"nationality"`
	Flag        string `json:"flag"`
	Stars       int    `json:"stars"`
}

// SessionView is what a viewer renders: the active mode plus everything the
// current screen needs.
type SessionView struct {
	ID              string        `json:"id"`
	Mode            string        `json:"mode"`
	Dish            *DishView     `json:"dish"`
	RatingCountry   string        `json:"rating_country"`
	RatingFlag      string        `json:"rating_flag"`
	SelectedCountry string        `json:"selected_country"`
	UserStars       int           `json:"user_stars"`
	NationRatings   []CountryView `json:"nation_ratings"`
	Search          string        `json:"search"`
	NotFound        bool          `json:"not_found"`
	Loading         bool          `json:"loading"`
}

type FeedbackResult struct {
	Message   string       `json:"message"`
	Delivered bool         `json:"delivered"`
	Session   *SessionView `json:"session"`
}

type FeedbackEvent struct {
	Type        string    `json:"type"`
	Dish        string    `json:"dish"`
	Nationality string    `json:"nationality"`
	Feedback    string    `json:"feedback"`
	Stars       int       `json:"stars"`
	Delivered   bool      `json:"delivered"`
	Timestamp   time.Time `json:"timestamp"`
}
