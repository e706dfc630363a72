package domain

import "strings"

type Nationality string

const (
	France Nationality = "France"
	India  Nationality = "India"
	Italy  Nationality = "Italy"
	Japan  Nationality = "Japan"
	USA    Nationality = "USA"
)

const unknownFlag = "🌍"

var flags = map[Nationality]string{
	France: "🇫🇷",
	India:  "🇮🇳",
	Italy:  "🇮🇹",
	Japan:  "🇯🇵",
	USA:    "🇺🇸",
}

var canonical = []Nationality{France, India, Italy, Japan, USA}

// Nationalities returns the configured nationalities in canonical order.
func Nationalities() []Nationality {
	return append([]Nationality{}, canonical...)
}

func (n Nationality) Label() string { return string(n) }

func (n Nationality) Flag() string {
	if flag, ok := flags[n]; ok {
		return flag
	}
	return unknownFlag
}

func (n Nationality) Known() bool {
	_, ok := flags[n]
	return ok
}

// ParseNationality matches a configured nationality by label, ignoring case
// and surrounding whitespace.
func ParseNationality(value string) (Nationality, error) {
	value = strings.TrimSpace(value)
	for _, n := range canonical {
		if strings.EqualFold(string(n), value) {
			return n, nil
		}
	}
	return Nationality(value), ErrUnknownNationality
}
