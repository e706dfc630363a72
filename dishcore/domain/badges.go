package domain

var badges = map[string][]string{
	"Pizza Margherita": {
		"Vegetarian",
		"Lacto-Vegetarian",
		"Nut-Free",
		"Egg-Free",
		"Shellfish-Free",
	},
	"Spaghetti Carbonara": {
		"Nut-Free",
		"Shellfish-Free",
		"Low-Sugar",
	},
	"Fiorentina Steak": {
		"Gluten-Free",
		"Dairy-Free",
		"Nut-Free",
		"Egg-Free",
		"Shellfish-Free",
		"Low-Carb",
		"Keto",
		"High-Protein",
	},
}

// BadgesFor returns the dietary badges shown on a dish page. Unlisted dishes
// have none.
func BadgesFor(dishName string) []string {
	return append([]string{}, badges[dishName]...)
}
