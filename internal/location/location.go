// Package location provides the fallback locations assigned to users who do not
// state where they are.
package location

import "math/rand/v2"

// Picker returns a location label.
type Picker func() string

var locations = []string{
	"United States", "United Kingdom", "Canada", "Australia", "Germany",
	"France", "Japan", "Brazil", "India", "Mexico", "Italy", "Spain",
	"Netherlands", "Sweden", "Norway", "South Korea", "Singapore", "Russia",
	"Argentina", "Chile", "South Africa", "Egypt", "Turkey", "Poland",
	"Belgium", "Switzerland", "Austria", "Denmark", "Finland", "Ireland",
	"New Zealand", "Portugal", "Greece", "Czech Republic", "Hungary",
	"Thailand", "Malaysia", "Philippines", "Indonesia", "Vietnam",
	"Morocco", "Kenya", "Nigeria", "Ghana", "Israel", "UAE", "Saudi Arabia",
	"Colombia", "Peru", "Venezuela", "Ecuador", "Uruguay", "Paraguay",
}

// All returns a copy of the location list.
func All() []string {
	return append([]string{}, locations...)
}

// Random picks a uniformly random location.
func Random() string {
	return locations[rand.IntN(len(locations))]
}

// Fixed returns a picker that always yields loc.
func Fixed(loc string) Picker {
	return func() string { return loc }
}
