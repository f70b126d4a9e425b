package stats

import "strings"

type Category string

const (
	CategoryFeeding    Category = "FEEDING"
	CategorySleep      Category = "SLEEP"
	CategoryExcretion  Category = "EXCRETION"
	CategoryMedication Category = "MEDICATION"
	CategoryHospital   Category = "HOSPITAL"
	CategoryGrowth     Category = "GROWTH"
)

var knownCategories = map[Category]struct{}{
	CategoryFeeding:    {},
	CategorySleep:      {},
	CategoryExcretion:  {},
	CategoryMedication: {},
	CategoryHospital:   {},
	CategoryGrowth:     {},
}

// ParseCategory accepts any letter case; ok is false for names outside the record enumeration.
func ParseCategory(input string) (Category, bool) {
	category := Category(strings.ToUpper(strings.TrimSpace(input)))
	if category == "" {
		return "", false
	}
	_, ok := knownCategories[category]
	return category, ok
}
