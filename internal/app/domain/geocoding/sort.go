package geocoding

import (
	"slices"

	"github.com/FACorreiaa/triply/internal/app/models"
)

// SortByImportance returns a stably sorted copy of locations: higher
// importance first when both scores are known, then cities before towns
// before villages before anything else, then input order.
func SortByImportance(locations []models.Location) []models.Location {
	sorted := slices.Clone(locations)
	slices.SortStableFunc(sorted, compareImportance)
	return sorted
}

// compareImportance orders by (score desc, place rank asc). A zero score
// compares as the lowest score, which keeps the relation transitive where the
// "both scores nonzero" rule alone would not be.
func compareImportance(a, b models.Location) int {
	if a.ImportanceScore != b.ImportanceScore {
		if a.ImportanceScore > b.ImportanceScore {
			return -1
		}
		return 1
	}
	return a.PlaceType.Rank() - b.PlaceType.Rank()
}
