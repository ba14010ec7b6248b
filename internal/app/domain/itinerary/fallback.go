package itinerary

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/triply/internal/app/models"
)

// TipCategories are the tip groups every itinerary carries.
var TipCategories = []string{"transportation", "safety", "cultural", "budgeting", "packing"}

// NewFallback builds a generic itinerary for cfg without any remote call. It
// accepts invalid configurations and clamps the day count to [1, MaxTripDays].
func NewFallback(cfg models.TripConfiguration) *models.Itinerary {
	days := clampDays(cfg.DayCount())
	destination := fallbackDestination(cfg)

	plans := make([]models.DayPlan, days)
	for i := range plans {
		plans[i] = fallbackDay(i+1, destination)
	}

	return &models.Itinerary{
		Summary: models.Summary{
			Title:       fmt.Sprintf("%d-Day Trip to %s", days, destination),
			Description: fmt.Sprintf("Explore the best of %s with this personalized itinerary.", destination),
			Highlights: []string{
				"Discover local culture and attractions",
				"Taste authentic cuisine",
				"Experience hidden gems",
			},
			BestTime:      "Year-round",
			EstimatedCost: models.FlexString(formatBudget(cfg.Budget)),
		},
		Days: plans,
		Tips: map[string]models.FlexStrings{
			"transportation": {"Use local public transport", "Consider walking when possible"},
			"safety":         {"Keep valuables secure", "Stay aware of surroundings"},
			"cultural":       {"Respect local customs", "Learn basic phrases"},
			"budgeting":      {"Set daily spending limits", "Look for combo deals"},
			"packing":        {"Pack light", "Bring comfortable shoes"},
		},
		Recommendations: models.Recommendations{
			Restaurants: []models.Restaurant{{
				Name:       "Local favourite near your stay",
				Cuisine:    "Regional",
				PriceRange: "€€",
				MustTry:    "Ask for the house speciality",
			}},
			Accommodations: []models.Accommodation{{
				Name:       "Centrally located guesthouse",
				Type:       "Guesthouse",
				Area:       "City centre",
				PriceRange: models.FlexString(formatBudget(cfg.Budget)),
			}},
			LocalExperiences: []models.LocalExperience{{
				Name:        "Guided walking tour",
				Description: fmt.Sprintf("Get oriented in %s with a local guide.", destination),
				Duration:    "2-3 hours",
			}},
		},
		Metadata: models.Metadata{
			IsFallback:  true,
			Destination: destination,
		},
	}
}

func fallbackDay(n int, destination string) models.DayPlan {
	return models.DayPlan{
		Day:   n,
		Title: fmt.Sprintf("Day %d: Exploring %s", n, destination),
		Theme: "Discovery",
		Activities: []models.Activity{{
			Time:        "09:00",
			Title:       "Morning Exploration",
			Description: "Start your day exploring the local area",
			Duration:    "3 hours",
			Type:        models.ActivitySightseeing,
			Cost:        "€€",
			Tips:        []string{"Arrive early to avoid crowds", "Bring water and sunscreen"},
			Location:    destination,
		}},
	}
}

func clampDays(n int) int {
	return max(1, min(n, models.MaxTripDays))
}

func fallbackDestination(cfg models.TripConfiguration) string {
	if name := strings.TrimSpace(cfg.DestinationName()); name != "" {
		return name
	}
	return "your destination"
}
