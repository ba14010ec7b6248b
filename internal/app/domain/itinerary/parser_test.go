package itinerary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/triply/internal/app/models"
)

func sampleItinerary() models.Itinerary {
	return models.Itinerary{
		Summary: models.Summary{
			Title:         "Weekend in Lisbon",
			Description:   "Hills, tiles and {custard} tarts",
			Highlights:    []string{"Alfama", "Belém"},
			BestTime:      "Spring",
			EstimatedCost: "€€",
		},
		Days: []models.DayPlan{{
			Day:   1,
			Title: "Old town",
			Theme: "History",
			Activities: []models.Activity{{
				Time:        "09:00",
				Title:       "Castelo de São Jorge",
				Description: `Walk up to the "castle" }`,
				Duration:    "2 hours",
				Type:        models.ActivitySightseeing,
				Cost:        "€",
				Tips:        []string{"Go early"},
				Location:    "Alfama",
			}},
		}},
		Tips: map[string]models.FlexStrings{"safety": {"Mind the trams"}},
		Recommendations: models.Recommendations{
			Restaurants: []models.Restaurant{{Name: "Taberna", Cuisine: "Portuguese", PriceRange: "€€", MustTry: "Bacalhau"}},
		},
	}
}

func TestParseResponseRoundTripWithProse(t *testing.T) {
	want := sampleItinerary()
	body, err := json.Marshal(want)
	require.NoError(t, err)

	wrappers := map[string]string{
		"bare":          string(body),
		"leading prose": "Sure! Here is your trip: " + string(body),
		"both sides":    "Here you go:\n" + string(body) + "\nEnjoy {your} stay!",
		"markdown":      "```json\n" + string(body) + "\n```",
	}
	for name, raw := range wrappers {
		t.Run(name, func(t *testing.T) {
			got, err := ParseResponse(raw)
			require.NoError(t, err)
			assert.Equal(t, want.Summary, got.Summary)
			assert.Equal(t, want.Days, got.Days)
			assert.Equal(t, want.Tips, got.Tips)
			assert.Equal(t, want.Recommendations, got.Recommendations)
		})
	}
}

func TestParseResponseSkipsNonJSONBraces(t *testing.T) {
	raw := `Use {curly braces} sparingly. {"days": [{"day": 1, "title": "Arrival"}]}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)
	require.Len(t, got.Days, 1)
	assert.Equal(t, "Arrival", got.Days[0].Title)
}

func TestParseResponseNumericScalars(t *testing.T) {
	raw := `{"summary": {"estimatedCost": 450}, "days": [{"day": 1, "activities": [{"time": 9, "cost": 12.5, "duration": null}]}]}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, models.FlexString("450"), got.Summary.EstimatedCost)
	assert.Equal(t, models.FlexString("9"), got.Days[0].Activities[0].Time)
	assert.Equal(t, models.FlexString("12.5"), got.Days[0].Activities[0].Cost)
	assert.Empty(t, got.Days[0].Activities[0].Duration)
}

func TestParseResponseLooseFieldTypes(t *testing.T) {
	raw := `{
		"summary": {"title": "Porto", "highlights": "Ribeira at sunset"},
		"days": [
			{"day": "1", "title": "Arrival", "activities": [{"title": "Port cellars", "tips": "Book a tasting"}]},
			{"day": 2.0, "title": "Douro"},
			{"day": "second", "title": "Foz"}
		],
		"tips": {"safety": "Watch the steep streets", "packing": ["Walking shoes", 1]}
	}`

	got, err := ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, models.FlexStrings{"Ribeira at sunset"}, got.Summary.Highlights)
	require.Len(t, got.Days, 3)
	assert.Equal(t, 1, got.Days[0].Day)
	assert.Equal(t, "Arrival", got.Days[0].Title)
	assert.Equal(t, models.FlexStrings{"Book a tasting"}, got.Days[0].Activities[0].Tips)
	assert.Equal(t, 2, got.Days[1].Day)
	assert.Zero(t, got.Days[2].Day, "unreadable day numbers are left for renumbering")
	assert.Equal(t, "Foz", got.Days[2].Title)
	assert.Equal(t, models.FlexStrings{"Watch the steep streets"}, got.Tips["safety"])
	assert.Equal(t, models.FlexStrings{"Walking shoes", "1"}, got.Tips["packing"])
}

func TestParseResponseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"plain prose", "I'm sorry, I can't plan that trip.", models.ErrMalformedResponse},
		{"empty", "", models.ErrMalformedResponse},
		{"unbalanced", `{"days": [`, models.ErrMalformedResponse},
		{"missing days", `{"summary": {"title": "x"}}`, models.ErrInvalidStructure},
		{"days not an array", `{"days": {"day": 1}}`, models.ErrInvalidStructure},
		{"activities not a list", `{"days": [{"day": 1, "activities": "walk"}]}`, models.ErrMalformedResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResponse(tt.raw)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestFirstJSONObjectIgnoresBracesInStrings(t *testing.T) {
	obj, ok := firstJSONObject(`prefix {"a": "}{", "b": "\"}"} suffix`)
	require.True(t, ok)
	assert.JSONEq(t, `{"a": "}{", "b": "\"}"}`, string(obj))
}
