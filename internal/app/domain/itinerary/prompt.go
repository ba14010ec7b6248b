package itinerary

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/FACorreiaa/triply/internal/app/models"
)

const noDietaryRestrictions = "no_restrictions"

var travelGroupLabels = map[string]string{
	"solo":    "Solo Traveler",
	"couple":  "Couple",
	"family":  "Family with children",
	"friends": "Group of friends",
}

var budgetLabels = map[string]string{
	"budget":   "Budget-friendly (< $50/day)",
	"moderate": "Moderate ($50-150/day)",
	"luxury":   "Luxury ($150+/day)",
}

var titleCaser = cases.Title(language.English)

// formatLabel maps a selector tag to its display label. Unknown tags such as
// "road_trip" are title-cased ("Road Trip").
func formatLabel(labels map[string]string, tag string) string {
	if label, ok := labels[tag]; ok {
		return label
	}
	tag = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(tag))
	if tag == "" {
		return "Not specified"
	}
	return titleCaser.String(tag)
}

func formatTravelGroup(group string) string { return formatLabel(travelGroupLabels, group) }

func formatBudget(budget string) string { return formatLabel(budgetLabels, budget) }

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// cityAndCountry splits the destination display name into the parts the
// prompt header uses.
func cityAndCountry(cfg models.TripConfiguration) (string, string) {
	name := cfg.DestinationName()
	parts := strings.Split(name, ",")
	city := strings.TrimSpace(parts[0])

	if cfg.Location != nil && cfg.Location.Country != "" {
		return city, cfg.Location.Country
	}
	if len(parts) > 1 {
		return city, strings.TrimSpace(parts[len(parts)-1])
	}
	return city, ""
}

const outputSchema = `{
  "summary": {
    "title": "Trip title",
    "description": "Brief overview",
    "highlights": ["highlight1", "highlight2", "highlight3"],
    "bestTime": "When to visit",
    "estimatedCost": "Cost range"
  },
  "days": [
    {
      "day": 1,
      "title": "Day title",
      "theme": "Daily theme",
      "activities": [
        {
          "time": "09:00",
          "title": "Activity name",
          "description": "Detailed description",
          "duration": "2 hours",
          "type": "%s",
          "cost": "€€",
          "tips": ["tip1", "tip2"],
          "location": "Address or area"
        }
      ]
    }
  ],
  "tips": {
    "transportation": ["tip1", "tip2"],
    "safety": ["tip1", "tip2"],
    "cultural": ["tip1", "tip2"],
    "budgeting": ["tip1", "tip2"],
    "packing": ["tip1", "tip2"]
  },
  "recommendations": {
    "restaurants": [{"name": "", "cuisine": "", "priceRange": "", "mustTry": ""}],
    "accommodations": [{"name": "", "type": "", "area": "", "priceRange": ""}],
    "localExperiences": [{"name": "", "description": "", "duration": ""}]
  }
}`

// BuildPrompt renders the generation prompt for cfg. It depends on nothing
// but cfg, so equal configurations produce identical prompts.
func BuildPrompt(cfg models.TripConfiguration) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	days := cfg.DayCount()
	destination := cfg.DestinationName()
	city, country := cityAndCountry(cfg)
	if country != "" && country != city {
		city += ", " + country
	}

	line("You are a world-class travel expert crafting an unforgettable journey to %s.", city)
	line("Create an experience that feels effortless, inspiring, and perfectly tailored.")
	line("")
	line("IMPORTANT CONTEXT:")
	if !cfg.SubmittedAt.IsZero() {
		line("- Current date: %s", cfg.SubmittedAt.Format("January 2, 2006"))
	}
	line("- You MUST verify all recommendations exist and are currently operational")
	line("- Use REAL, VERIFIED locations - no fictional or closed establishments")
	line("- Check business hours, seasonal closures, and current accessibility")
	line("- Provide accurate addresses that can be found on maps")
	line("")

	line("TRIP OVERVIEW:")
	line("- Destination: %s", destination)
	line("- Duration: %s", plural(days, "day"))
	line("- Travel Group: %s", formatTravelGroup(cfg.Group))
	line("- Budget: %s", formatBudget(cfg.Budget))
	line("- Trip Mood: %s", cmpOr(cfg.Mood, "balanced"))
	line("")

	if len(cfg.Interests) > 0 {
		line("INTERESTS:")
		line("- %s", strings.Join(cfg.Interests, ", "))
		line("")
	}

	var special []string
	if len(cfg.Accessibility) > 0 {
		special = append(special, "Accessibility needs: "+strings.Join(cfg.Accessibility, ", "))
	}
	if len(cfg.Dietary) > 0 && !slices.Contains(cfg.Dietary, noDietaryRestrictions) {
		special = append(special, "Dietary restrictions: "+strings.Join(cfg.Dietary, ", "))
	}
	if len(cfg.AgeGroups) > 0 {
		special = append(special, "Age groups: "+strings.Join(cfg.AgeGroups, ", "))
	}
	if len(special) > 0 {
		line("SPECIAL REQUIREMENTS:")
		for _, req := range special {
			line("- %s", req)
		}
		line("")
	}

	line("TRAVEL DETAILS:")
	if cfg.Season != "" {
		line("- Preferred season: %s", cfg.Season)
	}
	if cfg.Experience != "" {
		line("- Travel experience level: %s", cfg.Experience)
	}
	if cfg.Pace != "" {
		line("- Activity pace: %s", cfg.Pace)
	}
	if cfg.Accommodation != "" {
		line("- Accommodation type: %s", cfg.Accommodation)
	}
	if len(cfg.Transport) > 0 {
		line("- Transportation preferences: %s", strings.Join(cfg.Transport, ", "))
	}
	if cfg.Tech != "" {
		line("- Tech setup: %s", cfg.Tech)
	}
	line("")

	types := make([]string, len(models.ActivityTypes))
	for i, t := range models.ActivityTypes {
		types[i] = string(t)
	}
	line("INSTRUCTIONS:")
	line("Create a detailed day-by-day itinerary in JSON format with the following structure:")
	line("")
	line(outputSchema, strings.Join(types, "|"))
	line("")

	line("DESIGN PRINCIPLES:")
	line("- Simplicity: Every detail should be intentional and clear")
	line("- Delight: Create moments that surprise and inspire")
	line("- Flow: Seamless transitions between activities, no wasted time")
	line("- Quality over quantity: Curate the best, not just more options")
	line("- Accessibility: Make every experience welcoming and inclusive")
	line("- Local authenticity: Recommend places where locals actually go")
	line("")

	line("TECHNICAL REQUIREMENTS:")
	line("- Return ONLY valid JSON (no markdown code blocks, no extra text)")
	line("- Plan realistic timing with buffer for travel, meals, and spontaneity")
	line("- Respect budget constraints while maximizing value")
	line("- Include specific addresses and practical navigation tips")
	line("- Balance energy levels throughout the day (high, then medium, then low, then rest)")
	line("- Create exactly %s of activities", plural(days, "day"))
	line("- Use clear, concise, inspiring language (avoid robotic descriptions)")
	b.WriteString("- Add insider tips that make travelers feel like locals")

	return b.String()
}

func cmpOr(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
