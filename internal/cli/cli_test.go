package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
	"github.com/FACorreiaa/triply/internal/app/domain/search"
	"github.com/FACorreiaa/triply/internal/app/models"
	"github.com/FACorreiaa/triply/internal/pkg/config"
)

type MockGeocoder struct {
	mock.Mock
}

func (m *MockGeocoder) Search(ctx context.Context, query string, limit int) ([]models.Location, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

// stubGenerator answers every prompt with reply.
type stubGenerator struct {
	reply string
	err   error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) { return s.reply, s.err }
func (s stubGenerator) Configured() bool                                 { return true }
func (s stubGenerator) ModelName() string                                { return "gemini-test" }

func testApp(geocoder search.Geocoder, generator itinerary.TextGenerator) *app {
	a := newApp()
	a.cfg = &config.Config{
		Server: config.ServerConfig{ServiceName: "triply-test"},
		AI:     config.AIConfig{APIKey: config.PlaceholderAPIKey, Model: "gemini-2.0-flash-exp", Temperature: 0.7, MaxTokens: 8192},
		Search: config.SearchConfig{DebounceDelay: 10 * time.Millisecond, MinQueryLength: 2, MaxResults: 10},
	}
	a.logger = zap.NewNop()
	if geocoder != nil {
		a.newGeocoder = func(config.GeocodingConfig, *zap.Logger) search.Geocoder { return geocoder }
	}
	if generator != nil {
		a.newGenerator = func(context.Context, config.AIConfig, *zap.Logger) (itinerary.TextGenerator, error) {
			return generator, nil
		}
	}
	return a
}

func execute(a *app, stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand(a)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func twoDays() string {
	return `Here you go: {"summary": {"title": "Porto in two days"},
		"days": [{"day": 1, "title": "Ribeira"}, {"day": 2, "title": "Foz"}]}`
}

func TestStatusCommand(t *testing.T) {
	stdout, _, err := execute(testApp(nil, nil), "", "status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"configured": false, "model": "gemini-2.0-flash-exp", "temperature": 0.7, "maxTokens": 8192}`, stdout)
}

func TestPlanCommandPrintsItinerary(t *testing.T) {
	a := testApp(nil, stubGenerator{reply: twoDays()})

	stdout, stderr, err := execute(a, "", "plan", "Porto", "--group", "friends", "--interests", "food,wine")
	require.NoError(t, err)

	var it models.Itinerary
	require.NoError(t, json.Unmarshal([]byte(stdout), &it))
	assert.Equal(t, "Porto in two days", it.Summary.Title)
	require.Len(t, it.Days, 2)
	assert.False(t, it.Metadata.IsFallback)
	assert.Equal(t, "Porto", it.Metadata.Destination)
	assert.Equal(t, "gemini-test", it.Metadata.Model)
	require.NotNil(t, it.Metadata.Configuration)
	assert.Equal(t, []string{"food", "wine"}, it.Metadata.Configuration.Interests)

	assert.Contains(t, stderr, "> Analyzing your preferences...")
	assert.Contains(t, stderr, "> Finalizing your perfect trip...")
	assert.Less(t, strings.Index(stderr, "Analyzing"), strings.Index(stderr, "Finalizing"))
}

func TestPlanCommandQuiet(t *testing.T) {
	_, stderr, err := execute(testApp(nil, stubGenerator{reply: twoDays()}), "", "plan", "Porto", "-q")
	require.NoError(t, err)
	assert.Empty(t, stderr)
}

func TestPlanCommandCustomDuration(t *testing.T) {
	stdout, _, err := execute(testApp(nil, stubGenerator{reply: twoDays()}), "",
		"plan", "--destination", "Kyoto", "--duration", "custom", "--days", "4", "-q")
	require.NoError(t, err)

	var it models.Itinerary
	require.NoError(t, json.Unmarshal([]byte(stdout), &it))
	assert.Len(t, it.Days, 4)
	assert.True(t, it.Metadata.DaysAdjusted)
}

func TestPlanCommandFallsBack(t *testing.T) {
	a := testApp(nil, stubGenerator{reply: "I cannot help with that."})

	stdout, _, err := execute(a, "", "plan", "Porto", "-q")
	require.NoError(t, err)

	var it models.Itinerary
	require.NoError(t, json.Unmarshal([]byte(stdout), &it))
	assert.True(t, it.Metadata.IsFallback)
	assert.Equal(t, "malformed_response", it.Metadata.FallbackReason)
	assert.Len(t, it.Days, 2)
}

func TestPlanCommandErrors(t *testing.T) {
	_, _, err := execute(testApp(nil, nil), "", "plan", "Porto")
	assert.ErrorIs(t, err, models.ErrConfiguration)

	_, _, err = execute(testApp(nil, stubGenerator{reply: twoDays()}), "", "plan", "-q")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSearchCommandWithArgs(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Search", mock.Anything, "Lisbon", 10).Return([]models.Location{
		{ID: "2", DisplayName: "Lisbon, Ohio", ImportanceScore: 0, PlaceType: models.PlaceVillage},
		{ID: "1", DisplayName: "Lisboa, Portugal", ImportanceScore: 820000, PlaceType: models.PlaceCity,
			Coordinates: models.Coordinates{Lat: 38.7223, Lon: -9.1393}},
	}, nil).Once()

	stdout, _, err := execute(testApp(geocoder, nil), "", "search", "Lisbon")
	require.NoError(t, err)

	assert.Contains(t, stdout, `[debouncing] "Lisbon"`)
	assert.Contains(t, stdout, `[success] "Lisbon" 2 results`)
	assert.Contains(t, stdout, "1. Lisboa, Portugal (city, 38.7223, -9.1393)")
	assert.Less(t, strings.Index(stdout, "Lisboa, Portugal"), strings.Index(stdout, "Lisbon, Ohio"))
	geocoder.AssertExpectations(t)
}

func TestSearchCommandDebouncesStdin(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Search", mock.Anything, "Lisb", 3).Return([]models.Location{}, nil).Once()

	stdout, _, err := execute(testApp(geocoder, nil), "Li\nLisb\n", "search", "--limit", "3")
	require.NoError(t, err)

	assert.Contains(t, stdout, `[success] "Lisb" no locations found`)
	geocoder.AssertNumberOfCalls(t, "Search", 1)
	geocoder.AssertExpectations(t)
}

func TestSearchCommandShortQueryStaysIdle(t *testing.T) {
	geocoder := new(MockGeocoder)

	stdout, _, err := execute(testApp(geocoder, nil), "L\n", "search")
	require.NoError(t, err)

	assert.Equal(t, "[idle] \"L\"\n", stdout)
	geocoder.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearchCommandJSON(t *testing.T) {
	geocoder := new(MockGeocoder)
	geocoder.On("Search", mock.Anything, "Porto", 10).
		Return(nil, models.Errorf(models.KindProvider, "geocoding.Search", "geocoding API error: %d", 503)).Once()

	stdout, _, err := execute(testApp(geocoder, nil), "", "search", "--json", "Porto")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	var last search.State
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, search.StatusError, last.Status)
	assert.Equal(t, "Failed to load locations: geocoding API error: 503", last.Error)
	assert.Empty(t, last.Results)
}
