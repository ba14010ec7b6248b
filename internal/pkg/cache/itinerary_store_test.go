package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/models"
)

func itinerary(id string) *models.Itinerary {
	return &models.Itinerary{
		Summary:  models.Summary{Title: "Trip " + id},
		Metadata: models.Metadata{RequestID: id},
	}
}

func TestItineraryStorePutGet(t *testing.T) {
	store := NewItineraryStore(time.Minute, zap.NewNop())

	store.Put(itinerary("abc"))

	got, ok := store.Get("abc")
	require.True(t, ok)
	assert.Equal(t, "Trip abc", got.Summary.Title)

	_, ok = store.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, CacheMetrics{Entries: 1, Hits: 1, Misses: 1, Sets: 1}, store.Stats())
}

func TestItineraryStoreIgnoresUnidentified(t *testing.T) {
	store := NewItineraryStore(time.Minute, nil)

	store.Put(nil)
	store.Put(itinerary(""))

	assert.Equal(t, CacheMetrics{}, store.Stats())
}

func TestItineraryStoreExpires(t *testing.T) {
	store := NewItineraryStore(20*time.Millisecond, nil)
	store.Put(itinerary("short-lived"))

	assert.Eventually(t, func() bool {
		_, ok := store.Get("short-lived")
		return !ok
	}, time.Second, 5*time.Millisecond)
}
