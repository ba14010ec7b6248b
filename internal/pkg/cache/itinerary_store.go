// Package cache keeps generated itineraries in process memory so clients can
// fetch them again by request ID. Entries expire; nothing is persisted.
package cache

import (
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/models"
)

// CacheMetrics tracks cache performance
type CacheMetrics struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Sets    int64 `json:"sets"`
}

// ItineraryStore is a TTL cache of itineraries keyed by Metadata.RequestID.
type ItineraryStore struct {
	items  *gocache.Cache
	ttl    time.Duration
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewItineraryStore creates a store whose entries live for ttl. Expired
// entries are swept every 2*ttl.
func NewItineraryStore(ttl time.Duration, logger *zap.Logger) *ItineraryStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &ItineraryStore{
		items:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
		logger: logger,
	}
}

// Put stores it under its request ID. Itineraries without an ID are ignored.
func (s *ItineraryStore) Put(it *models.Itinerary) {
	if it == nil || it.Metadata.RequestID == "" {
		return
	}
	s.items.Set(it.Metadata.RequestID, it, gocache.DefaultExpiration)
	s.sets.Add(1)

	s.logger.Debug("Cache set",
		zap.String("cache", "itineraries"),
		zap.String("key", it.Metadata.RequestID),
		zap.Duration("ttl", s.ttl),
	)
}

// Get returns the itinerary stored under id.
func (s *ItineraryStore) Get(id string) (*models.Itinerary, bool) {
	v, found := s.items.Get(id)
	if !found {
		s.misses.Add(1)
		s.logger.Debug("Cache miss", zap.String("cache", "itineraries"), zap.String("key", id))
		return nil, false
	}
	s.hits.Add(1)
	return v.(*models.Itinerary), true
}

// Stats reports the live entry count with the running hit, miss and set totals.
func (s *ItineraryStore) Stats() CacheMetrics {
	return CacheMetrics{
		Entries: s.items.ItemCount(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
		Sets:    s.sets.Load(),
	}
}
