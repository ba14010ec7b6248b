package server

import (
	"context"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/FACorreiaa/triply/internal/app/domain/geocoding"
	"github.com/FACorreiaa/triply/internal/app/domain/itinerary"
	"github.com/FACorreiaa/triply/internal/app/handlers"
	"github.com/FACorreiaa/triply/internal/app/observability/metrics"
	"github.com/FACorreiaa/triply/internal/pkg/cache"
	"github.com/FACorreiaa/triply/internal/pkg/config"
	"github.com/FACorreiaa/triply/internal/routes"
)

// Server holds the dependencies for the HTTP server
type Server struct {
	cfg       *config.Config
	logger    *zap.Logger
	geocoder  *geocoding.Client
	generator *itinerary.Service
	store     *cache.ItineraryStore
	router    http.Handler
}

// New wires the geocoding client, the itinerary service and the itinerary
// store. A missing AI key is not fatal: generation endpoints answer 503 until
// one is configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		geocoder: geocoding.NewClient(cfg.Geocoding, logger.Named("geocoding")),
		store:    cache.NewItineraryStore(cfg.Server.ItineraryTTL, logger.Named("cache")),
	}

	var provider itinerary.TextGenerator
	gemini, err := itinerary.NewGeminiProvider(ctx, cfg.AI, logger.Named("gemini"))
	if err != nil {
		logger.Warn("Itinerary generation disabled", zap.Error(err))
	} else {
		provider = gemini
	}
	s.generator = itinerary.NewService(provider, logger.Named("itinerary"))

	if _, err := s.ObserveStore(metrics.Meter()); err != nil {
		logger.Warn("Itinerary store metrics disabled", zap.Error(err))
	}

	s.router = SetupRouter(s.Handlers(), cfg, logger)
	return s
}

// Handlers builds the route handlers from the server's dependencies.
func (s *Server) Handlers() *routes.AppHandlers {
	return &routes.AppHandlers{
		Health:      handlers.NewHealthHandler(itinerary.StatusFor(s.cfg.AI)),
		Locations:   handlers.NewLocationHandler(s.geocoder, s.cfg.Search.MaxResults, s.logger),
		LiveSearch:  handlers.NewLiveSearchHandler(s.geocoder, s.cfg.Search, s.logger),
		Itineraries: handlers.NewItineraryHandler(s.generator, s.store, s.logger),
	}
}

// HTTPServer creates and configures the HTTP server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:        ":" + s.cfg.Server.Port,
		Handler:     s.router,
		IdleTimeout: time.Minute,
		ReadTimeout: 10 * time.Second,
		// Generation can take a while and the stream endpoint holds the
		// connection open until it is done.
		WriteTimeout: 3 * time.Minute,
	}
}

// Router returns the configured handler
func (s *Server) Router() http.Handler {
	return s.router
}

// ObserveStore reports the itinerary store's size and lookup totals on meter.
func (s *Server) ObserveStore(meter metric.Meter) (metric.Registration, error) {
	return metrics.ObserveItineraryStore(meter, func() metrics.StoreStats {
		st := s.store.Stats()
		return metrics.StoreStats{
			Entries: int64(st.Entries),
			Hits:    st.Hits,
			Misses:  st.Misses,
			Sets:    st.Sets,
		}
	})
}
