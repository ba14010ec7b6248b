package metrics

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const meterName = "triply"

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	SearchRequestsTotal      metric.Int64Counter
	SearchStaleDiscardsTotal metric.Int64Counter
	GeocodingDuration        metric.Float64Histogram
	GenerationsTotal         metric.Int64Counter
	GenerationDuration       metric.Float64Histogram
	HTTPRequestsTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics creates the instruments once from the global MeterProvider.
// Until tracer.InitOtelProviders installs a real provider the global one is a
// no-op, so calling this early is harmless.
func InitAppMetrics(logger *zap.Logger) {
	once.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
		meter := Meter()
		m := &AppMetrics{}
		var err error

		m.SearchRequestsTotal, err = meter.Int64Counter(
			"search_requests_total",
			metric.WithDescription("Location search requests by outcome"),
			metric.WithUnit("{request}"),
		)
		logInstrumentErr(logger, "search_requests_total", err)

		m.SearchStaleDiscardsTotal, err = meter.Int64Counter(
			"search_stale_discards_total",
			metric.WithDescription("Search responses dropped because a newer request superseded them"),
			metric.WithUnit("{response}"),
		)
		logInstrumentErr(logger, "search_stale_discards_total", err)

		m.GeocodingDuration, err = meter.Float64Histogram(
			"geocoding_request_duration_seconds",
			metric.WithDescription("Duration of geocoding provider calls in seconds"),
			metric.WithUnit("s"),
		)
		logInstrumentErr(logger, "geocoding_request_duration_seconds", err)

		m.GenerationsTotal, err = meter.Int64Counter(
			"itinerary_generations_total",
			metric.WithDescription("Itinerary generations by outcome"),
			metric.WithUnit("{itinerary}"),
		)
		logInstrumentErr(logger, "itinerary_generations_total", err)

		m.GenerationDuration, err = meter.Float64Histogram(
			"itinerary_generation_duration_seconds",
			metric.WithDescription("End-to-end itinerary generation time in seconds"),
			metric.WithUnit("s"),
		)
		logInstrumentErr(logger, "itinerary_generation_duration_seconds", err)

		m.HTTPRequestsTotal, err = meter.Int64Counter(
			"http_requests_total",
			metric.WithDescription("Total number of HTTP requests completed"),
			metric.WithUnit("{request}"),
		)
		logInstrumentErr(logger, "http_requests_total", err)

		appMetrics = m
	})
}

// Get returns the instruments, creating them on first use.
func Get() *AppMetrics {
	InitAppMetrics(nil)
	return appMetrics
}

// Meter returns the application meter from the global provider.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(meterName)
}

// StoreStats is a point-in-time reading of the itinerary store.
type StoreStats struct {
	Entries int64
	Hits    int64
	Misses  int64
	Sets    int64
}

var (
	lookupHit  = metric.WithAttributes(attribute.String("result", "hit"))
	lookupMiss = metric.WithAttributes(attribute.String("result", "miss"))
)

// ObserveItineraryStore exports the store's entry count and lookup totals.
// read is called on every collection; unregister the returned registration
// when the store goes away.
func ObserveItineraryStore(meter metric.Meter, read func() StoreStats) (metric.Registration, error) {
	entries, err := meter.Int64ObservableGauge(
		"itinerary_store_entries",
		metric.WithDescription("Itineraries currently held in memory"),
		metric.WithUnit("{itinerary}"),
	)
	if err != nil {
		return nil, err
	}
	lookups, err := meter.Int64ObservableCounter(
		"itinerary_store_lookups_total",
		metric.WithDescription("Itinerary lookups by result"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, err
	}
	sets, err := meter.Int64ObservableCounter(
		"itinerary_store_sets_total",
		metric.WithDescription("Itineraries written to the store"),
		metric.WithUnit("{itinerary}"),
	)
	if err != nil {
		return nil, err
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		st := read()
		o.ObserveInt64(entries, st.Entries)
		o.ObserveInt64(lookups, st.Hits, lookupHit)
		o.ObserveInt64(lookups, st.Misses, lookupMiss)
		o.ObserveInt64(sets, st.Sets)
		return nil
	}, entries, lookups, sets)
}

func logInstrumentErr(logger *zap.Logger, name string, err error) {
	if err != nil {
		logger.Error("Failed to create metric instrument", zap.String("instrument", name), zap.Error(err))
	}
}
