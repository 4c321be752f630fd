package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	AIRequestsTotal        metric.Int64Counter
	AIFallbacksTotal       metric.Int64Counter
	GeocodeRequestsTotal   metric.Int64Counter
	LikedPlacesAddedTotal  metric.Int64Counter
	LikedPlacesDedupTotal  metric.Int64Counter
	RecommendationDuration metric.Float64Histogram
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// Get returns the process-wide AppMetrics, creating the instruments on first
// use. Before tracer.InitTracingAndMetrics runs, the global MeterProvider is
// the otel no-op, so instruments created in tests record nothing.
func Get() *AppMetrics {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("triplore")
		var err error
		m := &AppMetrics{}

		m.AIRequestsTotal, err = meter.Int64Counter(
			"ai_requests_total",
			metric.WithDescription("Total number of AI gateway calls"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_requests_total: %v", err)
		}

		m.AIFallbacksTotal, err = meter.Int64Counter(
			"ai_fallbacks_total",
			metric.WithDescription("Total number of AI gateway calls degraded to a fallback string"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create ai_fallbacks_total: %v", err)
		}

		m.GeocodeRequestsTotal, err = meter.Int64Counter(
			"geocode_requests_total",
			metric.WithDescription("Total number of Nominatim requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create geocode_requests_total: %v", err)
		}

		m.LikedPlacesAddedTotal, err = meter.Int64Counter(
			"liked_places_added_total",
			metric.WithDescription("Total number of liked places inserted"),
			metric.WithUnit("{place}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create liked_places_added_total: %v", err)
		}

		m.LikedPlacesDedupTotal, err = meter.Int64Counter(
			"liked_places_dedup_total",
			metric.WithDescription("Total number of like requests resolved to an existing place"),
			metric.WithUnit("{place}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create liked_places_dedup_total: %v", err)
		}

		m.RecommendationDuration, err = meter.Float64Histogram(
			"recommendation_duration_seconds",
			metric.WithDescription("Duration of recommendation generation in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create recommendation_duration_seconds: %v", err)
		}

		appMetrics = m
	})
	return appMetrics
}
