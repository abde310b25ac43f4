package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	SessionsStartedTotal      metric.Int64Counter
	ChatTurnsTotal            metric.Int64Counter
	ChatFailuresTotal         metric.Int64Counter
	RemoteChatDurationSeconds metric.Float64Histogram
	ItinerariesGeneratedTotal metric.Int64Counter
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() { // Ensure this only runs once
		meter := otel.GetMeterProvider().Meter("TripCanvas")
		var err error
		m := &AppMetrics{}

		m.SessionsStartedTotal, err = meter.Int64Counter(
			"sessions_started_total",
			metric.WithDescription("Total number of conversation sessions started"),
			metric.WithUnit("{session}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create sessions_started_total: %v", err)
		}

		m.ChatTurnsTotal, err = meter.Int64Counter(
			"chat_turns_total",
			metric.WithDescription("Total number of completed chat turns"),
			metric.WithUnit("{turn}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_turns_total: %v", err)
		}

		m.ChatFailuresTotal, err = meter.Int64Counter(
			"chat_failures_total",
			metric.WithDescription("Total number of chat service failures recovered in-conversation"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create chat_failures_total: %v", err)
		}

		m.RemoteChatDurationSeconds, err = meter.Float64Histogram(
			"remote_chat_duration_seconds",
			metric.WithDescription("Duration of remote chat service calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create remote_chat_duration_seconds: %v", err)
		}

		m.ItinerariesGeneratedTotal, err = meter.Int64Counter(
			"itineraries_generated_total",
			metric.WithDescription("Total number of itineraries generated from questionnaire responses"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itineraries_generated_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m // Assign to global variable
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		// This indicates a programming error - InitAppMetrics must be called at startup.
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}
