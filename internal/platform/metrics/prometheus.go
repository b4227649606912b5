package metrics

import (
	"net/http"

	"github.com/bozormedia/classifieds-service/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// MetricsManager holds custom Prometheus metrics for the classifieds core.
type MetricsManager struct {
	Registry                *prometheus.Registry
	ListingsSubmittedTotal  prometheus.Counter
	ListingsPublishedTotal  prometheus.Counter
	ListingsRejectedTotal   prometheus.Counter
	ListingBumpsTotal       prometheus.Counter
	MessagesSentTotal       prometheus.Counter
	FavoritesAddedTotal     prometheus.Counter
	FavoritesRemovedTotal   prometheus.Counter
	OperationErrorsTotal    *prometheus.CounterVec
	OperationLatencySeconds *prometheus.HistogramVec
}

// NewMetricsManager initializes and registers the custom metrics on a private
// registry together with the standard Go and process collectors.
func NewMetricsManager(serviceName string) *MetricsManager {
	registry := prometheus.NewRegistry()

	listingsSubmittedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_submitted_total",
		Help:      "Total number of listings submitted for review.",
	})
	listingsPublishedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_published_total",
		Help:      "Total number of listings approved and published.",
	})
	listingsRejectedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listings_rejected_total",
		Help:      "Total number of listings rejected by moderation.",
	})
	listingBumpsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "listing_bumps_total",
		Help:      "Total number of successful listing bumps.",
	})
	messagesSentTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "messages_sent_total",
		Help:      "Total number of conversation messages created.",
	})
	favoritesAddedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "favorites_added_total",
		Help:      "Total number of favorites created.",
	})
	favoritesRemovedTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "favorites_removed_total",
		Help:      "Total number of favorites removed.",
	})
	operationErrorsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: serviceName,
		Name:      "operation_errors_total",
		Help:      "Total number of failed operations by name and error type.",
	}, []string{"operation", "error_type"})
	operationLatencySeconds := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: serviceName,
		Name:      "operation_latency_seconds",
		Help:      "Latency of operations by name.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	registry.MustRegister(
		listingsSubmittedTotal,
		listingsPublishedTotal,
		listingsRejectedTotal,
		listingBumpsTotal,
		messagesSentTotal,
		favoritesAddedTotal,
		favoritesRemovedTotal,
		operationErrorsTotal,
		operationLatencySeconds,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return &MetricsManager{
		Registry:                registry,
		ListingsSubmittedTotal:  listingsSubmittedTotal,
		ListingsPublishedTotal:  listingsPublishedTotal,
		ListingsRejectedTotal:   listingsRejectedTotal,
		ListingBumpsTotal:       listingBumpsTotal,
		MessagesSentTotal:       messagesSentTotal,
		FavoritesAddedTotal:     favoritesAddedTotal,
		FavoritesRemovedTotal:   favoritesRemovedTotal,
		OperationErrorsTotal:    operationErrorsTotal,
		OperationLatencySeconds: operationLatencySeconds,
	}
}

// StartMetricsServer starts an HTTP server exposing the registry on /metrics.
func StartMetricsServer(port string, appLogger *logger.Logger, registry *prometheus.Registry) error {
	if port == "" {
		appLogger.Info("Prometheus metrics server port not configured, server will not start.")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	appLogger.Info("Prometheus metrics server starting", zap.String("port", port), zap.String("path", "/metrics"))

	server := &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}
	return server.ListenAndServe()
}
