package rest

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Config of the REST API server.
type Config struct {
	ListenAddress string
	// RateLimit is the number of requests per second accepted by each
	// route. Zero disables rate limiting.
	RateLimit float64
	Burst     int
}

// NewRouter returns the router serving the REST API under /v1 and the
// prometheus metrics of the given gatherer under /metrics.
func NewRouter(api API, config Config, logger zerolog.Logger, gatherer prometheus.Gatherer) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1SubRouter := router.PathPrefix("/v1").Subrouter()
	v1SubRouter.Use(RequestIDMiddleware())
	v1SubRouter.Use(LoggingMiddleware(logger))
	if config.RateLimit > 0 {
		v1SubRouter.Use(RateLimitMiddleware(logger, rate.Limit(config.RateLimit), config.Burst))
	}

	validate := validator.New()
	for _, r := range routes {
		v1SubRouter.
			Methods(r.Method).
			Path(r.Pattern).
			Name(r.Name).
			Handler(NewHandler(logger, validate, r.Handler(api)))
	}

	return router
}

// NewServer returns an HTTP server initialized with the REST API handler
func NewServer(api API, config Config, logger zerolog.Logger, gatherer prometheus.Gatherer) *http.Server {
	logger = logger.With().Str("component", "rest_server").Logger()
	router := NewRouter(api, config, logger, gatherer)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedHeaders: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
			http.MethodHead},
	})

	return &http.Server{
		Addr:         config.ListenAddress,
		Handler:      c.Handler(router),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}
}
