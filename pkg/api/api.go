/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: api.go
Description: HTTP API for Bletchley. Exposes the cipher searches over gin, keeps a
server-wide store of accepted results and builds one engine per Vigenère request so
each response can list the keys it accepted.
*/

package api

import (
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/classifier"
	"github.com/kleascm/bletchley/pkg/core"
	"github.com/kleascm/bletchley/pkg/dictionary"
	"github.com/kleascm/bletchley/pkg/monitoring"
	"github.com/kleascm/bletchley/pkg/sink"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxKeys caps the Vigenère key space a single request may search
	DefaultMaxKeys = 500_000
	// DefaultMaxBodyBytes caps request bodies
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds the dependencies of the API
type Config struct {
	Classifier   classifier.Classifier
	Words        dictionary.Source
	Results      *sink.MemorySink // served by GET /results; created when nil
	Sink         core.ResultSink  // optional extra destination such as a FileSink
	Workers      int
	Tolerance    float64 // used when a request omits tolerance; 0 selects core.DefaultTolerance
	MaxKeys      int
	MaxBodyBytes int64
	Logger       *logrus.Logger
}

// API holds dependencies for API handlers
type API struct {
	cfg     Config
	engine  *core.Engine // shared by the sequential searches
	metrics *monitoring.MetricsCollector
}

// NewAPI validates cfg and fills defaults
func NewAPI(cfg Config) (*API, error) {
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("api: classifier is required")
	}
	if err := core.ValidateTolerance(cfg.Tolerance); err != nil {
		return nil, fmt.Errorf("api: %w", err)
	}
	if cfg.Tolerance == 0 {
		cfg.Tolerance = core.DefaultTolerance
	}
	if cfg.Results == nil {
		cfg.Results = sink.NewMemorySink()
	}
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultMaxKeys
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
		cfg.Logger.SetOutput(io.Discard)
	}

	a := &API{cfg: cfg, metrics: monitoring.NewMetricsCollector(cfg.Logger)}
	a.engine = a.newEngine(nil)
	return a, nil
}

// newEngine builds an engine writing to the server sinks plus extra
func (a *API) newEngine(extra core.ResultSink) *core.Engine {
	sinks := sink.MultiSink{a.cfg.Results}
	if a.cfg.Sink != nil {
		sinks = append(sinks, a.cfg.Sink)
	}
	if extra != nil {
		sinks = append(sinks, extra)
	}
	return core.NewEngine(a.cfg.Classifier, a.cfg.Words, sinks,
		core.WithWorkers(a.cfg.Workers),
		core.WithLogger(a.cfg.Logger),
		core.WithReporter(core.NewLoggerReporter(a.cfg.Logger)),
		core.WithReporter(a.metrics),
	)
}

// record stores a sequential search hit in the server sinks
func (a *API) record(kind core.Kind, c core.Candidate) core.AcceptedResult {
	result := core.AcceptedResult{
		ID:        uuid.New().String(),
		SearchID:  c.SearchID,
		Cipher:    kind,
		Key:       c.Key.String(),
		Plaintext: c.Plaintext,
		FoundAt:   time.Now(),
	}
	a.cfg.Results.Record(result)
	if a.cfg.Sink != nil {
		a.cfg.Sink.Record(result)
	}
	return result
}

// Metrics returns the collector every engine reports to
func (a *API) Metrics() *monitoring.MetricsCollector { return a.metrics }

// Results returns the server-wide result store
func (a *API) Results() *sink.MemorySink { return a.cfg.Results }

// SetupRoutes defines all the API routes
func SetupRoutes(router *gin.Engine, a *API) {
	router.Use(RequestIDMiddleware(), LoggingMiddleware(a.cfg.Logger), RequestSizeLimitMiddleware(a.cfg.MaxBodyBytes))

	router.GET("/health", a.HealthCheckHandler)
	router.GET("/results", a.ListResultsHandler)
	router.GET("/metrics", a.MetricsHandler)

	crackRoutes := router.Group("/crack")
	{
		crackRoutes.POST("", a.CrackHandler)
		crackRoutes.POST("/caesar", a.sequentialHandler(ciphers.KindCaesar, a.engine.Caesar))
		crackRoutes.POST("/railfence", a.sequentialHandler(ciphers.KindRailFence, a.engine.RailFence))
		crackRoutes.POST("/substitution", a.sequentialHandler(ciphers.KindSubstitution, a.engine.Substitution))
		crackRoutes.POST("/vigenere", a.VigenereHandler)
	}
}

// NewRouter returns a gin engine with recovery and every route installed
func NewRouter(a *API) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	SetupRoutes(router, a)
	return router
}
