/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: engine.go
Description: Main search engine implementation. Drives key enumeration, decryption and
classification for each cipher kind: a sequential best-guess scan for Caesar, a
first-success scan for rail fence and a bounded worker pool that records every accepted
Vigenère key to the result sink.
*/

package core

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/classifier"
	"github.com/kleascm/bletchley/pkg/dictionary"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/keyspace"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"
)

// maxReportedFailures caps the failure messages kept in a VigenereReport
const maxReportedFailures = 10

// Engine runs brute-force searches over classical cipher key spaces
type Engine struct {
	classifier classifier.Classifier
	words      dictionary.Source
	sink       ResultSink
	logger     *logrus.Logger

	workers   int
	reporters []Reporter
	stats     *SearchStats
}

// Option configures an Engine
type Option func(*Engine)

// WithWorkers caps the number of concurrent Vigenère units (<= 0 selects NumCPU)
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// WithLogger sets the engine logger
func WithLogger(logger *logrus.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithReporter registers a Reporter
func WithReporter(r Reporter) Option {
	return func(e *Engine) {
		e.reporters = append(e.reporters, r)
	}
}

// NewEngine creates a search engine. words feeds Vigenère dictionary keys and may be
// the same source the classifier looks words up in. A nil sink discards results.
func NewEngine(c classifier.Classifier, words dictionary.Source, sink ResultSink, opts ...Option) *Engine {
	e := &Engine{
		classifier: c,
		words:      words,
		sink:       sink,
		logger:     logrus.New(),
		workers:    runtime.NumCPU(),
		stats:      &SearchStats{StartTime: time.Now()},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.sink == nil {
		e.sink = discardSink{}
	}
	return e
}

// Supports reports whether a cipher kind has a working search
func (e *Engine) Supports(kind Kind) bool {
	switch kind {
	case ciphers.KindCaesar, ciphers.KindVigenere, ciphers.KindRailFence:
		return true
	default:
		return false
	}
}

// Workers returns the Vigenère concurrency cap
func (e *Engine) Workers() int { return e.workers }

// Stats returns a snapshot of engine statistics
func (e *Engine) Stats() SearchStats { return e.stats.Snapshot() }

// Caesar scans shifts 1..25 and keeps the candidate with the most real-word tokens.
// Ties keep the lower shift. The best candidate is returned only if it also passes
// the whole-text check at tolerance; otherwise found is false.
func (e *Engine) Caesar(text string, tolerance float64) (Candidate, bool, error) {
	if err := ValidateTolerance(tolerance); err != nil {
		return Candidate{}, false, err
	}
	start := time.Now()
	searchID := e.beginSearch()
	worker := NewWorker(ciphers.Caesar{}, e.classifier, e.logger, text, tolerance)

	best := Candidate{Score: -1}
	tried := 0
	for _, key := range keyspace.CaesarKeys() {
		plaintext, err := worker.Decrypt(key)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("caesar search aborted: %w", err)
		}
		score, err := worker.CountRealWords(key, plaintext)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("caesar search aborted: %w", err)
		}
		tried++
		e.stats.IncrementKeysTried()

		candidate := Candidate{Key: key, Plaintext: plaintext, Score: score}
		e.notifyCandidate(ciphers.KindCaesar, candidate, false)
		if score > best.Score {
			best = candidate
		}
	}

	accepted, err := worker.Classify(best.Key, best.Plaintext)
	if err != nil {
		return Candidate{}, false, fmt.Errorf("caesar search aborted: %w", err)
	}

	summary := SearchSummary{
		SearchID:  searchID,
		Cipher:    ciphers.KindCaesar,
		KeysTried: tried,
		Found:     accepted,
		Duration:  time.Since(start),
	}
	if accepted {
		summary.Accepted = 1
		e.stats.IncrementAccepted()
	}
	e.notifyFinished(summary)

	if !accepted {
		return Candidate{}, false, nil
	}
	best.SearchID = searchID
	return best, true, nil
}

// RailFence scans rail counts 2..199 ascending and returns the first accepted candidate
func (e *Engine) RailFence(text string, tolerance float64) (Candidate, bool, error) {
	if err := ValidateTolerance(tolerance); err != nil {
		return Candidate{}, false, err
	}
	start := time.Now()
	searchID := e.beginSearch()
	worker := NewWorker(ciphers.RailFence{}, e.classifier, e.logger, text, tolerance)

	summary := SearchSummary{SearchID: searchID, Cipher: ciphers.KindRailFence}
	for _, key := range keyspace.RailFenceKeys() {
		candidate, accepted, err := worker.Evaluate(key)
		if err != nil {
			return Candidate{}, false, fmt.Errorf("rail fence search aborted: %w", err)
		}
		summary.KeysTried++
		e.stats.IncrementKeysTried()
		e.notifyCandidate(ciphers.KindRailFence, candidate, accepted)

		if accepted {
			e.stats.IncrementAccepted()
			summary.Accepted = 1
			summary.Found = true
			summary.Duration = time.Since(start)
			e.notifyFinished(summary)
			candidate.SearchID = searchID
			return candidate, true, nil
		}
	}

	summary.Duration = time.Since(start)
	e.notifyFinished(summary)
	return Candidate{}, false, nil
}

// Substitution has no key space search and always reports no result
func (e *Engine) Substitution(text string, tolerance float64) (Candidate, bool, error) {
	if err := ValidateTolerance(tolerance); err != nil {
		return Candidate{}, false, err
	}
	e.logger.WithField("cipher", ciphers.KindSubstitution).Warn("Substitution search is not supported")
	return Candidate{}, false, nil
}

// Vigenere evaluates every key of the selected key space on a bounded worker pool.
// Each accepted key is written to the sink as soon as it is found; nothing is returned
// directly. The call blocks until every key has been evaluated and cannot be cancelled.
// Failed units are isolated and counted in the report.
func (e *Engine) Vigenere(text string, opts VigenereOptions, tolerance float64) (VigenereReport, error) {
	if err := ValidateTolerance(tolerance); err != nil {
		return VigenereReport{}, err
	}

	// Materialise the whole key list before any work starts
	keys, err := keyspace.VigenereKeys(opts.Mode, opts.Length, e.words)
	if err != nil {
		return VigenereReport{}, err
	}

	start := time.Now()
	searchID := e.beginSearch()
	worker := NewWorker(ciphers.Vigenere{}, e.classifier, e.logger, text, tolerance)

	e.logger.WithFields(logrus.Fields{
		"search_id": searchID,
		"mode":      opts.Mode,
		"length":    opts.Length,
		"keys":      len(keys),
		"workers":   e.workers,
	}).Info("Starting Vigenère search")

	var (
		mu       sync.Mutex
		accepted int
		failed   int
		failures []string
	)

	p := pool.New().WithMaxGoroutines(e.workers)
	for _, key := range keys {
		key := key
		p.Go(func() {
			candidate, ok, err := worker.Evaluate(key)
			e.stats.IncrementKeysTried()
			if err != nil {
				err = &berrors.UnitFailure{Key: key.Text, Err: err}
				e.stats.IncrementFailures()
				e.logger.WithField("search_id", searchID).Warnf("Vigenère unit failed: %v", err)

				mu.Lock()
				failed++
				if len(failures) < maxReportedFailures {
					failures = append(failures, err.Error())
				}
				mu.Unlock()
				return
			}

			e.notifyCandidate(ciphers.KindVigenere, candidate, ok)
			if !ok {
				return
			}

			result := AcceptedResult{
				ID:        uuid.New().String(),
				SearchID:  searchID,
				Cipher:    ciphers.KindVigenere,
				Key:       key.Text,
				Plaintext: candidate.Plaintext,
				FoundAt:   time.Now(),
			}
			stored := e.record(result)

			mu.Lock()
			if stored {
				accepted++
			} else {
				failed++
				if len(failures) < maxReportedFailures {
					failures = append(failures, fmt.Sprintf("result for key %q was not stored", key.Text))
				}
			}
			mu.Unlock()
		})
	}
	p.Wait()

	report := VigenereReport{
		SearchID:  searchID,
		Mode:      opts.Mode,
		Length:    opts.Length,
		KeysTried: len(keys),
		Accepted:  accepted,
		Failed:    failed,
		Failures:  failures,
		Duration:  time.Since(start),
	}
	e.notifyFinished(SearchSummary{
		SearchID:  searchID,
		Cipher:    ciphers.KindVigenere,
		KeysTried: report.KeysTried,
		Accepted:  report.Accepted,
		Failed:    report.Failed,
		Found:     report.Accepted > 0,
		Duration:  report.Duration,
	})
	return report, nil
}

// record hands a result to the sink, shielding the unit from sink panics.
// It reports false when the sink panicked and the result was not stored.
func (e *Engine) record(result AcceptedResult) (stored bool) {
	defer func() {
		if r := recover(); r != nil {
			e.stats.IncrementFailures()
			e.logger.WithField("key", result.Key).Errorf("Result sink panicked: %v", r)
			stored = false
		}
	}()
	e.sink.Record(result)
	e.stats.IncrementAccepted()
	for _, r := range e.reporters {
		r.OnResultAccepted(result)
	}
	return true
}

func (e *Engine) beginSearch() string {
	e.stats.IncrementSearches()
	return uuid.New().String()
}

func (e *Engine) notifyCandidate(kind Kind, c Candidate, accepted bool) {
	for _, r := range e.reporters {
		r.OnCandidateEvaluated(kind, c, accepted)
	}
}

func (e *Engine) notifyFinished(summary SearchSummary) {
	for _, r := range e.reporters {
		r.OnSearchFinished(summary)
	}
}

type discardSink struct{}

func (discardSink) Record(AcceptedResult) {}
