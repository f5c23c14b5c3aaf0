/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: types.go
Description: Core types for the Bletchley search engine. Defines candidates, accepted
results, the result sink contract, search options and reports, and the atomic search
statistics shared by the sequential and concurrent search paths.
*/

package core

import (
	"math"
	"sync/atomic"
	"time"

	"github.com/kleascm/bletchley/pkg/ciphers"
	berrors "github.com/kleascm/bletchley/pkg/errors"
)

// DefaultTolerance is the default classifier acceptance threshold
const DefaultTolerance = 0.8

// Kind and Key are shared with the cipher transforms
type (
	Kind = ciphers.Kind
	Key  = ciphers.Key
)

// Candidate is a key together with the text it decrypts to.
// Score holds the real-word token count on the Caesar path and is zero elsewhere.
type Candidate struct {
	Key       Key    `json:"key"`
	Plaintext string `json:"plaintext"`
	Score     int    `json:"score"`
	SearchID  string `json:"search_id,omitempty"` // set on candidates a search returns
}

// AcceptedResult is a candidate the classifier accepted, handed to a ResultSink
type AcceptedResult struct {
	ID        string    `json:"id"`        // Unique identifier for this record
	SearchID  string    `json:"search_id"` // Search invocation that produced it
	Cipher    Kind      `json:"cipher"`    // Cipher kind searched
	Key       string    `json:"key"`       // Key rendered as text
	Plaintext string    `json:"plaintext"` // Accepted plaintext
	FoundAt   time.Time `json:"found_at"`  // When the candidate was accepted
}

// ResultSink stores accepted results.
// Record must be safe for concurrent use and must not fail observably.
type ResultSink interface {
	Record(result AcceptedResult)
}

// VigenereOptions selects the Vigenère key space
type VigenereOptions struct {
	Mode   string `json:"mode"`   // "w", "l" or both
	Length int    `json:"length"` // key length for letter mode
}

// VigenereReport summarises a concurrent Vigenère search
type VigenereReport struct {
	SearchID  string        `json:"search_id"`
	Mode      string        `json:"mode"`
	Length    int           `json:"length,omitempty"`
	KeysTried int           `json:"keys_tried"`
	Accepted  int           `json:"accepted"`
	Failed    int           `json:"failed"`
	Failures  []string      `json:"failures,omitempty"` // first few failure messages
	Duration  time.Duration `json:"duration"`
}

// SearchSummary is passed to reporters when a search ends
type SearchSummary struct {
	SearchID  string
	Cipher    Kind
	KeysTried int
	Accepted  int
	Failed    int
	Found     bool
	Duration  time.Duration
}

// SearchStats tracks engine-wide statistics.
// Uses atomic operations for thread-safe updates
type SearchStats struct {
	Searches  int64     `json:"searches"`   // Total number of search calls
	KeysTried int64     `json:"keys_tried"` // Total number of keys evaluated
	Accepted  int64     `json:"accepted"`   // Total number of accepted candidates
	Failures  int64     `json:"failures"`   // Total number of failed units
	StartTime time.Time `json:"start_time"` // When the engine was created
}

// IncrementSearches atomically increments the search counter
func (s *SearchStats) IncrementSearches() {
	atomic.AddInt64(&s.Searches, 1)
}

// IncrementKeysTried atomically increments the key counter
func (s *SearchStats) IncrementKeysTried() {
	atomic.AddInt64(&s.KeysTried, 1)
}

// IncrementAccepted atomically increments the accepted counter
func (s *SearchStats) IncrementAccepted() {
	atomic.AddInt64(&s.Accepted, 1)
}

// IncrementFailures atomically increments the failure counter
func (s *SearchStats) IncrementFailures() {
	atomic.AddInt64(&s.Failures, 1)
}

// Snapshot returns a consistent copy of the counters
func (s *SearchStats) Snapshot() SearchStats {
	return SearchStats{
		Searches:  atomic.LoadInt64(&s.Searches),
		KeysTried: atomic.LoadInt64(&s.KeysTried),
		Accepted:  atomic.LoadInt64(&s.Accepted),
		Failures:  atomic.LoadInt64(&s.Failures),
		StartTime: s.StartTime,
	}
}

// ValidateTolerance rejects thresholds outside [0,1]
func ValidateTolerance(tolerance float64) error {
	if tolerance < 0 || tolerance > 1 || math.IsNaN(tolerance) {
		return berrors.NewConfigError("tolerance", tolerance, "must be within [0,1]")
	}
	return nil
}
