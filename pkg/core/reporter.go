/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Reporter interface and implementations for Bletchley search telemetry.
Reporters are notified of evaluated candidates, accepted results and finished searches.
*/

package core

import (
	"github.com/sirupsen/logrus"
)

// Reporter defines the interface for telemetry and reporting hooks.
// Hooks may be called from several goroutines at once during Vigenère searches.
type Reporter interface {
	// OnCandidateEvaluated is called after a key has been decrypted and scored.
	OnCandidateEvaluated(cipher Kind, candidate Candidate, accepted bool)
	// OnResultAccepted is called when a result is handed to the sink.
	OnResultAccepted(result AcceptedResult)
	// OnSearchFinished is called once per search call.
	OnSearchFinished(summary SearchSummary)
}

// LoggerReporter logs search events using logrus.
type LoggerReporter struct {
	logger *logrus.Logger
}

// NewLoggerReporter creates a new LoggerReporter.
func NewLoggerReporter(logger *logrus.Logger) *LoggerReporter {
	return &LoggerReporter{logger: logger}
}

// OnCandidateEvaluated logs candidates at debug level.
func (r *LoggerReporter) OnCandidateEvaluated(cipher Kind, candidate Candidate, accepted bool) {
	r.logger.WithFields(logrus.Fields{
		"cipher":   cipher,
		"key":      candidate.Key.String(),
		"score":    candidate.Score,
		"accepted": accepted,
	}).Debug("Candidate evaluated")
}

// OnResultAccepted logs accepted results.
func (r *LoggerReporter) OnResultAccepted(result AcceptedResult) {
	r.logger.WithFields(logrus.Fields{
		"cipher":    result.Cipher,
		"key":       result.Key,
		"search_id": result.SearchID,
	}).Info("Result accepted")
}

// OnSearchFinished logs the search summary.
func (r *LoggerReporter) OnSearchFinished(summary SearchSummary) {
	fields := logrus.Fields{
		"cipher":     summary.Cipher,
		"search_id":  summary.SearchID,
		"keys_tried": summary.KeysTried,
		"accepted":   summary.Accepted,
		"failed":     summary.Failed,
		"found":      summary.Found,
		"duration":   summary.Duration,
	}
	if summary.Failed > 0 {
		r.logger.WithFields(fields).Warn("Search finished with failed units")
		return
	}
	r.logger.WithFields(fields).Info("Search finished")
}
