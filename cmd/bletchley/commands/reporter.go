/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: reporter.go
Description: Engine reporter that forwards search events to the command logger.
*/

package commands

import (
	"github.com/kleascm/bletchley/pkg/core"
	"github.com/kleascm/bletchley/pkg/logging"
)

type logReporter struct {
	log *logging.Logger
}

func newLogReporter(log *logging.Logger) *logReporter {
	return &logReporter{log: log}
}

func (r *logReporter) OnCandidateEvaluated(cipher core.Kind, c core.Candidate, accepted bool) {
	r.log.LogCandidate(string(cipher), c.Key.String(), c.Score, accepted)
}

func (r *logReporter) OnResultAccepted(result core.AcceptedResult) {
	r.log.LogAccepted(result.SearchID, string(result.Cipher), result.Key, result.Plaintext)
}

func (r *logReporter) OnSearchFinished(s core.SearchSummary) {
	r.log.LogSearch(s.SearchID, string(s.Cipher), s.KeysTried, s.Accepted, s.Failed, s.Duration)
}
