/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: worker.go
Description: Key evaluation worker for the Bletchley search engine. A worker decrypts a
ciphertext under one key, classifies the candidate and converts any fault, panics
included, into an error so a single poisoned key cannot take down its siblings.
*/

package core

import (
	"fmt"
	"sync/atomic"

	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/classifier"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/panics"
)

// Worker evaluates candidate keys for one search call.
// It is read-only after construction and shared by every unit of a search.
type Worker struct {
	transform  ciphers.Transform
	classifier classifier.Classifier
	logger     *logrus.Logger
	ciphertext string
	tolerance  float64

	evaluations int64
	failures    int64
}

// NewWorker creates a worker bound to one ciphertext and tolerance
func NewWorker(transform ciphers.Transform, c classifier.Classifier, logger *logrus.Logger, ciphertext string, tolerance float64) *Worker {
	return &Worker{
		transform:  transform,
		classifier: c,
		logger:     logger,
		ciphertext: ciphertext,
		tolerance:  tolerance,
	}
}

// Decrypt applies key to the worker's ciphertext
func (w *Worker) Decrypt(key Key) (plaintext string, err error) {
	if r := w.try(func() { plaintext, err = w.transform.Decrypt(w.ciphertext, key) }); r != nil {
		return "", r
	}
	if err != nil {
		return "", fmt.Errorf("decrypt with %s key %q: %w", w.transform.Kind(), key.String(), err)
	}
	return plaintext, nil
}

// Evaluate decrypts under key and classifies the whole candidate against the tolerance
func (w *Worker) Evaluate(key Key) (Candidate, bool, error) {
	atomic.AddInt64(&w.evaluations, 1)

	plaintext, err := w.Decrypt(key)
	if err != nil {
		atomic.AddInt64(&w.failures, 1)
		return Candidate{}, false, err
	}

	var accepted bool
	if r := w.try(func() { accepted, err = w.classifier.IsLikelyLanguage(plaintext, w.tolerance) }); r != nil {
		err = r
	}
	if err != nil {
		atomic.AddInt64(&w.failures, 1)
		return Candidate{}, false, berrors.NewClassifierFailure(string(w.transform.Kind()), key.String(), err)
	}

	w.logger.WithFields(logrus.Fields{
		"cipher":   w.transform.Kind(),
		"key":      key.String(),
		"accepted": accepted,
	}).Debug("Candidate evaluated")

	return Candidate{Key: key, Plaintext: plaintext}, accepted, nil
}

// CountRealWords scores plaintext by the number of tokens that are real words
func (w *Worker) CountRealWords(key Key, plaintext string) (int, error) {
	count := 0
	var err error
	r := w.try(func() {
		for _, tok := range classifier.Tokenize(plaintext) {
			var ok bool
			ok, err = w.classifier.IsRealWord(tok)
			if err != nil {
				return
			}
			if ok {
				count++
			}
		}
	})
	if r != nil {
		err = r
	}
	if err != nil {
		atomic.AddInt64(&w.failures, 1)
		return 0, berrors.NewClassifierFailure(string(w.transform.Kind()), key.String(), err)
	}
	return count, nil
}

// Classify runs the whole-candidate check on arbitrary text
func (w *Worker) Classify(key Key, text string) (bool, error) {
	var accepted bool
	var err error
	if r := w.try(func() { accepted, err = w.classifier.IsLikelyLanguage(text, w.tolerance) }); r != nil {
		err = r
	}
	if err != nil {
		return false, berrors.NewClassifierFailure(string(w.transform.Kind()), key.String(), err)
	}
	return accepted, nil
}

// try runs f and converts a panic into an error
func (w *Worker) try(f func()) error {
	var catcher panics.Catcher
	catcher.Try(f)
	if recovered := catcher.Recovered(); recovered != nil {
		return fmt.Errorf("panic: %v", recovered.Value)
	}
	return nil
}

// GetStats returns worker counters
func (w *Worker) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"cipher":      w.transform.Kind(),
		"evaluations": atomic.LoadInt64(&w.evaluations),
		"failures":    atomic.LoadInt64(&w.failures),
	}
}
