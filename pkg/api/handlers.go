/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: handlers.go
Description: Request handlers for the search endpoints.
*/

package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/core"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/keyspace"
	"github.com/kleascm/bletchley/pkg/sink"
)

// TextRequest is the body of the single-cipher endpoints
type TextRequest struct {
	Text      string   `json:"text"`
	Tolerance *float64 `json:"tolerance,omitempty"`
}

// VigenereRequest is the body of POST /crack/vigenere
type VigenereRequest struct {
	TextRequest
	Mode   string `json:"mode"`
	Length int    `json:"length,omitempty"`
}

// CrackRequest is the body of POST /crack
type CrackRequest struct {
	VigenereRequest
	Ciphers []string `json:"ciphers,omitempty"`
}

// CandidateResponse answers a sequential search
type CandidateResponse struct {
	Cipher    core.Kind `json:"cipher"`
	Supported bool      `json:"supported"`
	Found     bool      `json:"found"`
	Key       string    `json:"key,omitempty"`
	Plaintext string    `json:"plaintext,omitempty"`
	SearchID  string    `json:"search_id,omitempty"`
}

// VigenereResponse answers a Vigenère search
type VigenereResponse struct {
	Found   bool                  `json:"found"`
	Report  core.VigenereReport   `json:"report"`
	Results []core.AcceptedResult `json:"results"`
}

// CrackResponse answers POST /crack
type CrackResponse struct {
	Found    bool                  `json:"found"`
	Outcomes []core.CrackOutcome   `json:"outcomes"`
	Results  []core.AcceptedResult `json:"results"`
}

// HealthCheckHandler provides a simple health check endpoint
func (a *API) HealthCheckHandler(c *gin.Context) {
	words := 0
	if a.cfg.Words != nil {
		words = a.cfg.Words.Len()
	}
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"service":    "bletchley",
		"dictionary": words,
		"timestamp":  time.Now().Unix(),
	})
}

// MetricsHandler returns search metrics across every request
func (a *API) MetricsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.metrics.GetGlobalMetrics())
}

// ListResultsHandler returns the accepted results, optionally filtered by ?cipher=
func (a *API) ListResultsHandler(c *gin.Context) {
	results := a.cfg.Results.Results()
	if raw := c.Query("cipher"); raw != "" {
		kind, err := ciphers.ParseKind(raw)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeUnknownCipher, err.Error())
			return
		}
		filtered := results[:0]
		for _, r := range results {
			if r.Cipher == kind {
				filtered = append(filtered, r)
			}
		}
		results = filtered
	}
	if results == nil {
		results = []core.AcceptedResult{}
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}

type sequentialSearch func(text string, tolerance float64) (core.Candidate, bool, error)

// sequentialHandler serves the Caesar, rail fence and substitution endpoints
func (a *API) sequentialHandler(kind core.Kind, search sequentialSearch) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req TextRequest
		if !bindJSON(c, &req) {
			return
		}
		tolerance, ok := a.validateText(c, req)
		if !ok {
			return
		}

		candidate, found, err := search(req.Text, tolerance)
		if err != nil {
			SendSearchError(c, err)
			return
		}

		resp := CandidateResponse{Cipher: kind, Supported: a.engine.Supports(kind), Found: found}
		if found {
			a.record(kind, candidate)
			resp.Key = candidate.Key.String()
			resp.Plaintext = candidate.Plaintext
			resp.SearchID = candidate.SearchID
		}
		c.JSON(http.StatusOK, resp)
	}
}

// VigenereHandler runs a Vigenère search and returns the keys it accepted
func (a *API) VigenereHandler(c *gin.Context) {
	var req VigenereRequest
	if !bindJSON(c, &req) {
		return
	}
	tolerance, ok := a.validateText(c, req.TextRequest)
	if !ok {
		return
	}
	opts := core.VigenereOptions{Mode: req.Mode, Length: req.Length}
	if !a.checkKeySpace(c, opts) {
		return
	}

	found := sink.NewMemorySink()
	report, err := a.newEngine(found).Vigenere(req.Text, opts, tolerance)
	if err != nil {
		SendSearchError(c, err)
		return
	}
	c.JSON(http.StatusOK, VigenereResponse{
		Found:   report.Accepted > 0,
		Report:  report,
		Results: found.Results(),
	})
}

// CrackHandler runs every requested cipher search in turn
func (a *API) CrackHandler(c *gin.Context) {
	var req CrackRequest
	if !bindJSON(c, &req) {
		return
	}
	tolerance, ok := a.validateText(c, req.TextRequest)
	if !ok {
		return
	}

	opts := core.CrackOptions{
		Tolerance: tolerance,
		Vigenere:  core.VigenereOptions{Mode: req.Mode, Length: req.Length},
	}
	for _, raw := range req.Ciphers {
		kind, err := ciphers.ParseKind(raw)
		if err != nil {
			SendError(c, http.StatusBadRequest, ErrorCodeUnknownCipher, err.Error(),
				ErrorDetail{Field: "ciphers", Message: err.Error()})
			return
		}
		opts.Ciphers = append(opts.Ciphers, kind)
	}
	if opts.Vigenere.Mode != "" && !a.checkKeySpace(c, opts.Vigenere) {
		return
	}

	found := sink.NewMemorySink()
	engine := a.newEngine(found)
	report, err := engine.Crack(req.Text, opts)
	if err != nil {
		SendSearchError(c, err)
		return
	}

	// Sequential hits are not written by the engine; store them like the single endpoints
	for _, o := range report.Outcomes {
		if o.Candidate != nil {
			found.Record(a.record(o.Cipher, *o.Candidate))
		}
	}

	outcomes := report.Outcomes
	if outcomes == nil {
		outcomes = []core.CrackOutcome{}
	}
	c.JSON(http.StatusOK, CrackResponse{
		Found:    len(report.Found()) > 0,
		Outcomes: outcomes,
		Results:  found.Results(),
	})
}

// bindJSON decodes the body, answering INVALID_JSON on failure
func bindJSON(c *gin.Context, out interface{}) bool {
	if err := c.ShouldBindJSON(out); err != nil {
		SendError(c, http.StatusBadRequest, ErrorCodeInvalidJSON, "Invalid JSON body",
			ErrorDetail{Message: err.Error()})
		return false
	}
	return true
}

// validateText checks the shared request fields and resolves the tolerance
func (a *API) validateText(c *gin.Context, req TextRequest) (float64, bool) {
	if req.Text == "" {
		SendError(c, http.StatusBadRequest, ErrorCodeValidationFailed, "Request validation failed",
			ErrorDetail{Field: "text", Message: "text is required", Code: "REQUIRED"})
		return 0, false
	}
	tolerance := a.cfg.Tolerance
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}
	if err := core.ValidateTolerance(tolerance); err != nil {
		var cfgErr *berrors.ConfigError
		if errors.As(err, &cfgErr) {
			SendConfigError(c, cfgErr)
		} else {
			SendSearchError(c, err)
		}
		return 0, false
	}
	return tolerance, true
}

// checkKeySpace rejects unknown modes and key spaces above MaxKeys
func (a *API) checkKeySpace(c *gin.Context, opts core.VigenereOptions) bool {
	size, err := keyspace.VigenereSize(opts.Mode, opts.Length, a.cfg.Words)
	if err != nil {
		SendSearchError(c, err)
		return false
	}
	if size > a.cfg.MaxKeys {
		SendError(c, http.StatusBadRequest, ErrorCodeKeySpaceTooLarge,
			fmt.Sprintf("key space of %d keys exceeds the limit of %d", size, a.cfg.MaxKeys),
			ErrorDetail{Field: "length", Message: "reduce the key length", Code: "TOO_LARGE"})
		return false
	}
	return true
}
