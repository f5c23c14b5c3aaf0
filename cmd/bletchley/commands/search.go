/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: search.go
Description: Search commands for Bletchley. Each command reads a ciphertext, runs the
matching engine search under the configured timeout, prints what it found and
optionally writes a JSON report.
*/

package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kleascm/bletchley/pkg/ciphers"
	"github.com/kleascm/bletchley/pkg/core"
	berrors "github.com/kleascm/bletchley/pkg/errors"
	"github.com/kleascm/bletchley/pkg/monitoring"
	"github.com/spf13/cobra"
)

// candidateReport is written for the sequential searches
type candidateReport struct {
	Cipher     core.Kind        `json:"cipher"`
	Ciphertext string           `json:"ciphertext"`
	Tolerance  float64          `json:"tolerance"`
	Found      bool             `json:"found"`
	Candidate  *core.Candidate  `json:"candidate,omitempty"`
	Stats      core.SearchStats `json:"stats"`
}

// vigenereRunReport is written for Vigenère searches
type vigenereRunReport struct {
	Ciphertext string                    `json:"ciphertext"`
	Tolerance  float64                   `json:"tolerance"`
	Report     core.VigenereReport       `json:"report"`
	Results    []core.AcceptedResult     `json:"results"`
	Metrics    *monitoring.CipherMetrics `json:"metrics,omitempty"`
}

// RunCaesar searches every Caesar shift
func RunCaesar(cmd *cobra.Command, args []string) error {
	return runSequential(cmd, args, ciphers.KindCaesar)
}

// RunRailFence searches rail counts until one is accepted
func RunRailFence(cmd *cobra.Command, args []string) error {
	return runSequential(cmd, args, ciphers.KindRailFence)
}

// RunSubstitution reports that substitution search is unavailable
func RunSubstitution(cmd *cobra.Command, args []string) error {
	return runSequential(cmd, args, ciphers.KindSubstitution)
}

func runSequential(cmd *cobra.Command, args []string, kind core.Kind) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	search := s.engine.Caesar
	switch kind {
	case ciphers.KindRailFence:
		search = s.engine.RailFence
	case ciphers.KindSubstitution:
		search = s.engine.Substitution
	}

	var (
		candidate core.Candidate
		found     bool
	)
	err = runWithTimeout(s, s.settings.Timeout, func() error {
		var searchErr error
		candidate, found, searchErr = search(text, s.settings.Tolerance)
		return searchErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	body := candidateReport{
		Cipher:     kind,
		Ciphertext: text,
		Tolerance:  s.settings.Tolerance,
		Found:      found,
		Stats:      s.engine.Stats(),
	}
	if found {
		s.record(kind, candidate)
		body.Candidate = &candidate
	}
	if err := s.writeReport(cmd, string(kind), body); err != nil {
		return err
	}

	if !s.engine.Supports(kind) {
		fmt.Fprintf(out, "%s search is not supported\n", kind)
		return fmt.Errorf("%s: %w: %w", kind, berrors.ErrUnsupported, berrors.ErrNoResult)
	}
	if !found {
		fmt.Fprintf(out, "No confident %s plaintext found\n", kind)
		return noResult(kind)
	}
	fmt.Fprintf(out, "Cipher:    %s\nKey:       %s\nPlaintext: %s\n", kind, candidate.Key, candidate.Plaintext)
	return nil
}

// RunVigenere searches the selected Vigenère key space
func RunVigenere(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	mode, _ := cmd.Flags().GetString("mode")
	length, _ := cmd.Flags().GetInt("length")

	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()

	opts := core.VigenereOptions{Mode: mode, Length: length}
	var vr core.VigenereReport
	err = runWithTimeout(s, s.settings.Timeout, func() error {
		var searchErr error
		vr, searchErr = s.engine.Vigenere(text, opts, s.settings.Tolerance)
		return searchErr
	})
	if err != nil {
		return err
	}

	results := s.resultsFor(vr.SearchID)
	if err := s.writeReport(cmd, string(ciphers.KindVigenere), vigenereRunReport{
		Ciphertext: text,
		Tolerance:  s.settings.Tolerance,
		Report:     vr,
		Results:    results,
		Metrics:    s.metrics.GetCipherMetrics(ciphers.KindVigenere),
	}); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range results {
		fmt.Fprintf(out, "Key: %-12s Plaintext: %s\n", r.Key, r.Plaintext)
	}
	fmt.Fprintf(out, "Keys tried: %d, accepted: %d, failed: %d (%s)\n",
		vr.KeysTried, vr.Accepted, vr.Failed, vr.Duration.Round(time.Millisecond))
	for _, msg := range vr.Failures {
		fmt.Fprintf(out, "  failure: %s\n", msg)
	}

	if vr.Accepted == 0 {
		return noResult(ciphers.KindVigenere)
	}
	return nil
}

// RunCrack tries every selected cipher in turn
func RunCrack(cmd *cobra.Command, args []string) error {
	text, err := readText(cmd, args)
	if err != nil {
		return err
	}
	names, _ := cmd.Flags().GetStringSlice("ciphers")
	mode, _ := cmd.Flags().GetString("mode")
	length, _ := cmd.Flags().GetInt("length")

	opts := core.CrackOptions{Vigenere: core.VigenereOptions{Mode: mode, Length: length}}
	for _, name := range names {
		kind, err := ciphers.ParseKind(name)
		if err != nil {
			return err
		}
		opts.Ciphers = append(opts.Ciphers, kind)
	}

	s, err := newSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.close()
	opts.Tolerance = s.settings.Tolerance

	var cr core.CrackReport
	err = runWithTimeout(s, s.settings.Timeout, func() error {
		var searchErr error
		cr, searchErr = s.engine.Crack(text, opts)
		return searchErr
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, o := range cr.Outcomes {
		switch {
		case !o.Supported:
			fmt.Fprintf(out, "%-12s unsupported\n", o.Cipher)
		case o.Candidate != nil:
			s.record(o.Cipher, *o.Candidate)
			fmt.Fprintf(out, "%-12s key=%s plaintext=%s\n", o.Cipher, o.Candidate.Key, o.Candidate.Plaintext)
		case o.Vigenere != nil:
			fmt.Fprintf(out, "%-12s %d/%d keys accepted\n", o.Cipher, o.Vigenere.Accepted, o.Vigenere.KeysTried)
			for _, r := range s.resultsFor(o.Vigenere.SearchID) {
				fmt.Fprintf(out, "%-12s key=%s plaintext=%s\n", "", r.Key, r.Plaintext)
			}
		default:
			fmt.Fprintf(out, "%-12s no result\n", o.Cipher)
		}
	}

	if err := s.writeReport(cmd, "crack", cr); err != nil {
		return err
	}
	if len(cr.Found()) == 0 {
		return noResult("crack")
	}
	return nil
}

// record stores a sequential search hit with the session sinks
func (s *session) record(kind core.Kind, c core.Candidate) {
	result := core.AcceptedResult{
		ID:        uuid.New().String(),
		SearchID:  c.SearchID,
		Cipher:    kind,
		Key:       c.Key.String(),
		Plaintext: c.Plaintext,
		FoundAt:   time.Now(),
	}
	s.results.Record(result)
	if s.file != nil {
		s.file.Record(result)
	}
}

// resultsFor returns the accepted results of one search
func (s *session) resultsFor(searchID string) []core.AcceptedResult {
	var out []core.AcceptedResult
	for _, r := range s.results.Results() {
		if r.SearchID == searchID {
			out = append(out, r)
		}
	}
	return out
}
