/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: crack.go
Description: Multi-cipher dispatcher. Runs the searches for several cipher kinds over
one ciphertext and gathers every outcome into a single report.
*/

package core

import (
	"fmt"

	"github.com/kleascm/bletchley/pkg/ciphers"
)

// CrackOptions selects which searches Crack runs
type CrackOptions struct {
	Tolerance float64
	Ciphers   []Kind          // empty runs every kind; Vigenère only runs when Vigenere.Mode is set
	Vigenere  VigenereOptions // key space for the Vigenère search
}

// CrackOutcome is the result of one search inside Crack
type CrackOutcome struct {
	Cipher    Kind            `json:"cipher"`
	Supported bool            `json:"supported"`
	Found     bool            `json:"found"`
	Candidate *Candidate      `json:"candidate,omitempty"`
	Vigenere  *VigenereReport `json:"vigenere,omitempty"`
}

// CrackReport gathers the outcomes of every search run
type CrackReport struct {
	Outcomes []CrackOutcome `json:"outcomes"`
}

// Found returns the outcomes that produced a result
func (r CrackReport) Found() []CrackOutcome {
	var found []CrackOutcome
	for _, o := range r.Outcomes {
		if o.Found {
			found = append(found, o)
		}
	}
	return found
}

// Crack runs the selected searches in order. Any search error aborts the run.
func (e *Engine) Crack(text string, opts CrackOptions) (CrackReport, error) {
	kinds := opts.Ciphers
	if len(kinds) == 0 {
		kinds = ciphers.Kinds
	}

	var report CrackReport
	for _, kind := range kinds {
		outcome := CrackOutcome{Cipher: kind, Supported: e.Supports(kind)}

		switch kind {
		case ciphers.KindCaesar, ciphers.KindRailFence, ciphers.KindSubstitution:
			search := e.Caesar
			if kind == ciphers.KindRailFence {
				search = e.RailFence
			} else if kind == ciphers.KindSubstitution {
				search = e.Substitution
			}
			candidate, found, err := search(text, opts.Tolerance)
			if err != nil {
				return report, fmt.Errorf("%s: %w", kind, err)
			}
			outcome.Found = found
			if found {
				outcome.Candidate = &candidate
			}

		case ciphers.KindVigenere:
			if opts.Vigenere.Mode == "" {
				continue
			}
			vr, err := e.Vigenere(text, opts.Vigenere, opts.Tolerance)
			if err != nil {
				return report, fmt.Errorf("%s: %w", kind, err)
			}
			outcome.Found = vr.Accepted > 0
			outcome.Vigenere = &vr

		default:
			return report, fmt.Errorf("unknown cipher kind %q", kind)
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report, nil
}
