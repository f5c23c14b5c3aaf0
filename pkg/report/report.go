/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: report.go
Description: Writes search reports to an output directory as timestamped JSON files,
one subdirectory per cipher kind.
*/

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Version is stamped into every report document
var Version = "1.0.0"

// Document wraps a report with its metadata
type Document struct {
	Kind        string      `json:"kind"`
	Version     string      `json:"version"`
	GeneratedAt time.Time   `json:"generated_at"`
	Report      interface{} `json:"report"`
}

// WriteSearchReport writes report to <dir>/<kind>/<timestamp>_<kind>.json and returns
// the file path
func WriteSearchReport(dir, kind string, report interface{}) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("report directory must not be empty")
	}
	if kind == "" {
		return "", fmt.Errorf("report kind must not be empty")
	}

	kindDir := filepath.Join(dir, kind)
	if err := os.MkdirAll(kindDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	now := time.Now()
	// 2024-06-11_01-30-00.123_vigenere.json
	filename := fmt.Sprintf("%s_%s.json", now.Format("2006-01-02_15-04-05.000"), kind)
	path := filepath.Join(kindDir, filename)

	data, err := json.MarshalIndent(Document{
		Kind:        kind,
		Version:     Version,
		GeneratedAt: now.UTC(),
		Report:      report,
	}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write report file: %w", err)
	}
	return path, nil
}

// ReadSearchReport loads a document written by WriteSearchReport. The report body is
// decoded into out when out is non-nil.
func ReadSearchReport(path string, out interface{}) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		Document
		Report json.RawMessage `json:"report"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", path, err)
	}
	doc := raw.Document
	if out != nil {
		if err := json.Unmarshal(raw.Report, out); err != nil {
			return nil, fmt.Errorf("failed to decode report body: %w", err)
		}
		doc.Report = out
	}
	return &doc, nil
}
