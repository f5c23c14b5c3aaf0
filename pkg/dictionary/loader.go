/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: loader.go
Description: Word list loaders. Reads dictionaries from local files or HTTP(S) URLs in
plain text, CSV, JSON or HTML form. HTML pages are parsed with goquery and every element
matching a CSS selector contributes its words.
*/

package dictionary

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Supported formats
const (
	FormatAuto = "auto"
	FormatTXT  = "txt"
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatHTML = "html"
)

// DefaultSelector picks list items out of HTML word list pages
const DefaultSelector = "li"

// LoadOptions controls where and how a dictionary is read
type LoadOptions struct {
	Location string        // file path or http(s) URL; empty selects the embedded list
	Format   string        // txt, csv, json, html or auto
	Selector string        // CSS selector for html format
	Timeout  time.Duration // HTTP timeout
}

// Load reads a dictionary according to opts
func Load(ctx context.Context, opts LoadOptions) (*WordSet, error) {
	if opts.Location == "" {
		return Default(), nil
	}

	reader, contentType, err := open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	format := opts.Format
	if format == "" || format == FormatAuto {
		format = detectFormat(opts.Location, contentType)
	}

	words, err := Parse(reader, format, opts.Selector)
	if err != nil {
		return nil, fmt.Errorf("failed to parse dictionary %s: %w", opts.Location, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("dictionary %s contains no words", opts.Location)
	}
	return NewWordSet(opts.Location, words), nil
}

// open returns a reader for a local file or remote URL
func open(ctx context.Context, opts LoadOptions) (io.ReadCloser, string, error) {
	if strings.HasPrefix(opts.Location, "http://") || strings.HasPrefix(opts.Location, "https://") {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, opts.Location, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to build dictionary request: %w", err)
		}
		client := &http.Client{Timeout: timeout}
		resp, err := client.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch dictionary: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, "", fmt.Errorf("dictionary returned status %d", resp.StatusCode)
		}
		return resp.Body, resp.Header.Get("Content-Type"), nil
	}

	file, err := os.Open(opts.Location)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open dictionary file: %w", err)
	}
	return file, "", nil
}

func detectFormat(location, contentType string) string {
	switch {
	case strings.Contains(contentType, "html"):
		return FormatHTML
	case strings.Contains(contentType, "json"):
		return FormatJSON
	case strings.Contains(contentType, "csv"):
		return FormatCSV
	}
	switch strings.ToLower(filepath.Ext(location)) {
	case ".html", ".htm":
		return FormatHTML
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	default:
		return FormatTXT
	}
}

// Parse extracts words from r in the given format
func Parse(r io.Reader, format, selector string) ([]string, error) {
	switch format {
	case FormatTXT, "":
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read TXT: %w", err)
		}
		return strings.Fields(string(data)), nil

	case FormatCSV:
		csvReader := csv.NewReader(r)
		csvReader.FieldsPerRecord = -1
		records, err := csvReader.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		// The first column holds the word, frequency columns are ignored
		words := make([]string, 0, len(records))
		for _, rec := range records {
			if len(rec) > 0 {
				words = append(words, rec[0])
			}
		}
		return words, nil

	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read JSON: %w", err)
		}
		var list []string
		if err := json.Unmarshal(data, &list); err == nil {
			return list, nil
		}
		// Frequency maps: {"word": count}, keys kept in file order
		words, err := objectKeys(data)
		if err != nil {
			return nil, fmt.Errorf("JSON dictionary must be an array or object: %w", err)
		}
		return words, nil

	case FormatHTML:
		if selector == "" {
			selector = DefaultSelector
		}
		doc, err := goquery.NewDocumentFromReader(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read HTML: %w", err)
		}
		var words []string
		doc.Find(selector).Each(func(_ int, s *goquery.Selection) {
			words = append(words, strings.Fields(s.Text())...)
		})
		return words, nil

	default:
		return nil, fmt.Errorf("unsupported dictionary format: %s", format)
	}
}

// objectKeys returns the top-level keys of a JSON object in the order they appear
func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("unexpected token %v", tok)
	}

	var words []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		words = append(words, key)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return words, nil
}
