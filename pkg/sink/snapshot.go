/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: snapshot.go
Description: Gob snapshots of accepted results, so a session's findings can be saved
and reloaded without replaying the JSON lines log.
*/

package sink

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kleascm/bletchley/pkg/core"
)

// SaveSnapshot gob-encodes results to path, creating directories as needed
func SaveSnapshot(path string, results []core.AcceptedResult) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file %s: %w", path, err)
	}

	if err := gob.NewEncoder(file).Encode(results); err != nil {
		file.Close()
		return fmt.Errorf("failed to gob encode to file %s: %w", path, err)
	}
	return file.Close()
}

// LoadSnapshot decodes results saved by SaveSnapshot.
// A missing file returns os.ErrNotExist so callers can start fresh.
func LoadSnapshot(path string) ([]core.AcceptedResult, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	var results []core.AcceptedResult
	if err := gob.NewDecoder(file).Decode(&results); err != nil {
		return nil, fmt.Errorf("failed to gob decode from file %s: %w", path, err)
	}
	return results, nil
}
