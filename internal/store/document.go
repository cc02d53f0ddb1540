package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// loadDocument reads and unmarshals a whole JSON document.
func loadDocument(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// persistDocument writes the whole document via a temp file and an atomic
// rename, so a crash mid-write never leaves a half-written store behind.
func persistDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// quarantineDocument moves a corrupt document aside instead of discarding it,
// so the reseeded store does not silently destroy evidence.
func quarantineDocument(path string) {
	target := path + ".corrupt"
	if err := os.Rename(path, target); err != nil {
		log.Error().Err(err).Str("path", path).Msg("failed to quarantine corrupt store file")
		return
	}
	log.Error().Str("path", path).Str("quarantined", target).Msg("corrupt store file quarantined")
}
