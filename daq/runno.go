/*
 * MIT License
 *
 * Copyright (c) 2026 BeeBeansTechnologies
 */

package daq

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultRunNoFile is the filename LoadRunNo/SaveRunNo use when the
// caller wants the conventional location inside a base directory.
const DefaultRunNoFile = "run.no"

// LoadRunNo reads the decimal run number stored at path, returning 0
// if the file does not exist yet (the first run is number 0).
func LoadRunNo(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("daq: read run number: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("daq: parse run number %q: %w", text, err)
	}
	return n, nil
}

// SaveRunNo persists runNo to path atomically: it writes to a
// temporary file in the same directory and renames it into place, so
// a crash mid-write never leaves a truncated run number behind.
func SaveRunNo(path string, runNo int) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".runno-*")
	if err != nil {
		return fmt.Errorf("daq: create temp run number file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(strconv.Itoa(runNo)); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("daq: write run number: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("daq: close run number file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("daq: rename run number file: %w", err)
	}
	return nil
}
