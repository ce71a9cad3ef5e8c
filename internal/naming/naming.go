// Package naming picks output directory names for generated models.
package naming

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
)

// MaxBaseName caps names derived from URLs.
const MaxBaseName = 50

var unsafeChars = regexp.MustCompile(`[^\p{L}\p{N}_-]`)

// SizeLabel names a size scale. Only the preset scales 0.5 and 2 get their
// own label; any other scale is "medium".
func SizeLabel(scale float64) string {
	switch scale {
	case 0.5:
		return "small"
	case 2.0:
		return "large"
	default:
		return "medium"
	}
}

// ThicknessLabel names a card height in millimetres.
func ThicknessLabel(height float64) string {
	switch {
	case height <= 0.6:
		return "thin"
	case height >= 1.4:
		return "thick"
	default:
		return "medium"
	}
}

// Name returns "<base>-<size>-<thickness>".
func Name(baseName string, thickness, scale float64) string {
	return fmt.Sprintf("%s-%s-%s", baseName, SizeLabel(scale), ThicknessLabel(thickness))
}

// UniqueDir returns a directory under baseDir that is free to write into.
// An existing directory is reused only when it is empty; otherwise " (N)" is
// appended with N counting up from 1. The directory is not created.
//
// The check is not atomic. Callers that may race on one base name should
// hold a Locker for it until the directory is populated.
func UniqueDir(baseDir, baseName string, thickness, scale float64) (string, error) {
	name := Name(baseName, thickness, scale)
	candidate := filepath.Join(baseDir, name)
	for n := 1; ; n++ {
		used, err := inUse(candidate)
		if err != nil {
			return "", fmt.Errorf("naming: check %s: %w", candidate, err)
		}
		if !used {
			return candidate, nil
		}
		candidate = filepath.Join(baseDir, fmt.Sprintf("%s (%d)", name, n))
	}
}

func inUse(dir string) (bool, error) {
	f, err := os.Open(dir)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return false, err
	}
	if !st.IsDir() {
		// A plain file holds the name.
		return true, nil
	}
	if _, err := f.Readdirnames(1); err == io.EOF {
		return false, nil
	} else if err != nil {
		return false, err
	}
	return true, nil
}

// BaseName derives a base name from a generator input. URLs and text keep
// letters, digits, '_' and '-', everything else becomes '_', capped at
// MaxBaseName characters. File paths give their stem.
func BaseName(input string, isText bool) string {
	if isText {
		safe := unsafeChars.ReplaceAllString(input, "_")
		if r := []rune(safe); len(r) > MaxBaseName {
			safe = string(r[:MaxBaseName])
		}
		return safe
	}
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Locker hands out one mutex per name. The zero value is ready to use.
type Locker struct {
	mu    sync.Mutex
	names map[string]*sync.Mutex
}

// Lock blocks until name is free and returns the matching unlock func.
func (l *Locker) Lock(name string) (unlock func()) {
	l.mu.Lock()
	if l.names == nil {
		l.names = make(map[string]*sync.Mutex)
	}
	m, ok := l.names[name]
	if !ok {
		m = &sync.Mutex{}
		l.names[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
