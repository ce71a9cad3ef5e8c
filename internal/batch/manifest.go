package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// ManifestEntry represents one generated model in the output manifest.
type ManifestEntry struct {
	Name     string `json:"name"`
	Input    string `json:"input"`
	Dir      string `json:"dir"`
	Image    string `json:"image"`
	Metadata string `json:"metadata"`
	SCAD     string `json:"scad"`
	Preview  string `json:"preview"`
}

// WriteManifest writes the successful results to path. File paths are made
// relative to the manifest's directory when possible.
func WriteManifest(path string, results []Result) error {
	base := filepath.Dir(path)
	rel := func(p string) string {
		if r, err := filepath.Rel(base, p); err == nil {
			return filepath.ToSlash(r)
		}
		return p
	}

	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success || len(r.Files) < 4 {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:     r.Name,
			Input:    r.Input,
			Dir:      rel(r.Dir),
			Image:    rel(r.Files[0]),
			Metadata: rel(r.Files[1]),
			SCAD:     rel(r.Files[2]),
			Preview:  rel(r.Files[3]),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
