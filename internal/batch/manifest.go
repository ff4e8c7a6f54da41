package batch

import (
	"encoding/json"
	"fmt"
	"os"

	"avatar-morph/internal/scene"
	"avatar-morph/internal/texgen"
)

// ManifestEntry represents one exported tone in the output manifest.
type ManifestEntry struct {
	Name   string   `json:"name"`
	Hex    string   `json:"hex"`
	Bucket string   `json:"bucket"`
	Size   int      `json:"size"`
	Files  []string `json:"files"`
}

// WriteManifest writes manifest.json listing the successful results.
func WriteManifest(path string, results []Result) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		entries = append(entries, ManifestEntry{
			Name:   r.Name,
			Hex:    r.Hex,
			Bucket: string(r.Bucket),
			Size:   r.Size,
			Files:  r.Files,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeTexture(path string, tex *scene.Texture, f texgen.Format) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := texgen.Encode(out, tex, f); err != nil {
		out.Close()
		return fmt.Errorf("%s: %w", f, err)
	}
	return out.Close()
}
