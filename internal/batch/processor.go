// Package batch exports procedural skin maps for many tones with a worker pool.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"avatar-morph/internal/logging"
	"avatar-morph/internal/skinmodel"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

// Config holds all shared settings for a batch run.
type Config struct {
	OutputDir string
	Options   texgen.Options
	Format    texgen.Format
	Workers   int
	// Progress is the reporting interval; zero disables progress logging.
	Progress time.Duration
}

// Job is one tone to export. Name becomes the output subdirectory; when
// empty the tone's hex digits are used.
type Job struct {
	Name string
	Tone skintone.Tone
}

// Result holds the outcome of processing one job.
type Result struct {
	Name    string
	Hex     string
	Bucket  skinmodel.Bucket
	Size    int
	Files   []string // relative to OutputDir
	Success bool
	Error   string
}

// Run processes all jobs using a worker pool. Jobs sharing a tone are
// grouped so each tone's maps are generated once; every group owns its maps
// and releases them when written.
func Run(cfg Config, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	groups := groupByTone(jobs, results)
	total := len(groups)
	if total == 0 {
		return results
	}
	var processed atomic.Int64

	workers := max(cfg.Workers, 1)
	start := time.Now()
	log := logging.Logger()

	// Progress reporter
	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					p := processed.Load()
					if p > 0 {
						rate := float64(p) / time.Since(start).Seconds()
						log.Info("batch progress", "tones", p, "total", total, "per_sec", fmt.Sprintf("%.1f", rate))
					}
				}
			}
		}()
	}

	// Worker pool
	groupChan := make(chan []int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range groupChan {
				processGroup(cfg, jobs, idx, results)
				processed.Add(1)
			}
		}()
	}

	// Send work
	for _, g := range groups {
		groupChan <- g
	}
	close(groupChan)

	wg.Wait()
	close(done)

	return results
}

// groupByTone returns job indices grouped by tone key in first-seen order.
// Invalid tones, unsafe names and repeated names fail immediately and join
// no group.
func groupByTone(jobs []Job, results []Result) [][]int {
	var groups [][]int
	byKey := make(map[uint32]int)
	names := make(map[string]int)
	for i, job := range jobs {
		name := job.Name
		if name == "" {
			name = job.Tone.Hex
			if len(name) > 0 && name[0] == '#' {
				name = name[1:]
			}
		}
		results[i] = Result{Name: name, Hex: job.Tone.Hex}
		if err := validName(name); err != nil {
			results[i].Error = err.Error()
			continue
		}
		if first, dup := names[name]; dup {
			results[i].Error = fmt.Sprintf("name %q already used by job %d", name, first)
			continue
		}
		names[name] = i
		if !job.Tone.Valid() {
			results[i].Error = "invalid skin tone"
			continue
		}
		k := job.Tone.Key()
		g, ok := byKey[k]
		if !ok {
			g = len(groups)
			byKey[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// validName accepts names that stay a single directory below OutputDir.
func validName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\:`) || filepath.Base(name) != name || filepath.IsAbs(name) {
		return fmt.Errorf("invalid output name %q", name)
	}
	return nil
}

func processGroup(cfg Config, jobs []Job, idx []int, results []Result) {
	tone := jobs[idx[0]].Tone
	maps := texgen.Generate(tone, cfg.Options)
	defer maps.Dispose()
	bucket := skinmodel.Classify(tone.Luminance())

	for _, i := range idx {
		res := &results[i]
		res.Bucket = bucket
		res.Size = maps.Size

		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, res.Name), 0755); err != nil {
			res.Error = err.Error()
			continue
		}
		for _, tex := range maps.Textures() {
			rel := filepath.Join(res.Name, tex.Name+cfg.Format.Ext())
			if err := writeTexture(filepath.Join(cfg.OutputDir, rel), tex, cfg.Format); err != nil {
				res.Error = err.Error()
				break
			}
			res.Files = append(res.Files, filepath.ToSlash(rel))
		}
		res.Success = res.Error == ""
	}
}
