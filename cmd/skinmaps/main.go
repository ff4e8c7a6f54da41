package main

import (
	"bufio"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"avatar-morph/internal/batch"
	"avatar-morph/internal/config"
	"avatar-morph/internal/logging"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

// presetTones spans the light to deep range when no tones are given.
var presetTones = []string{
	"light=#ffe0bd",
	"fair=#f1c27d",
	"medium=#e0ac69",
	"tan=#c68642",
	"brown=#8d5524",
	"deep=#3b2219",
}

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	tonesFlag := flag.String("tones", "", "Comma-separated tones, each hex or name=hex")
	tonesFile := flag.String("tones-file", "", "File with one tone per line (hex or name=hex)")
	outputDir := flag.String("output", "", "Output directory (default: skin-maps)")
	format := flag.String("format", "", "Output format: webp or tga (default: webp)")
	detail := flag.String("detail", "", "Detail level: low, medium, high, ultra")
	workers := flag.Int("workers", 0, "Number of worker goroutines (default: NumCPU)")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")
	verify := flag.Bool("verify", false, "Read every written map back and check its size")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading environment: %v\n", err)
		os.Exit(1)
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir: *outputDir,
		Detail:    *detail,
		Format:    *format,
		LogLevel:  *logLevel,
		Workers:   *workers,
	})

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	texOpts, err := cfg.TextureOptions()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmtOut, err := cfg.ExportFormat()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	specs := splitList(*tonesFlag)
	if *tonesFile != "" {
		lines, err := readLines(*tonesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading tones: %v\n", err)
			os.Exit(1)
		}
		specs = append(specs, lines...)
	}
	if len(specs) == 0 {
		specs = presetTones
	}

	var jobs []batch.Job
	for _, s := range specs {
		job, err := parseJob(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
			continue
		}
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		fmt.Println("No tones to export.")
		os.Exit(0)
	}

	fmt.Printf("Skin maps -> %s (%s, %dpx)\n", strings.ToUpper(string(fmtOut)), texOpts.Detail, texOpts.Size())
	fmt.Printf("Tones: %d, Workers: %d\n", len(jobs), cfg.Workers)
	fmt.Printf("Output: %s\n", cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	start := time.Now()

	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Options:   texOpts,
		Format:    fmtOut,
		Workers:   cfg.Workers,
		Progress:  2 * time.Second,
	}, jobs)

	elapsed := time.Since(start)
	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Done in %.1fs\n", elapsed.Seconds())

	// Count results
	success, failed := 0, 0
	for _, r := range results {
		if r.Success {
			success++
			fmt.Printf("  %-10s %s  %-6s %d files\n", r.Name, r.Hex, r.Bucket, len(r.Files))
		} else {
			failed++
		}
	}
	fmt.Printf("Exported: %d/%d\n", success, len(jobs))

	if *verify {
		bad := verifyMaps(cfg.OutputDir, results)
		fmt.Printf("Verified: %d bad file(s)\n", bad)
		failed += bad
	}

	if failed > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, r := range results {
			if !r.Success {
				fmt.Printf("  %s: %s\n", r.Name, r.Error)
			}
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, results); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}

func verifyMaps(dir string, results []batch.Result) int {
	bad := 0
	for _, r := range results {
		for _, rel := range r.Files {
			tex, err := texgen.Load(filepath.Join(dir, filepath.FromSlash(rel)))
			switch {
			case err != nil:
				fmt.Fprintf(os.Stderr, "  %s: %v\n", rel, err)
				bad++
			case tex.Image.Rect.Dx() != r.Size || tex.Image.Rect.Dy() != r.Size:
				fmt.Fprintf(os.Stderr, "  %s: %dx%d, want %d\n", rel, tex.Image.Rect.Dx(), tex.Image.Rect.Dy(), r.Size)
				bad++
			}
		}
	}
	return bad
}

func parseJob(spec string) (batch.Job, error) {
	name, hex, ok := strings.Cut(spec, "=")
	if !ok {
		name, hex = "", spec
	}
	t, err := skintone.FromHex(hex)
	if err != nil {
		return batch.Job{}, err
	}
	return batch.Job{Name: strings.TrimSpace(name), Tone: t}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") && !isHex(line) {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// isHex distinguishes "#c68642" from a comment line.
func isHex(line string) bool {
	_, err := skintone.FromHex(line)
	return err == nil
}
