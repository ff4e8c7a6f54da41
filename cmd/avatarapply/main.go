package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"avatar-morph/internal/avatar"
	"avatar-morph/internal/config"
	"avatar-morph/internal/limbmass"
	"avatar-morph/internal/logging"
	"avatar-morph/internal/morph"
	"avatar-morph/internal/scene"
	"avatar-morph/internal/skintone"
	"avatar-morph/internal/texgen"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	mappingFile := flag.String("mapping", "", "Path to the morphology mapping JSON")
	savedFile := flag.String("saved", "", "Saved avatar payload JSON")
	liveFile := flag.String("live", "", "Live avatar payload JSON")
	overrideFile := flag.String("override", "", "Override payload JSON (used with -projection)")
	projection := flag.Bool("projection", false, "Read-only projection session: the override payload wins")
	toneHex := flag.String("tone", "", "Skin tone hex handed in directly")
	logLevel := flag.String("log", "", "Log level: debug, info, warn, error")

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
		MappingFile: *mappingFile,
		LogLevel:    *logLevel,
	})

	logging.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if cfg.MappingFile == "" {
		fmt.Fprintln(os.Stderr, "Error: no morphology mapping. Use -mapping flag or config.json.")
		os.Exit(1)
	}
	data, err := os.ReadFile(cfg.MappingFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading mapping: %v\n", err)
		os.Exit(1)
	}
	mapping, err := morph.ParseMapping(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing mapping: %v\n", err)
		os.Exit(1)
	}

	limbCfg, err := cfg.LimbMassConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading limb-mass config: %v\n", err)
		os.Exit(1)
	}
	limbs, err := limbmass.NewCalculator(limbCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building limb-mass calculator: %v\n", err)
		os.Exit(1)
	}

	gender, err := cfg.Gender()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var cache *texgen.Cache
	if cfg.Procedural() {
		texOpts, err := cfg.TextureOptions()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		cache = texgen.NewCache(cfg.CacheCapacity, texOpts)
		defer cache.Dispose()
	}

	proc := avatar.NewProcessor(morph.NewValidator(mapping), limbs, cache, avatar.Options{
		DefaultGender:      gender,
		ToneTolerance:      cfg.ToneTolerance,
		ProceduralTextures: cfg.Procedural(),
	})

	in := avatar.Input{
		Saved:      readOptional(*savedFile),
		Live:       readOptional(*liveFile),
		Override:   readOptional(*overrideFile),
		Projection: *projection,
	}
	if *toneHex != "" {
		t, err := skintone.FromHex(*toneHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		in.Tone = &t
	}

	root := scene.NewReferenceRig()
	out, err := proc.Process(root, in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	printOutcome(out)

	if out.Materials != nil && !out.Materials.Success {
		os.Exit(1)
	}
}

func readOptional(path string) []byte {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading payload: %v\n", err)
		os.Exit(1)
	}
	return data
}

func printOutcome(out avatar.Outcome) {
	fallback := ""
	if out.GenderFallback {
		fallback = " (fallback)"
	}
	fmt.Printf("Strategy: %s\n", out.Strategy)
	fmt.Printf("Gender:   %s%s\n", out.Gender, fallback)
	fmt.Println("------------------------------------------------------------")

	names := make([]string, 0, len(out.Morph))
	for n := range out.Morph {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Printf("  %-8s %s\n", n, out.Morph[n])
	}
	fmt.Printf("Morphs: %s\n", out.MorphTotal)
	fmt.Println(out.Limbs)

	if out.Tone != nil {
		fmt.Printf("Tone: %s from %s\n", out.Tone.Tone.Hex, out.Tone.Source)
		for _, w := range out.Tone.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
	} else {
		fmt.Println("Tone: none")
	}
	if out.Materials != nil {
		fmt.Println(out.Materials)
		for _, e := range out.Materials.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	if len(out.Skipped) > 0 {
		fmt.Printf("Skipped entries: %v\n", out.Skipped)
	}
}
