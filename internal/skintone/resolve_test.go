package skintone

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"avatar-morph/internal/logging"
)

func TestResolvePriority(t *testing.T) {
	scan := FromRGB(200, 160, 130).With(SourceScan, 0.7)
	persisted := FromRGB(202, 161, 131).With(SourcePersisted, 1)
	override := FromRGB(201, 160, 130).With(SourceOverride, 1)
	direct := FromRGB(199, 160, 130).With(SourceDirect, 1)

	tests := []struct {
		name       string
		candidates []Tone
		want       Source
	}{
		{"override first", []Tone{scan, persisted, override, direct}, SourceOverride},
		{"persisted over direct", []Tone{direct, scan, persisted}, SourcePersisted},
		{"direct over scan", []Tone{scan, direct}, SourceDirect},
		{"scan alone", []Tone{scan}, SourceScan},
		{"semantic last", []Tone{
			FromRGB(200, 160, 130).With(SourceSemantic, 0.3),
			FromRGB(200, 160, 130).With(SourceMatch, 0.5),
		}, SourceMatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ok := Resolve(tt.candidates, DefaultTolerance)
			if !ok {
				t.Fatal("no tone resolved")
			}
			if res.Source != tt.want || res.Tone.Source != tt.want {
				t.Errorf("source = %s, want %s", res.Source, tt.want)
			}
			if len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings %v", res.Warnings)
			}
		})
	}
}

func TestResolveSkipsInvalid(t *testing.T) {
	broken := FromRGB(10, 10, 10).With(SourceOverride, 1)
	broken.RGB[0] = 99
	scan := FromRGB(200, 160, 130).With(SourceScan, 0.7)

	res, ok := Resolve([]Tone{broken, scan}, DefaultTolerance)
	if !ok || res.Source != SourceScan {
		t.Fatalf("got %+v, %v; want scan", res, ok)
	}
	if _, ok := Resolve([]Tone{broken}, DefaultTolerance); ok {
		t.Error("resolved with only invalid candidates")
	}
	if _, ok := Resolve(nil, DefaultTolerance); ok {
		t.Error("resolved with no candidates")
	}
}

func TestResolveWarnsOnIncoherence(t *testing.T) {
	var buf bytes.Buffer
	logging.SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { logging.SetLogger(nil) })

	persisted := FromRGB(230, 190, 160).With(SourcePersisted, 1)
	estimate := FromRGB(120, 80, 60).With(SourceEstimate, 0.5)
	near := FromRGB(235, 190, 160).With(SourceScan, 0.9)

	res, ok := Resolve([]Tone{estimate, near, persisted}, DefaultTolerance)
	if !ok || res.Source != SourcePersisted {
		t.Fatalf("got %+v", res)
	}
	if res.Tone.RGB != persisted.RGB {
		t.Errorf("winner changed by incoherent source: %v", res.Tone.RGB)
	}
	if len(res.Warnings) != 1 || !strings.Contains(res.Warnings[0], "estimate") {
		t.Errorf("warnings = %v", res.Warnings)
	}
	if !strings.Contains(buf.String(), "incoherent") {
		t.Errorf("warning not logged: %q", buf.String())
	}
}
