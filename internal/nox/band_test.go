package nox

import (
	"errors"
	"testing"
)

func TestParseBand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    Band
		wantErr bool
	}{
		{name: "full range", input: "full", want: BandFull},
		{name: "mid load", input: "130_136", want: BandMidLoad},
		{name: "high load", input: "160p", want: BandHighLoad},
		{name: "unknown identifier", input: "131_140", wantErr: true},
		{name: "case sensitive", input: "FULL", wantErr: true},
		{name: "empty string", input: "", wantErr: true},
		{name: "whitespace", input: " full", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBand(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for input %q, got band %q", tt.input, got)
				}
				if !errors.Is(err, ErrUnknownBand) {
					t.Errorf("expected ErrUnknownBand for input %q, got %v", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error for input %q: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("expected band %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBands(t *testing.T) {
	t.Parallel()

	bands := Bands()
	want := []Band{BandFull, BandMidLoad, BandHighLoad}
	if len(bands) != len(want) {
		t.Fatalf("expected %d bands, got %d", len(want), len(bands))
	}
	for i, b := range want {
		if bands[i] != b {
			t.Errorf("expected band %q at index %d, got %q", b, i, bands[i])
		}
	}
}

func TestBandArtifactFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		band     Band
		metadata string
		model    string
	}{
		{BandFull, "model_info.json", "nox_xgb_v1.model"},
		{BandMidLoad, "model_info_130_136.json", "nox_xgb_130_136.model"},
		{BandHighLoad, "model_info_160p.json", "nox_xgb_160p.model"},
	}

	for _, tt := range tests {
		if got := tt.band.MetadataFile(); got != tt.metadata {
			t.Errorf("band %q: expected metadata file %q, got %q", tt.band, tt.metadata, got)
		}
		if got := tt.band.ModelFile(); got != tt.model {
			t.Errorf("band %q: expected model file %q, got %q", tt.band, tt.model, got)
		}
	}
}
