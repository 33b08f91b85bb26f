// Package nox implements the core of the NOx prediction façade: the
// sensor-reading schema, the closed set of operating bands, the per-band
// feature and model registries, and the service that projects a reading
// onto a band's trained feature order and runs its model.
package nox

import "fmt"

// Band identifies the turbine operating range a request targets. The set
// is closed: each band has its own trained model and feature order,
// exported by the training pipeline under fixed artifact names.
type Band string

const (
	// BandFull is trained on the entire operating range.
	BandFull Band = "full"
	// BandMidLoad is trained on the 130-136 MWh energy-yield band.
	BandMidLoad Band = "130_136"
	// BandHighLoad is trained on yields of 160 MWh and above.
	BandHighLoad Band = "160p"
)

// Bands returns the closed set in serving order.
func Bands() []Band {
	return []Band{BandFull, BandMidLoad, BandHighLoad}
}

// ParseBand maps an external identifier onto the closed enumeration.
func ParseBand(s string) (Band, error) {
	switch b := Band(s); b {
	case BandFull, BandMidLoad, BandHighLoad:
		return b, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBand, s)
}

func (b Band) String() string { return string(b) }

// Artifact names follow the training pipeline's export layout.
var artifactFiles = map[Band]struct {
	metadata string
	model    string
}{
	BandFull:     {"model_info.json", "nox_xgb_v1.model"},
	BandMidLoad:  {"model_info_130_136.json", "nox_xgb_130_136.model"},
	BandHighLoad: {"model_info_160p.json", "nox_xgb_160p.model"},
}

// MetadataFile names the band's feature-metadata artifact.
func (b Band) MetadataFile() string { return artifactFiles[b].metadata }

// ModelFile names the band's serialized model artifact.
func (b Band) ModelFile() string { return artifactFiles[b].model }
