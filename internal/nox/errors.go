package nox

import "errors"

// Sentinel errors for the prediction path. ErrBadConfig aborts startup;
// the rest map onto transport statuses at the boundary.
var (
	// ErrBadConfig marks a missing or malformed startup artifact. There is
	// no partial-availability mode: one bad band artifact fails the load.
	ErrBadConfig = errors.New("bad artifact configuration")

	// ErrUnknownBand marks a band identifier outside the closed set. The
	// transport registers one fixed route per band, so seeing this at
	// runtime means a programming error, not bad user input.
	ErrUnknownBand = errors.New("unknown band")

	// ErrFeatureMismatch marks drift between a band's feature order and
	// the reading schema. Never defaulted over: the request fails.
	ErrFeatureMismatch = errors.New("feature order does not match reading schema")

	// ErrInference marks a model invocation failure. Deterministic for a
	// given input, so never retried.
	ErrInference = errors.New("model inference failed")
)
