package nox

import "testing"

func TestSensorReadingValue(t *testing.T) {
	t.Parallel()

	r := SensorReading{
		AT: 1, AP: 2, AH: 3, AFDP: 4, GTEP: 5, TIT: 6, TAT: 7, CDP: 8, TEY: 9,
	}
	want := map[string]float64{
		"AT": 1, "AP": 2, "AH": 3, "AFDP": 4, "GTEP": 5,
		"TIT": 6, "TAT": 7, "CDP": 8, "TEY": 9,
	}

	for name, expected := range want {
		got, ok := r.Value(name)
		if !ok {
			t.Errorf("expected %q to be a reading field", name)
			continue
		}
		if got != expected {
			t.Errorf("expected %q = %v, got %v", name, expected, got)
		}
	}

	for _, name := range []string{"NOX", "at", "tit", "", "TEY "} {
		if _, ok := r.Value(name); ok {
			t.Errorf("expected %q to be rejected", name)
		}
	}
}

func TestFieldNames(t *testing.T) {
	t.Parallel()

	want := []string{"AT", "AP", "AH", "AFDP", "GTEP", "TIT", "TAT", "CDP", "TEY"}
	got := FieldNames()
	if len(got) != len(want) {
		t.Fatalf("expected %d field names, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i] != name {
			t.Errorf("expected field %q at index %d, got %q", name, i, got[i])
		}
	}

	// Callers get a copy, never the backing array.
	got[0] = "mutated"
	if again := FieldNames(); again[0] != "AT" {
		t.Error("FieldNames should return a fresh copy each call")
	}
}

func TestIsField(t *testing.T) {
	t.Parallel()

	for _, name := range FieldNames() {
		if !IsField(name) {
			t.Errorf("expected %q to be a field", name)
		}
	}
	for _, name := range []string{"NOX_pred", "CO", "afdp", ""} {
		if IsField(name) {
			t.Errorf("expected %q not to be a field", name)
		}
	}
}
