package nox

// SensorReading is one row of gas-turbine process sensors. All nine
// fields are required; JSON keys are the dataset's column mnemonics.
type SensorReading struct {
	AT   float64 `json:"AT"`   // ambient temperature, C
	AP   float64 `json:"AP"`   // ambient pressure, mbar
	AH   float64 `json:"AH"`   // ambient humidity, %
	AFDP float64 `json:"AFDP"` // air filter differential pressure, mbar
	GTEP float64 `json:"GTEP"` // gas turbine exhaust pressure, mbar
	TIT  float64 `json:"TIT"`  // turbine inlet temperature, C
	TAT  float64 `json:"TAT"`  // turbine after temperature, C
	CDP  float64 `json:"CDP"`  // compressor discharge pressure, mbar
	TEY  float64 `json:"TEY"`  // turbine energy yield, MWh
}

var fieldNames = [...]string{"AT", "AP", "AH", "AFDP", "GTEP", "TIT", "TAT", "CDP", "TEY"}

// FieldNames returns the reading's field names in dataset column order.
func FieldNames() []string {
	return append([]string(nil), fieldNames[:]...)
}

// IsField reports whether name is one of the reading's nine fields.
func IsField(name string) bool {
	_, ok := SensorReading{}.Value(name)
	return ok
}

// Value returns the named field's value. The second result is false for
// names outside the reading schema.
func (r SensorReading) Value(name string) (float64, bool) {
	switch name {
	case "AT":
		return r.AT, true
	case "AP":
		return r.AP, true
	case "AH":
		return r.AH, true
	case "AFDP":
		return r.AFDP, true
	case "GTEP":
		return r.GTEP, true
	case "TIT":
		return r.TIT, true
	case "TAT":
		return r.TAT, true
	case "CDP":
		return r.CDP, true
	case "TEY":
		return r.TEY, true
	}
	return 0, false
}
