package sampler

// Conversion constants for the 10-bit board ADC referenced at 5 V.
const (
	// VRef is the ADC reference voltage.
	VRef = 5.0
	// ADCSpan is the full-scale raw count of the 10-bit converter.
	ADCSpan = 1023.0

	// PHScale converts probe voltage to pH units. The value is carried
	// over from the device firmware, where it is marked as needing
	// calibration against buffer solutions. Keep it literal; nothing
	// derives it.
	PHScale = 3.5
)

// Voltage converts a raw ADC count to volts.
func Voltage(raw int) float64 {
	return float64(raw) * VRef / ADCSpan
}

// PHFromVoltage converts probe voltage to an uncalibrated pH value.
func PHFromVoltage(v float64) float64 {
	return PHScale * v
}
