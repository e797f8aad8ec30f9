package dataset

// ISO 3166-1 alpha-3 codes of the countries shown on the dashboard.
const (
	CodePanama     = "PAN"
	CodeCostaRica  = "CRI"
	CodeNicaragua  = "NIC"
	CodeHonduras   = "HND"
	CodeElSalvador = "SLV"
	CodeGuatemala  = "GTM"
	CodeBelize     = "BLZ"
	CodeMexico     = "MEX"
)

// RecognizedCodes lists the eight retained ISO codes in display order.
//
//nolint:gochecknoglobals // Fixed display order.
var RecognizedCodes = []string{
	CodePanama,
	CodeCostaRica,
	CodeNicaragua,
	CodeHonduras,
	CodeElSalvador,
	CodeGuatemala,
	CodeBelize,
	CodeMexico,
}

//nolint:gochecknoglobals // Compile-time constant lookup table.
var countryNames = map[string]string{
	CodePanama:     "Panama",
	CodeCostaRica:  "Costa Rica",
	CodeNicaragua:  "Nicaragua",
	CodeHonduras:   "Honduras",
	CodeElSalvador: "El Salvador",
	CodeGuatemala:  "Guatemala",
	CodeBelize:     "Belize",
	CodeMexico:     "Mexico",
}

// IsRecognized reports whether code is one of RecognizedCodes.
func IsRecognized(code string) bool {
	_, ok := countryNames[code]
	return ok
}

// CountryName returns the English display name for code, or code itself.
func CountryName(code string) string {
	if name, ok := countryNames[code]; ok {
		return name
	}
	return code
}
