package salary

import "strings"

// knownCodes are the ISO-4217 codes the pipeline resolves to. Anything else
// coming back from an extraction capability is treated as unknown.
var knownCodes = map[string]struct{}{
	"USD": {},
	"CAD": {},
	"GBP": {},
	"EUR": {},
}

// canadianMarkers resolve the ambiguous dollar sign: postings located in
// Canada pay CAD, everything else defaults to USD.
var canadianMarkers = []string{
	"canada", "ontario", "quebec", "british columbia", "alberta",
	"toronto", "vancouver", "montreal", "ottawa", "calgary", "waterloo",
	", on", ", bc", ", qc", ", ab",
}

// ResolveSymbol maps a currency symbol or code to an ISO-4217 code. The
// dollar sign is ambiguous and is resolved from the posting location;
// without a Canadian marker it defaults to USD. An empty return means the
// currency stays unknown.
func ResolveSymbol(symbol, location string) string {
	switch strings.ToUpper(strings.TrimSpace(symbol)) {
	case "£", "GBP":
		return "GBP"
	case "€", "EUR":
		return "EUR"
	case "CAD", "C$", "CA$":
		return "CAD"
	case "USD", "US$":
		return "USD"
	case "$":
		if isCanadian(location) {
			return "CAD"
		}
		return "USD"
	default:
		return ""
	}
}

// ValidCode reports whether code is one of the ISO-4217 codes the pipeline
// understands.
func ValidCode(code string) bool {
	_, ok := knownCodes[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

func isCanadian(location string) bool {
	loc := strings.ToLower(location)
	for _, marker := range canadianMarkers {
		if strings.Contains(loc, marker) {
			return true
		}
	}
	return false
}
