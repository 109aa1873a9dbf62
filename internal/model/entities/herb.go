package entities

// Herb describes a medicinal herb the classifier can identify.
type Herb struct {
	Name       string `json:"name"`
	Properties string `json:"properties"`
	Uses       string `json:"uses"`
}

// HerbUnknown is returned when a sample matches no known herb.
const HerbUnknown = "Unknown"

// HerbCatalog maps herb names to their medicinal profile.
var HerbCatalog = map[string]Herb{
	"Tulsi": {
		Name:       "Tulsi",
		Properties: "Rich in antioxidants, antimicrobial",
		Uses:       "Helps with cold, cough, respiratory issues",
	},
	"Neem": {
		Name:       "Neem",
		Properties: "Anti-bacterial, antifungal, blood purifier",
		Uses:       "Treats skin diseases, dental issues, boosts immunity",
	},
	"Ashwagandha": {
		Name:       "Ashwagandha",
		Properties: "Adaptogenic, stress reliever",
		Uses:       "Reduces stress, boosts energy, improves sleep",
	},
	HerbUnknown: {
		Name:       HerbUnknown,
		Properties: "Not in dataset",
		Uses:       "Needs further research",
	},
}

// LookupHerb returns the catalog entry for name, falling back to the
// Unknown profile.
func LookupHerb(name string) Herb {
	if h, ok := HerbCatalog[name]; ok {
		return h
	}
	return HerbCatalog[HerbUnknown]
}
