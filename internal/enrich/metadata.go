package enrich

import "encoding/json"

// Metadata is the structured result of AI enrichment for one raw listing.
// Downstream validation reads typed fields; there is no loosely-keyed map
// to probe.
type Metadata struct {
	IsInternship      bool     `json:"is_internship"`
	IsTargetSeason    bool     `json:"is_summer_2026"`
	Category          string   `json:"category"`
	Locations         []string `json:"locations"`
	Sponsorship       string   `json:"sponsorship"`
	RequiresAdvDegree bool     `json:"requires_advanced_degree"`
	RemoteFriendly    bool     `json:"remote_friendly"`
	TechStack         []string `json:"tech_stack"`
	Confidence        float64  `json:"confidence"`
	Industry          string   `json:"industry"`
}

func (m Metadata) MarshalBinary() ([]byte, error) {
	return json.Marshal(m)
}

func (m *Metadata) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, m)
}

// Kind tags how a Result was produced, so callers can distinguish a real
// enrichment from the degraded default without probing field values.
type Kind string

const (
	// KindEnriched means the model answered and the response parsed.
	KindEnriched Kind = "enriched"
	// KindDefault means the API was unavailable, the budget was spent, or
	// no key is configured; the listing passes through with neutral
	// metadata and zero confidence.
	KindDefault Kind = "default"
	// KindRejected means the response could not be parsed; the listing is
	// marked not-an-internship so validation drops it.
	KindRejected Kind = "rejected"
)

type Result struct {
	Kind     Kind
	Metadata Metadata
}

// DefaultMetadata is returned when enrichment degrades. is_internship
// stays true so a dead API never silently empties the board.
func DefaultMetadata() Metadata {
	return Metadata{
		IsInternship: true,
		Category:     "other",
		Sponsorship:  "unknown",
		Industry:     "other",
		Locations:    []string{},
		TechStack:    []string{},
	}
}
