package entity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RiskBand is the categorical risk classification derived from an entity's
// accumulated total score.
type RiskBand int

const (
	RiskLow RiskBand = iota
	RiskMedium
	RiskHigh
)

// Classification thresholds on the accumulated total score.  Boundary values
// belong to the higher band.
const (
	// HighRiskThreshold marks the total score at which an entity is HIGH.
	HighRiskThreshold = 50

	// MediumRiskThreshold marks the total score at which an entity is
	// MEDIUM; anything below is LOW.
	MediumRiskThreshold = 10
)

// ClassifyScore maps an accumulated total score onto its risk band.
func ClassifyScore(totalScore int) RiskBand {
	switch {
	case totalScore >= HighRiskThreshold:
		return RiskHigh
	case totalScore >= MediumRiskThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// String returns the canonical uppercase band name used in the API, the
// database, and snapshots.
func (r RiskBand) String() string {
	switch r {
	case RiskHigh:
		return "HIGH"
	case RiskMedium:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// Valid reports whether r is one of the defined bands.
func (r RiskBand) Valid() bool {
	return r >= RiskLow && r <= RiskHigh
}

// ParseRiskBand converts a band name (any case) back to its RiskBand.
func ParseRiskBand(s string) (RiskBand, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return RiskLow, nil
	case "MEDIUM":
		return RiskMedium, nil
	case "HIGH":
		return RiskHigh, nil
	default:
		return RiskLow, fmt.Errorf("unknown risk band %q", s)
	}
}

// MarshalJSON encodes the band as its string name.
func (r RiskBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON decodes a band from its string name.
func (r *RiskBand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	band, err := ParseRiskBand(s)
	if err != nil {
		return err
	}
	*r = band
	return nil
}
