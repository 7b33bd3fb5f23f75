package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PrescribingChangeBand buckets a state's five-year prescribing-rate change.
// The zero value is not a valid band.
type PrescribingChangeBand int

const (
	GreatlyDecreased PrescribingChangeBand = iota + 1
	ModeratelyDecreased
	SlightlyDecreased
	Increased
)

// Bands lists every band in order, most decreased first
var Bands = []PrescribingChangeBand{GreatlyDecreased, ModeratelyDecreased, SlightlyDecreased, Increased}

func (b PrescribingChangeBand) String() string {
	switch b {
	case GreatlyDecreased:
		return "GreatlyDecreased"
	case ModeratelyDecreased:
		return "ModeratelyDecreased"
	case SlightlyDecreased:
		return "SlightlyDecreased"
	case Increased:
		return "Increased"
	}
	return fmt.Sprintf("PrescribingChangeBand(%d)", int(b))
}

// Label is the human-readable chart legend for the band
func (b PrescribingChangeBand) Label() string {
	switch b {
	case GreatlyDecreased:
		return "Greatly decreased (< -3.2)"
	case ModeratelyDecreased:
		return "Moderately decreased (-3.2 to -2.4)"
	case SlightlyDecreased:
		return "Slightly decreased (-2.4 to 0)"
	case Increased:
		return "Increased (>= 0)"
	}
	return b.String()
}

// ParseBand is the inverse of String, case-insensitive
func ParseBand(s string) (PrescribingChangeBand, error) {
	for _, b := range Bands {
		if strings.EqualFold(b.String(), strings.TrimSpace(s)) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown prescribing change band %q", s)
}

func (b PrescribingChangeBand) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *PrescribingChangeBand) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseBand(s)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}
