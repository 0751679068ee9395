// Package models defines the data structures for the portfolio intelligence engine.
package models

// PersonaKey is the behavior label assigned to a consumer from their
// repayment-attempt patterns.
type PersonaKey string

const (
	PersonaStable          PersonaKey = "stable"
	PersonaEarlyFinisher   PersonaKey = "early_finisher"
	PersonaRoller          PersonaKey = "roller"
	PersonaVolatile        PersonaKey = "volatile"
	PersonaRepeatDefaulter PersonaKey = "repeat_defaulter"
	PersonaNeverActivated  PersonaKey = "never_activated"
)

// AllPersonas returns every defined persona label.
func AllPersonas() []PersonaKey {
	return []PersonaKey{
		PersonaStable,
		PersonaEarlyFinisher,
		PersonaRoller,
		PersonaVolatile,
		PersonaRepeatDefaulter,
		PersonaNeverActivated,
	}
}

// IsValid checks if the persona is one of the defined labels.
func (p PersonaKey) IsValid() bool {
	for _, valid := range AllPersonas() {
		if p == valid {
			return true
		}
	}
	return false
}

// ConsumerPersona is the per-window classification of one consumer.
// Exactly one label per consumer per window.
type ConsumerPersona struct {
	ConsumerID          string     `json:"consumer_id"`
	Persona             PersonaKey `json:"persona"`
	FirstTrySuccessRate float64    `json:"first_try_success_rate"`
	AvgRetries          float64    `json:"avg_retries"`
	InstalmentCount     int        `json:"instalment_count"`
}

// ZoneKey is the coarse risk band a persona maps into.
type ZoneKey string

const (
	ZoneHealthy        ZoneKey = "healthy"
	ZoneFriction       ZoneKey = "friction"
	ZoneRisk           ZoneKey = "risk"
	ZoneNeverActivated ZoneKey = "never_activated"
)

// ZoneOrder is the fixed presentation order of macro zones.
var ZoneOrder = []ZoneKey{ZoneHealthy, ZoneFriction, ZoneRisk, ZoneNeverActivated}

// ZoneForPersona maps a persona label to its macro zone.
func ZoneForPersona(p PersonaKey) ZoneKey {
	switch p {
	case PersonaStable, PersonaEarlyFinisher:
		return ZoneHealthy
	case PersonaRoller, PersonaVolatile:
		return ZoneFriction
	case PersonaRepeatDefaulter:
		return ZoneRisk
	default:
		return ZoneNeverActivated
	}
}

// ZoneShare is the weighted share of one macro zone within a window, plus
// period-over-period drift when a comparison window was supplied.
type ZoneShare struct {
	Zone     ZoneKey `json:"zone"`
	SharePct float64 `json:"share_pct"`
	DriftPp  float64 `json:"drift_pp"`
}

// ZoneBreakdown is the full macro-zone view of a window.
type ZoneBreakdown struct {
	Zones           []ZoneShare `json:"zones"`
	WeightedByValue bool        `json:"weighted_by_value"`
	ConsumerCount   int         `json:"consumer_count"`
	DriftAvailable  bool        `json:"drift_available"`
}
