package models

import "time"

// AlertLevel is ordered: Low < Medium < High < Critical.
type AlertLevel int

const (
	LevelLow AlertLevel = iota
	LevelMedium
	LevelHigh
	LevelCritical
)

var levelNames = map[AlertLevel]string{
	LevelLow:      "LOW",
	LevelMedium:   "MEDIUM",
	LevelHigh:     "HIGH",
	LevelCritical: "CRITICAL",
}

func (l AlertLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "LOW"
}

// LookupAlertLevel maps a level name to its AlertLevel, reporting
// whether the name is known.
func LookupAlertLevel(s string) (AlertLevel, bool) {
	for level, name := range levelNames {
		if name == s {
			return level, true
		}
	}
	return LevelLow, false
}

// ParseAlertLevel maps a level name to its AlertLevel. Unknown names
// resolve to LevelLow.
func ParseAlertLevel(s string) AlertLevel {
	level, _ := LookupAlertLevel(s)
	return level
}

func (l AlertLevel) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

func (l *AlertLevel) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		s = s[1 : len(s)-1]
	}
	*l = ParseAlertLevel(s)
	return nil
}

// EmergencyAlert tracks the alert lifecycle for a single record.
// ResolvedAt is non-nil exactly when IsResolved is true.
type EmergencyAlert struct {
	ID         string     `json:"id"`
	TweetTID   string     `json:"tweet_tid"`
	Level      AlertLevel `json:"alert_level"`
	IsResolved bool       `json:"is_resolved"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
