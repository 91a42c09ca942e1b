package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	CalculationKindForcedAbsence = "forced_absence"
	CalculationKindPayoff        = "payoff"
)

// Calculation is an audit record of a computed result.
type Calculation struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Kind      string          `json:"kind" db:"kind"`
	Input     json.RawMessage `json:"input" db:"input"`
	Result    json.RawMessage `json:"result" db:"result"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}
