package domain

import "time"

// AuthOutcome classifies a login attempt.
type AuthOutcome string

const (
	AuthOutcomeSuccess     AuthOutcome = "success"
	AuthOutcomeRefused     AuthOutcome = "refused"
	AuthOutcomeUnavailable AuthOutcome = "unavailable"
	AuthOutcomeNetwork     AuthOutcome = "network"
)

// AuthEvent is one entry of the login audit trail. Passwords are never kept.
type AuthEvent struct {
	Email     string
	Outcome   AuthOutcome
	RemoteIP  string
	CreatedAt time.Time
}
