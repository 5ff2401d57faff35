package model

import "time"

// User roles.
const (
	RoleDeveloper = "developer"
	RoleTeamLead  = "team_lead"
	RoleAdmin     = "admin"
)

type User struct {
	ID    string `json:"id" db:"id"`
	Email string `json:"email" db:"email"`
	Name  string `json:"name" db:"name"`
	Role  string `json:"role" db:"role"`
	// TeamLeadID is the developer's assigned reviewer; nil for leads and admins.
	TeamLeadID *string `json:"team_lead_id,omitempty" db:"team_lead_id"`
	// APIKeyHash is the sha256 of the caller's key; the plaintext key is
	// shown once at creation and never stored.
	APIKeyHash string    `json:"-" db:"api_key_hash"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
