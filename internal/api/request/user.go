package request

type CreateUser struct {
	Email      string  `json:"email" validate:"required,email"`
	Name       string  `json:"name" validate:"required,max=200"`
	Role       string  `json:"role" validate:"required,oneof=developer team_lead admin"`
	TeamLeadID *string `json:"team_lead_id" validate:"omitempty"`
}
