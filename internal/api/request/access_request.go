package request

type CreateAccessRequest struct {
	DBInstanceID string `json:"db_instance_id" validate:"required"`
	Query        string `json:"query" validate:"required"`
	Reason       string `json:"reason" validate:"required,max=1000"`
}

type RejectAccessRequest struct {
	Comment string `json:"comment" validate:"required,max=1000"`
}

type ApproveAccessRequest struct {
	Comment string `json:"comment" validate:"omitempty,max=1000"`
}

type ResubmitAccessRequest struct {
	DBInstanceID string `json:"db_instance_id" validate:"omitempty"`
	Query        string `json:"query" validate:"omitempty"`
	Reason       string `json:"reason" validate:"omitempty,max=1000"`
}
