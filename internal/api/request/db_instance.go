package request

type CreateDBInstance struct {
	Name             string `json:"name" validate:"required,slug"`
	ConnectionString string `json:"connection_string" validate:"required"`
	Database         string `json:"database" validate:"required"`
	Description      string `json:"description" validate:"omitempty,max=500"`
}

type UpdateDBInstance struct {
	Name             *string `json:"name" validate:"omitempty,slug"`
	ConnectionString *string `json:"connection_string" validate:"omitempty"`
	Database         *string `json:"database" validate:"omitempty"`
	Description      *string `json:"description" validate:"omitempty,max=500"`
	IsActive         *bool   `json:"is_active"`
}
