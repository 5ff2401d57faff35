package model

import "time"

// DBInstance is a registered target database. ConnectionString holds the
// encrypted connection target; it is write-only from the API's perspective
// and never serialized into responses.
type DBInstance struct {
	ID                  string    `json:"id" db:"id"`
	Name                string    `json:"name" db:"name"`
	ConnectionEncrypted string    `json:"-" db:"connection_encrypted"`
	Database            string    `json:"database" db:"database_name"`
	Description         string    `json:"description" db:"description"`
	IsActive            bool      `json:"is_active" db:"is_active"`
	CreatedBy           string    `json:"created_by" db:"created_by"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}
