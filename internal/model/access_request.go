package model

import (
	"encoding/json"
	"time"
)

// AccessRequest is a developer-submitted database query subject to the
// approval workflow. Read queries auto-execute at creation time and are
// persisted already terminal; write queries rest in pending until a team
// lead decides.
type AccessRequest struct {
	ID          string `json:"id" db:"id"`
	DeveloperID string `json:"developer_id" db:"developer_id"`
	TeamLeadID  string `json:"team_lead_id" db:"team_lead_id"`
	// DBInstanceID is nullable: deleting an instance detaches its requests
	// but keeps them for audit via the denormalized DBInstanceName.
	DBInstanceID   *string `json:"db_instance_id,omitempty" db:"db_instance_id"`
	DBInstanceName string  `json:"db_instance_name" db:"db_instance_name"`
	// CollectionName and QueryType are derived from the parsed query at
	// creation time and never independently editable.
	CollectionName string `json:"collection_name" db:"collection_name"`
	QueryType      string `json:"query_type" db:"query_type"`
	QueryCategory  string `json:"query_category" db:"query_category"`
	RawQuery       string `json:"raw_query" db:"raw_query"`
	Reason         string `json:"reason" db:"reason"`
	Status         Status `json:"status" db:"status"`
	AutoExecuted   bool   `json:"auto_executed" db:"auto_executed"`
	ReviewerID     *string `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewComment  *string `json:"review_comment,omitempty" db:"review_comment"`
	// ExecutionResult and ExecutionError are mutually exclusive; at most one
	// is set, and only once Status is executed or failed.
	ExecutionResult json.RawMessage `json:"execution_result,omitempty" db:"execution_result"`
	ExecutionError  *string         `json:"execution_error,omitempty" db:"execution_error"`
	// ResubmittedFrom links a request created through resubmission back to
	// its rejected or failed source.
	ResubmittedFrom *string    `json:"resubmitted_from,omitempty" db:"resubmitted_from"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	DecidedAt       *time.Time `json:"decided_at,omitempty" db:"decided_at"`
}
