package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/request"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/notify"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/platform"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/query"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/target"
)

// AccessRequestService owns the request lifecycle: parse and classify at
// creation, auto-execute reads, and drive pending write requests through the
// approval state machine. Status changes go through atomic conditional
// updates so concurrent decisions on the same request cannot both win.
type AccessRequestService struct {
	db       DB
	runner   TargetRunner
	notifier Notifier
}

func NewAccessRequestService(db DB, runner TargetRunner, notifier Notifier) *AccessRequestService {
	return &AccessRequestService{db: db, runner: runner, notifier: notifier}
}

const accessRequestColumns = `id, developer_id, team_lead_id, db_instance_id, db_instance_name,
	collection_name, query_type, query_category, raw_query, reason, status, auto_executed,
	reviewer_id, review_comment, execution_result, execution_error, resubmitted_from,
	created_at, decided_at`

func scanAccessRequest(row pgx.Row) (*model.AccessRequest, error) {
	var ar model.AccessRequest
	err := row.Scan(&ar.ID, &ar.DeveloperID, &ar.TeamLeadID, &ar.DBInstanceID, &ar.DBInstanceName,
		&ar.CollectionName, &ar.QueryType, &ar.QueryCategory, &ar.RawQuery, &ar.Reason,
		&ar.Status, &ar.AutoExecuted, &ar.ReviewerID, &ar.ReviewComment,
		&ar.ExecutionResult, &ar.ExecutionError, &ar.ResubmittedFrom,
		&ar.CreatedAt, &ar.DecidedAt)
	if err != nil {
		return nil, err
	}
	return &ar, nil
}

// Create parses, classifies, and persists a new request for the developer.
// Parse failures abort the create; nothing is persisted. Read operations
// execute immediately and the request lands already in executed or failed;
// writes land in pending for the developer's team lead.
func (s *AccessRequestService) Create(ctx context.Context, developer *model.User, in request.CreateAccessRequest) (*model.AccessRequest, error) {
	leadID, err := reviewerFor(developer)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, developer, in, leadID, nil)
}

func (s *AccessRequestService) create(ctx context.Context, developer *model.User, in request.CreateAccessRequest, leadID string, resubmittedFrom *string) (*model.AccessRequest, error) {
	op, err := query.Parse(in.Query)
	if err != nil {
		return nil, err
	}
	cls := query.Classify(op.Kind)

	inst, err := s.instanceByID(ctx, in.DBInstanceID)
	if err != nil {
		return nil, err
	}
	if !inst.IsActive {
		return nil, &ValidationError{Msg: fmt.Sprintf("database instance %q is inactive", inst.Name)}
	}

	ar := &model.AccessRequest{
		ID:              platform.NewID(),
		DeveloperID:     developer.ID,
		TeamLeadID:      leadID,
		DBInstanceID:    &inst.ID,
		DBInstanceName:  inst.Name,
		CollectionName:  op.Collection,
		QueryType:       string(op.Kind),
		QueryCategory:   cls.Category,
		RawQuery:        in.Query,
		Reason:          in.Reason,
		Status:          model.StatusPending,
		ResubmittedFrom: resubmittedFrom,
		CreatedAt:       time.Now().UTC(),
	}

	if cls.AutoExecute {
		ar.AutoExecuted = true
		res, runErr := s.runner.Run(ctx, inst, op)
		if runErr != nil {
			msg := runErr.Error()
			ar.Status = model.StatusFailed
			ar.ExecutionError = &msg
		} else {
			payload, mErr := json.Marshal(res)
			if mErr != nil {
				return nil, fmt.Errorf("marshal execution result: %w", mErr)
			}
			ar.Status = model.StatusExecuted
			ar.ExecutionResult = payload
		}
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO access_requests (`+accessRequestColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		ar.ID, ar.DeveloperID, ar.TeamLeadID, ar.DBInstanceID, ar.DBInstanceName,
		ar.CollectionName, ar.QueryType, ar.QueryCategory, ar.RawQuery, ar.Reason,
		ar.Status, ar.AutoExecuted, ar.ReviewerID, ar.ReviewComment,
		ar.ExecutionResult, ar.ExecutionError, ar.ResubmittedFrom,
		ar.CreatedAt, ar.DecidedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert access request: %w", err)
	}

	s.publish(ctx, ar)
	return ar, nil
}

// Approve claims a pending request, executes its query, and commits the
// outcome. Any failure before the executor runs releases the claim so the
// request stays pending and the decision can be retried; once execution has
// happened the outcome is final.
func (s *AccessRequestService) Approve(ctx context.Context, reviewer *model.User, id, comment string) (*model.AccessRequest, error) {
	if err := s.claim(ctx, id); err != nil {
		return nil, err
	}

	ar, err := s.getByID(ctx, id)
	if err != nil {
		s.release(ctx, id)
		return nil, err
	}

	op, inst, prepErr := s.prepareExecution(ctx, ar)
	if prepErr != nil {
		s.release(ctx, id)
		return nil, prepErr
	}

	res, runErr := s.runner.Run(ctx, inst, op)
	var connErr *target.ConnectionError
	if errors.As(runErr, &connErr) {
		s.release(ctx, id)
		return nil, runErr
	}
	if runErr != nil {
		return s.finish(ctx, ar, reviewer, comment, nil, runErr.Error())
	}

	payload, err := json.Marshal(res)
	if err != nil {
		return s.finish(ctx, ar, reviewer, comment, nil, fmt.Sprintf("marshal execution result: %v", err))
	}
	return s.finish(ctx, ar, reviewer, comment, payload, "")
}

// Reject moves a pending request to rejected. The comment is required; the
// developer needs to know why before resubmitting.
func (s *AccessRequestService) Reject(ctx context.Context, reviewer *model.User, id, comment string) (*model.AccessRequest, error) {
	if comment == "" {
		return nil, &ValidationError{Msg: "a rejection comment is required"}
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE access_requests SET status = $2, reviewer_id = $3, review_comment = $4, decided_at = $5
		 WHERE id = $1 AND status = $6`,
		id, model.StatusRejected, reviewer.ID, comment, time.Now().UTC(), model.StatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("reject request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, s.decisionConflict(ctx, id)
	}

	ar, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, ar)
	return ar, nil
}

// Resubmit creates a brand-new request from a rejected or failed one. The
// source record is never mutated; the new request goes through the same
// parse, classify, and auto-execute flow as any other create.
func (s *AccessRequestService) Resubmit(ctx context.Context, developer *model.User, sourceID string, in request.ResubmitAccessRequest) (*model.AccessRequest, error) {
	src, err := s.getByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if src.DeveloperID != developer.ID {
		return nil, ErrNotFound
	}
	if !src.Status.Resubmittable() {
		return nil, &ConflictError{RequestID: sourceID, Expected: "rejected or failed", Actual: string(src.Status)}
	}

	eff := request.CreateAccessRequest{
		Query:  src.RawQuery,
		Reason: src.Reason,
	}
	if src.DBInstanceID != nil {
		eff.DBInstanceID = *src.DBInstanceID
	}
	if in.DBInstanceID != "" {
		eff.DBInstanceID = in.DBInstanceID
	}
	if in.Query != "" {
		eff.Query = in.Query
	}
	if in.Reason != "" {
		eff.Reason = in.Reason
	}
	if eff.DBInstanceID == "" {
		return nil, &ValidationError{Msg: "the original database instance was deleted; specify a new one"}
	}

	// The new request keeps the original reviewer even if the developer's
	// lead assignment changed in between.
	return s.create(ctx, developer, eff, src.TeamLeadID, &src.ID)
}

// Get returns the request when it is visible to the caller. Developers see
// their own requests, team leads additionally their team's, admins all.
func (s *AccessRequestService) Get(ctx context.Context, caller *model.User, id string) (*model.AccessRequest, error) {
	ar, err := s.getByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(ar, caller) {
		return nil, ErrNotFound
	}
	return ar, nil
}

// List returns a page of requests matching params, newest first by default.
// Scope fields in params (DeveloperID, TeamLeadID) come from the auth
// context; an admin listing leaves both empty.
func (s *AccessRequestService) List(ctx context.Context, params request.ListParams) ([]model.AccessRequest, bool, error) {
	sql := `SELECT ` + accessRequestColumns + ` FROM access_requests WHERE 1=1`
	var args []any
	argIdx := 1

	addFilter := func(clause string, value any) {
		sql += fmt.Sprintf(clause, argIdx)
		args = append(args, value)
		argIdx++
	}

	if params.DeveloperID != "" {
		addFilter(` AND developer_id = $%d`, params.DeveloperID)
	}
	if params.TeamLeadID != "" {
		addFilter(` AND team_lead_id = $%d`, params.TeamLeadID)
	}
	if params.Status != "" {
		addFilter(` AND status = $%d`, params.Status)
	}
	if params.Category != "" {
		addFilter(` AND query_category = $%d`, params.Category)
	}
	if params.QueryType != "" {
		addFilter(` AND query_type = $%d`, params.QueryType)
	}
	if params.DBInstanceID != "" {
		addFilter(` AND db_instance_id = $%d`, params.DBInstanceID)
	}
	if params.Collection != "" {
		addFilter(` AND collection_name = $%d`, params.Collection)
	}
	if params.From != nil {
		addFilter(` AND created_at >= $%d`, *params.From)
	}
	if params.To != nil {
		addFilter(` AND created_at <= $%d`, *params.To)
	}

	sortCol := "created_at"
	switch params.Sort {
	case "decided_at":
		sortCol = "decided_at"
	case "status":
		sortCol = "status"
	case "created_at":
		sortCol = "created_at"
	}
	order := "DESC"
	if params.Order == "asc" {
		order = "ASC"
	}
	sql += fmt.Sprintf(` ORDER BY %s %s`, sortCol, order)
	sql += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, params.Limit+1, params.Offset())

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, false, fmt.Errorf("list access requests: %w", err)
	}
	defer rows.Close()

	var requests []model.AccessRequest
	for rows.Next() {
		ar, err := scanAccessRequest(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan access request: %w", err)
		}
		requests = append(requests, *ar)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate access requests: %w", err)
	}

	hasMore := len(requests) > params.Limit
	if hasMore {
		requests = requests[:params.Limit]
	}
	return requests, hasMore, nil
}

// claim atomically moves id from pending to approved. Exactly one of two
// concurrent claims can win; the loser gets a ConflictError carrying the
// status the row actually holds.
func (s *AccessRequestService) claim(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE access_requests SET status = $2 WHERE id = $1 AND status = $3`,
		id, model.StatusApproved, model.StatusPending,
	)
	if err != nil {
		return fmt.Errorf("claim request %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return s.decisionConflict(ctx, id)
	}
	return nil
}

// release undoes a claim, putting the request back in pending so the
// decision can be retried. Best-effort: the row may already be final. Runs
// detached from the caller's deadline so a canceled approve still reverts.
func (s *AccessRequestService) release(ctx context.Context, id string) {
	ctx = context.WithoutCancel(ctx)
	_, _ = s.db.Exec(ctx,
		`UPDATE access_requests SET status = $2 WHERE id = $1 AND status = $3`,
		id, model.StatusPending, model.StatusApproved,
	)
}

// finish commits the execution outcome on a claimed request. Exactly one of
// resultJSON and execError is set.
func (s *AccessRequestService) finish(ctx context.Context, ar *model.AccessRequest, reviewer *model.User, comment string, resultJSON []byte, execError string) (*model.AccessRequest, error) {
	status := model.StatusExecuted
	var errPtr *string
	if execError != "" {
		status = model.StatusFailed
		errPtr = &execError
	}
	var commentPtr *string
	if comment != "" {
		commentPtr = &comment
	}
	if !model.StatusApproved.CanTransitionTo(status) {
		return nil, fmt.Errorf("finalize request %s: illegal transition to %s", ar.ID, status)
	}

	_, err := s.db.Exec(ctx,
		`UPDATE access_requests
		 SET status = $2, reviewer_id = $3, review_comment = $4, execution_result = $5,
		     execution_error = $6, decided_at = $7
		 WHERE id = $1 AND status = $8`,
		ar.ID, status, reviewer.ID, commentPtr, resultJSON, errPtr, time.Now().UTC(), model.StatusApproved,
	)
	if err != nil {
		return nil, fmt.Errorf("finalize request %s: %w", ar.ID, err)
	}

	out, err := s.getByID(ctx, ar.ID)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, out)
	return out, nil
}

// prepareExecution reparses the stored query and loads its instance before
// an approval-path execution. The category check reruns here so a write that
// somehow reached auto-execute classification would still be caught by the
// approval gate having been mandatory for it.
func (s *AccessRequestService) prepareExecution(ctx context.Context, ar *model.AccessRequest) (*query.Operation, *model.DBInstance, error) {
	op, err := query.Parse(ar.RawQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("stored query no longer parses: %w", err)
	}
	if cls := query.Classify(op.Kind); cls.Category != ar.QueryCategory {
		return nil, nil, fmt.Errorf("stored category %q does not match operation %q", ar.QueryCategory, op.Kind)
	}

	if ar.DBInstanceID == nil {
		return nil, nil, &ValidationError{Msg: "the database instance for this request was deleted"}
	}
	inst, err := s.instanceByID(ctx, *ar.DBInstanceID)
	if err != nil {
		return nil, nil, err
	}
	if !inst.IsActive {
		return nil, nil, &ValidationError{Msg: fmt.Sprintf("database instance %q is inactive", inst.Name)}
	}
	return op, inst, nil
}

func (s *AccessRequestService) getByID(ctx context.Context, id string) (*model.AccessRequest, error) {
	ar, err := scanAccessRequest(s.db.QueryRow(ctx,
		`SELECT `+accessRequestColumns+` FROM access_requests WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get request %s: %w", id, err)
	}
	return ar, nil
}

func (s *AccessRequestService) instanceByID(ctx context.Context, id string) (*model.DBInstance, error) {
	inst, err := scanDBInstance(s.db.QueryRow(ctx,
		`SELECT `+dbInstanceColumns+` FROM db_instances WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ValidationError{Msg: "unknown database instance"}
	}
	if err != nil {
		return nil, fmt.Errorf("get instance %s: %w", id, err)
	}
	return inst, nil
}

// decisionConflict tells a failed conditional update apart: the row either
// does not exist or is no longer pending. The conflict reports the status
// the row actually holds.
func (s *AccessRequestService) decisionConflict(ctx context.Context, id string) error {
	ar, err := s.getByID(ctx, id)
	if err != nil {
		return err
	}
	return &ConflictError{RequestID: id, Expected: string(model.StatusPending), Actual: string(ar.Status)}
}

func (s *AccessRequestService) publish(ctx context.Context, ar *model.AccessRequest) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(ctx, notify.Event{
		RequestID:    ar.ID,
		Status:       ar.Status,
		AutoExecuted: ar.AutoExecuted,
		UserIDs:      []string{ar.DeveloperID, ar.TeamLeadID},
	})
}

// reviewerFor picks the team lead responsible for a developer's requests.
// Leads and admins review their own submissions.
func reviewerFor(u *model.User) (string, error) {
	if u.TeamLeadID != nil {
		return *u.TeamLeadID, nil
	}
	if u.Role == model.RoleTeamLead || u.Role == model.RoleAdmin {
		return u.ID, nil
	}
	return "", &ValidationError{Msg: "no team lead assigned"}
}

func visibleTo(ar *model.AccessRequest, caller *model.User) bool {
	switch caller.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTeamLead:
		return ar.TeamLeadID == caller.ID || ar.DeveloperID == caller.ID
	default:
		return ar.DeveloperID == caller.ID
	}
}
