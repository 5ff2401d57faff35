package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/SudityaSenaNimmala/Access-Requests/internal/api/request"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/crypto"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/model"
	"github.com/SudityaSenaNimmala/Access-Requests/internal/platform"
)

// DBInstanceService manages the registry of target database instances.
// Connection strings are encrypted at rest and never returned by read
// accessors.
type DBInstanceService struct {
	db         DB
	runner     TargetRunner
	secretsKey []byte
}

func NewDBInstanceService(db DB, runner TargetRunner, secretsKey []byte) *DBInstanceService {
	return &DBInstanceService{db: db, runner: runner, secretsKey: secretsKey}
}

const dbInstanceColumns = `id, name, connection_encrypted, database_name, description, is_active,
	created_by, created_at, updated_at`

func scanDBInstance(row pgx.Row) (*model.DBInstance, error) {
	var inst model.DBInstance
	err := row.Scan(&inst.ID, &inst.Name, &inst.ConnectionEncrypted, &inst.Database,
		&inst.Description, &inst.IsActive, &inst.CreatedBy, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

func (s *DBInstanceService) Create(ctx context.Context, creator *model.User, in request.CreateDBInstance) (*model.DBInstance, error) {
	encrypted, err := crypto.Encrypt([]byte(in.ConnectionString), s.secretsKey)
	if err != nil {
		return nil, fmt.Errorf("encrypt connection string: %w", err)
	}

	now := time.Now().UTC()
	inst := &model.DBInstance{
		ID:                  platform.NewID(),
		Name:                in.Name,
		ConnectionEncrypted: encrypted,
		Database:            in.Database,
		Description:         in.Description,
		IsActive:            true,
		CreatedBy:           creator.ID,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO db_instances (`+dbInstanceColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inst.ID, inst.Name, inst.ConnectionEncrypted, inst.Database, inst.Description,
		inst.IsActive, inst.CreatedBy, inst.CreatedAt, inst.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert db instance: %w", err)
	}
	return inst, nil
}

func (s *DBInstanceService) GetByID(ctx context.Context, id string) (*model.DBInstance, error) {
	inst, err := scanDBInstance(s.db.QueryRow(ctx,
		`SELECT `+dbInstanceColumns+` FROM db_instances WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get db instance %s: %w", id, err)
	}
	return inst, nil
}

// List returns a page of instances ordered by name. activeOnly restricts the
// page to instances that can currently receive requests.
func (s *DBInstanceService) List(ctx context.Context, pg request.Pagination, activeOnly bool) ([]model.DBInstance, bool, error) {
	sql := `SELECT ` + dbInstanceColumns + ` FROM db_instances`
	if activeOnly {
		sql += ` WHERE is_active`
	}
	sql += ` ORDER BY name ASC LIMIT $1 OFFSET $2`

	rows, err := s.db.Query(ctx, sql, pg.Limit+1, pg.Offset())
	if err != nil {
		return nil, false, fmt.Errorf("list db instances: %w", err)
	}
	defer rows.Close()

	var instances []model.DBInstance
	for rows.Next() {
		inst, err := scanDBInstance(rows)
		if err != nil {
			return nil, false, fmt.Errorf("scan db instance: %w", err)
		}
		instances = append(instances, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate db instances: %w", err)
	}

	hasMore := len(instances) > pg.Limit
	if hasMore {
		instances = instances[:pg.Limit]
	}
	return instances, hasMore, nil
}

func (s *DBInstanceService) Update(ctx context.Context, id string, in request.UpdateDBInstance) (*model.DBInstance, error) {
	inst, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		inst.Name = *in.Name
	}
	if in.ConnectionString != nil {
		encrypted, err := crypto.Encrypt([]byte(*in.ConnectionString), s.secretsKey)
		if err != nil {
			return nil, fmt.Errorf("encrypt connection string: %w", err)
		}
		inst.ConnectionEncrypted = encrypted
	}
	if in.Database != nil {
		inst.Database = *in.Database
	}
	if in.Description != nil {
		inst.Description = *in.Description
	}
	if in.IsActive != nil {
		inst.IsActive = *in.IsActive
	}
	inst.UpdatedAt = time.Now().UTC()

	_, err = s.db.Exec(ctx,
		`UPDATE db_instances
		 SET name = $2, connection_encrypted = $3, database_name = $4, description = $5,
		     is_active = $6, updated_at = $7
		 WHERE id = $1`,
		inst.ID, inst.Name, inst.ConnectionEncrypted, inst.Database, inst.Description,
		inst.IsActive, inst.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update db instance %s: %w", id, err)
	}
	return inst, nil
}

// Delete removes the instance. Requests that referenced it keep their
// denormalized instance name for audit; their db_instance_id is detached by
// the foreign key's ON DELETE SET NULL.
func (s *DBInstanceService) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM db_instances WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete db instance %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TestConnection resolves a connection to the instance and enumerates its
// collection names. Side-effect free: no user-submitted operation runs and
// nothing is persisted.
func (s *DBInstanceService) TestConnection(ctx context.Context, id string) ([]string, error) {
	inst, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.runner.TestConnection(ctx, inst)
}
