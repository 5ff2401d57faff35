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

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, name, role, team_lead_id, api_key_hash, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Role, &u.TeamLeadID, &u.APIKeyHash, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create registers a user and returns the plaintext API key exactly once;
// only its hash is stored.
func (s *UserService) Create(ctx context.Context, in request.CreateUser) (*model.User, string, error) {
	if in.Role == model.RoleDeveloper && in.TeamLeadID == nil {
		return nil, "", &ValidationError{Msg: "a developer needs a team lead"}
	}

	apiKey := platform.NewID()
	u := &model.User{
		ID:         platform.NewID(),
		Email:      in.Email,
		Name:       in.Name,
		Role:       in.Role,
		TeamLeadID: in.TeamLeadID,
		APIKeyHash: crypto.GenericHash(apiKey),
		CreatedAt:  time.Now().UTC(),
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.ID, u.Email, u.Name, u.Role, u.TeamLeadID, u.APIKeyHash, u.CreatedAt,
	)
	if err != nil {
		return nil, "", fmt.Errorf("insert user: %w", err)
	}
	return u, apiKey, nil
}

func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return u, nil
}

// GetByAPIKey authenticates a caller by the hash of the presented key.
func (s *UserService) GetByAPIKey(ctx context.Context, apiKey string) (*model.User, error) {
	u, err := scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE api_key_hash = $1`, crypto.GenericHash(apiKey)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by api key: %w", err)
	}
	return u, nil
}
