package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

type checkpointRepo struct {
	pool *pgxpool.Pool
}

// NewCheckpointRepository creates a new CheckpointRepository
func NewCheckpointRepository(pool *pgxpool.Pool) output.CheckpointRepository {
	return &checkpointRepo{pool: pool}
}

const checkpointColumns = `
	id, created_at, updated_at, node_id, process_label, state, spec,
	instance_state, input_buffer, wait_on, child_label, parent_id
`

func (r *checkpointRepo) Create(ctx context.Context, cp *domain.ProcessCheckpoint) error {
	specJSON, err := json.Marshal(cp.Spec)
	if err != nil {
		return fmt.Errorf("marshal spec: %w", err)
	}
	stateJSON, err := json.Marshal(cp.InstanceState)
	if err != nil {
		return fmt.Errorf("marshal instance state: %w", err)
	}
	bufferJSON, err := json.Marshal(cp.InputBuffer)
	if err != nil {
		return fmt.Errorf("marshal input buffer: %w", err)
	}
	waitOnJSON, err := marshalWaitOn(cp.WaitOn)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO process_checkpoint
			(id, created_at, updated_at, node_id, process_label, state, spec,
			 instance_state, input_buffer, wait_on, child_label, parent_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.pool.Exec(ctx, query,
		cp.ID, cp.CreatedAt, cp.UpdatedAt, cp.NodeID, cp.ProcessLabel,
		string(cp.State), specJSON, stateJSON, bufferJSON, waitOnJSON,
		cp.ChildLabel, cp.ParentID,
	)
	if err != nil {
		return fmt.Errorf("create checkpoint: %w", err)
	}
	return nil
}

func (r *checkpointRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ProcessCheckpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM process_checkpoint WHERE id = $1`

	cp, err := scanCheckpoint(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint by id: %w", err)
	}
	return cp, nil
}

func (r *checkpointRepo) GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.ProcessCheckpoint, error) {
	query := `SELECT ` + checkpointColumns + ` FROM process_checkpoint WHERE node_id = $1`

	cp, err := scanCheckpoint(r.pool.QueryRow(ctx, query, nodeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCheckpointNotFound
		}
		return nil, fmt.Errorf("get checkpoint by node id: %w", err)
	}
	return cp, nil
}

func (r *checkpointRepo) List(ctx context.Context, filter output.CheckpointListFilter) ([]*domain.ProcessCheckpoint, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argPos))
		args = append(args, filter.State)
		argPos++
	}
	if filter.ProcessLabel != "" {
		conditions = append(conditions, fmt.Sprintf("process_label = $%d", argPos))
		args = append(args, filter.ProcessLabel)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM process_checkpoint " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count checkpoints: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM process_checkpoint %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		checkpointColumns, where, argPos, argPos+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list checkpoints: %w", err)
	}
	defer rows.Close()

	cps := []*domain.ProcessCheckpoint{}
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan checkpoint: %w", err)
		}
		cps = append(cps, cp)
	}
	return cps, total, rows.Err()
}

func (r *checkpointRepo) Update(ctx context.Context, cp *domain.ProcessCheckpoint) error {
	stateJSON, err := json.Marshal(cp.InstanceState)
	if err != nil {
		return fmt.Errorf("marshal instance state: %w", err)
	}
	bufferJSON, err := json.Marshal(cp.InputBuffer)
	if err != nil {
		return fmt.Errorf("marshal input buffer: %w", err)
	}
	waitOnJSON, err := marshalWaitOn(cp.WaitOn)
	if err != nil {
		return err
	}

	query := `
		UPDATE process_checkpoint
		SET state=$1, instance_state=$2, input_buffer=$3, wait_on=$4, updated_at=NOW()
		WHERE id=$5
	`
	result, err := r.pool.Exec(ctx, query,
		string(cp.State), stateJSON, bufferJSON, waitOnJSON, cp.ID)
	if err != nil {
		return fmt.Errorf("update checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCheckpointNotFound
	}
	return nil
}

func (r *checkpointRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM process_checkpoint WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCheckpointNotFound
	}
	return nil
}

func (r *checkpointRepo) ListWaiting(ctx context.Context, limit int) ([]*domain.ProcessCheckpoint, error) {
	query := `
		SELECT ` + checkpointColumns + `
		FROM process_checkpoint
		WHERE state = $1 AND wait_on IS NOT NULL
		ORDER BY updated_at
		LIMIT $2
	`
	rows, err := r.pool.Query(ctx, query, string(domain.ProcessStateWaiting), limit)
	if err != nil {
		return nil, fmt.Errorf("list waiting checkpoints: %w", err)
	}
	defer rows.Close()

	cps := []*domain.ProcessCheckpoint{}
	for rows.Next() {
		cp, err := scanCheckpoint(rows)
		if err != nil {
			return nil, fmt.Errorf("scan checkpoint: %w", err)
		}
		cps = append(cps, cp)
	}
	return cps, rows.Err()
}

func marshalWaitOn(waitOn *domain.WaitOn) ([]byte, error) {
	if waitOn == nil {
		return nil, nil
	}
	data, err := json.Marshal(waitOn)
	if err != nil {
		return nil, fmt.Errorf("marshal wait-on: %w", err)
	}
	return data, nil
}

func scanCheckpoint(row pgx.Row) (*domain.ProcessCheckpoint, error) {
	var cp domain.ProcessCheckpoint
	var state string
	var specJSON, stateJSON, bufferJSON, waitOnJSON []byte

	err := row.Scan(
		&cp.ID, &cp.CreatedAt, &cp.UpdatedAt, &cp.NodeID, &cp.ProcessLabel,
		&state, &specJSON, &stateJSON, &bufferJSON, &waitOnJSON,
		&cp.ChildLabel, &cp.ParentID,
	)
	if err != nil {
		return nil, err
	}

	cp.State = domain.ProcessState(state)
	if len(specJSON) > 0 {
		if err := json.Unmarshal(specJSON, &cp.Spec); err != nil {
			return nil, fmt.Errorf("unmarshal spec: %w", err)
		}
	}
	if len(stateJSON) > 0 {
		if err := json.Unmarshal(stateJSON, &cp.InstanceState); err != nil {
			return nil, fmt.Errorf("unmarshal instance state: %w", err)
		}
	}
	if cp.InstanceState == nil {
		cp.InstanceState = make(map[string]interface{})
	}
	if len(bufferJSON) > 0 {
		if err := json.Unmarshal(bufferJSON, &cp.InputBuffer); err != nil {
			return nil, fmt.Errorf("unmarshal input buffer: %w", err)
		}
	}
	if cp.InputBuffer == nil {
		cp.InputBuffer = make(map[string]interface{})
	}
	if len(waitOnJSON) > 0 {
		var waitOn domain.WaitOn
		if err := json.Unmarshal(waitOnJSON, &waitOn); err != nil {
			return nil, fmt.Errorf("unmarshal wait-on: %w", err)
		}
		cp.WaitOn = &waitOn
	}
	return &cp, nil
}
