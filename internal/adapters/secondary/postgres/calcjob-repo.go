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

type calcJobRepo struct {
	pool *pgxpool.Pool
}

// NewCalcJobRepository creates a new CalcJobRepository
func NewCalcJobRepository(pool *pgxpool.Pool) output.CalcJobRepository {
	return &calcJobRepo{pool: pool}
}

const calcJobColumns = `
	id, created_at, updated_at, node_id, code_id, computer_id, state,
	queue, resources, parameters, scheduler_ref, exit_status, last_error
`

func (r *calcJobRepo) Create(ctx context.Context, job *domain.CalcJob) error {
	resourcesJSON, err := json.Marshal(job.Resources)
	if err != nil {
		return fmt.Errorf("marshal resources: %w", err)
	}
	paramsJSON, err := json.Marshal(job.Parameters)
	if err != nil {
		return fmt.Errorf("marshal parameters: %w", err)
	}

	query := `
		INSERT INTO calc_job
			(id, created_at, updated_at, node_id, code_id, computer_id, state,
			 queue, resources, parameters, scheduler_ref, exit_status, last_error)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	_, err = r.pool.Exec(ctx, query,
		job.ID, job.CreatedAt, job.UpdatedAt, job.NodeID, job.CodeID, job.ComputerID,
		string(job.State), job.Queue, resourcesJSON, paramsJSON,
		job.SchedulerRef, job.ExitStatus, job.LastError,
	)
	if err != nil {
		return fmt.Errorf("create calc job: %w", err)
	}
	return nil
}

func (r *calcJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.CalcJob, error) {
	query := `SELECT ` + calcJobColumns + ` FROM calc_job WHERE id = $1`

	job, err := scanCalcJob(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCalcJobNotFound
		}
		return nil, fmt.Errorf("get calc job by id: %w", err)
	}
	return job, nil
}

func (r *calcJobRepo) GetByNodeID(ctx context.Context, nodeID uuid.UUID) (*domain.CalcJob, error) {
	query := `SELECT ` + calcJobColumns + ` FROM calc_job WHERE node_id = $1`

	job, err := scanCalcJob(r.pool.QueryRow(ctx, query, nodeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCalcJobNotFound
		}
		return nil, fmt.Errorf("get calc job by node id: %w", err)
	}
	return job, nil
}

func (r *calcJobRepo) List(ctx context.Context, filter output.CalcJobListFilter) ([]*domain.CalcJob, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.State != "" {
		conditions = append(conditions, fmt.Sprintf("state = $%d", argPos))
		args = append(args, filter.State)
		argPos++
	}
	if filter.ComputerID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("computer_id = $%d", argPos))
		args = append(args, filter.ComputerID)
		argPos++
	}
	if filter.CodeID != uuid.Nil {
		conditions = append(conditions, fmt.Sprintf("code_id = $%d", argPos))
		args = append(args, filter.CodeID)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM calc_job " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count calc jobs: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s FROM calc_job %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d",
		calcJobColumns, where, argPos, argPos+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list calc jobs: %w", err)
	}
	defer rows.Close()

	jobs := []*domain.CalcJob{}
	for rows.Next() {
		job, err := scanCalcJob(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan calc job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

func (r *calcJobRepo) Update(ctx context.Context, job *domain.CalcJob) error {
	query := `
		UPDATE calc_job
		SET state=$1, scheduler_ref=$2, exit_status=$3, last_error=$4, updated_at=NOW()
		WHERE id=$5
	`
	result, err := r.pool.Exec(ctx, query,
		string(job.State), job.SchedulerRef, job.ExitStatus, job.LastError, job.ID)
	if err != nil {
		return fmt.Errorf("update calc job: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCalcJobNotFound
	}
	return nil
}

func (r *calcJobRepo) UpdateState(ctx context.Context, id uuid.UUID, state domain.CalcJobState, schedulerRef string, lastError string) error {
	query := `
		UPDATE calc_job
		SET state=$1,
			scheduler_ref = CASE WHEN $2 <> '' THEN $2 ELSE scheduler_ref END,
			last_error=$3, updated_at=NOW()
		WHERE id=$4
	`
	result, err := r.pool.Exec(ctx, query, string(state), schedulerRef, lastError, id)
	if err != nil {
		return fmt.Errorf("update calc job state: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCalcJobNotFound
	}
	return nil
}

func scanCalcJob(row pgx.Row) (*domain.CalcJob, error) {
	var j domain.CalcJob
	var state string
	var resourcesJSON, paramsJSON []byte

	err := row.Scan(
		&j.ID, &j.CreatedAt, &j.UpdatedAt, &j.NodeID, &j.CodeID, &j.ComputerID,
		&state, &j.Queue, &resourcesJSON, &paramsJSON,
		&j.SchedulerRef, &j.ExitStatus, &j.LastError,
	)
	if err != nil {
		return nil, err
	}

	j.State = domain.CalcJobState(state)
	if len(resourcesJSON) > 0 {
		if err := json.Unmarshal(resourcesJSON, &j.Resources); err != nil {
			return nil, fmt.Errorf("unmarshal resources: %w", err)
		}
	}
	if len(paramsJSON) > 0 {
		if err := json.Unmarshal(paramsJSON, &j.Parameters); err != nil {
			return nil, fmt.Errorf("unmarshal parameters: %w", err)
		}
	}
	if j.Parameters == nil {
		j.Parameters = make(map[string]interface{})
	}
	return &j, nil
}
