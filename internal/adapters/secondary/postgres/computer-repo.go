package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

type computerRepo struct {
	pool *pgxpool.Pool
}

// NewComputerRepository creates a new ComputerRepository
func NewComputerRepository(pool *pgxpool.Pool) output.ComputerRepository {
	return &computerRepo{pool: pool}
}

const computerColumns = `
	id, created_at, updated_at, name, hostname, description,
	scheduler_type, work_dir, enabled
`

func (r *computerRepo) Create(ctx context.Context, computer *domain.Computer) error {
	query := `
		INSERT INTO computer
			(id, created_at, updated_at, name, hostname, description,
			 scheduler_type, work_dir, enabled)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`
	_, err := r.pool.Exec(ctx, query,
		computer.ID, computer.CreatedAt, computer.UpdatedAt,
		computer.Name, computer.Hostname, computer.Description,
		string(computer.SchedulerType), computer.WorkDir, computer.Enabled,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrComputerNameConflict
		}
		return fmt.Errorf("create computer: %w", err)
	}
	return nil
}

func (r *computerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Computer, error) {
	query := `SELECT ` + computerColumns + ` FROM computer WHERE id = $1`

	computer, err := scanComputer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrComputerNotFound
		}
		return nil, fmt.Errorf("get computer by id: %w", err)
	}
	return computer, nil
}

func (r *computerRepo) GetByName(ctx context.Context, name string) (*domain.Computer, error) {
	query := `SELECT ` + computerColumns + ` FROM computer WHERE name = $1`

	computer, err := scanComputer(r.pool.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrComputerNotFound
		}
		return nil, fmt.Errorf("get computer by name: %w", err)
	}
	return computer, nil
}

func (r *computerRepo) List(ctx context.Context, limit, offset int) ([]*domain.Computer, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM computer`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count computers: %w", err)
	}

	query := `SELECT ` + computerColumns + ` FROM computer ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list computers: %w", err)
	}
	defer rows.Close()

	computers := []*domain.Computer{}
	for rows.Next() {
		computer, err := scanComputer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan computer: %w", err)
		}
		computers = append(computers, computer)
	}
	return computers, total, rows.Err()
}

func (r *computerRepo) Update(ctx context.Context, computer *domain.Computer) error {
	query := `
		UPDATE computer
		SET description=$1, work_dir=$2, enabled=$3, updated_at=NOW()
		WHERE id=$4
	`
	result, err := r.pool.Exec(ctx, query,
		computer.Description, computer.WorkDir, computer.Enabled, computer.ID)
	if err != nil {
		return fmt.Errorf("update computer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrComputerNotFound
	}
	return nil
}

func (r *computerRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM computer WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete computer: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrComputerNotFound
	}
	return nil
}

func (r *computerRepo) CountCodes(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM code WHERE computer_id = $1`, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("count codes: %w", err)
	}
	return count, nil
}

func scanComputer(row pgx.Row) (*domain.Computer, error) {
	var c domain.Computer
	var schedulerType string

	err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.Name, &c.Hostname, &c.Description,
		&schedulerType, &c.WorkDir, &c.Enabled,
	)
	if err != nil {
		return nil, err
	}
	c.SchedulerType = domain.SchedulerType(schedulerType)
	return &c, nil
}
