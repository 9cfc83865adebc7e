package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

type codeRepo struct {
	pool *pgxpool.Pool
}

// NewCodeRepository creates a new CodeRepository
func NewCodeRepository(pool *pgxpool.Pool) output.CodeRepository {
	return &codeRepo{pool: pool}
}

const codeColumns = `
	c.id, c.created_at, c.updated_at, c.computer_id, c.name, c.description,
	c.executable_path, c.container_image, c.input_plugin,
	c.prepend_text, c.append_text, c.environment,
	comp.name AS computer_name
`

const codeFrom = `FROM code c JOIN computer comp ON comp.id = c.computer_id`

func (r *codeRepo) Create(ctx context.Context, code *domain.Code) error {
	envJSON, err := json.Marshal(code.Environment)
	if err != nil {
		return fmt.Errorf("marshal environment: %w", err)
	}

	query := `
		INSERT INTO code
			(id, created_at, updated_at, computer_id, name, description,
			 executable_path, container_image, input_plugin,
			 prepend_text, append_text, environment)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`
	_, err = r.pool.Exec(ctx, query,
		code.ID, code.CreatedAt, code.UpdatedAt, code.ComputerID,
		code.Name, code.Description, code.ExecutablePath, code.ContainerImage,
		code.InputPlugin, code.PrependText, code.AppendText, envJSON,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrCodeNameConflict
		}
		return fmt.Errorf("create code: %w", err)
	}
	return nil
}

func (r *codeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Code, error) {
	query := `SELECT ` + codeColumns + ` ` + codeFrom + ` WHERE c.id = $1`

	code, err := scanCode(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code by id: %w", err)
	}
	return code, nil
}

func (r *codeRepo) GetByLabel(ctx context.Context, computerName, codeName string) (*domain.Code, error) {
	query := `SELECT ` + codeColumns + ` ` + codeFrom + ` WHERE comp.name = $1 AND c.name = $2`

	code, err := scanCode(r.pool.QueryRow(ctx, query, computerName, codeName))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, fmt.Errorf("get code by label: %w", err)
	}
	return code, nil
}

func (r *codeRepo) List(ctx context.Context, computerID uuid.UUID, limit, offset int) ([]*domain.Code, int, error) {
	where := ""
	countArgs := []interface{}{}
	args := []interface{}{}
	if computerID != uuid.Nil {
		where = "WHERE c.computer_id = $1"
		countArgs = append(countArgs, computerID)
		args = append(args, computerID)
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s %s", codeFrom, where)
	if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count codes: %w", err)
	}

	query := fmt.Sprintf(
		"SELECT %s %s %s ORDER BY c.name LIMIT $%d OFFSET $%d",
		codeColumns, codeFrom, where, len(args)+1, len(args)+2,
	)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list codes: %w", err)
	}
	defer rows.Close()

	codes := []*domain.Code{}
	for rows.Next() {
		code, err := scanCode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, total, rows.Err()
}

func (r *codeRepo) Update(ctx context.Context, code *domain.Code) error {
	query := `
		UPDATE code
		SET description=$1, executable_path=$2, container_image=$3,
			prepend_text=$4, append_text=$5, updated_at=NOW()
		WHERE id=$6
	`
	result, err := r.pool.Exec(ctx, query,
		code.Description, code.ExecutablePath, code.ContainerImage,
		code.PrependText, code.AppendText, code.ID,
	)
	if err != nil {
		return fmt.Errorf("update code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCodeNotFound
	}
	return nil
}

func (r *codeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM code WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCodeNotFound
	}
	return nil
}

func scanCode(row pgx.Row) (*domain.Code, error) {
	var c domain.Code
	var envJSON []byte

	err := row.Scan(
		&c.ID, &c.CreatedAt, &c.UpdatedAt, &c.ComputerID, &c.Name, &c.Description,
		&c.ExecutablePath, &c.ContainerImage, &c.InputPlugin,
		&c.PrependText, &c.AppendText, &envJSON, &c.ComputerName,
	)
	if err != nil {
		return nil, err
	}

	if len(envJSON) > 0 {
		if err := json.Unmarshal(envJSON, &c.Environment); err != nil {
			return nil, fmt.Errorf("unmarshal environment: %w", err)
		}
	}
	if c.Environment == nil {
		c.Environment = make(map[string]string)
	}
	return &c, nil
}
