package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"provenance-workflow-service/internal/core/domain"
	output "provenance-workflow-service/internal/core/ports/output"
)

type nodeRepo struct {
	pool *pgxpool.Pool
}

// NewNodeRepository creates a new NodeRepository
func NewNodeRepository(pool *pgxpool.Pool) output.NodeRepository {
	return &nodeRepo{pool: pool}
}

func (r *nodeRepo) Create(ctx context.Context, node *domain.Node) error {
	attrsJSON, err := json.Marshal(node.Attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	extrasJSON, err := json.Marshal(node.Extras)
	if err != nil {
		return fmt.Errorf("marshal extras: %w", err)
	}

	query := `
		INSERT INTO node
			(id, created_at, updated_at, type, label, description,
			 computer_id, sealed, version, attributes, extras)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err = r.pool.Exec(ctx, query,
		node.ID, node.CreatedAt, node.UpdatedAt,
		string(node.Type), node.Label, node.Description,
		node.ComputerID, node.Sealed, node.Version, attrsJSON, extrasJSON,
	)
	if err != nil {
		return fmt.Errorf("create node: %w", err)
	}
	return nil
}

const nodeColumns = `
	id, created_at, updated_at, type, label, description,
	computer_id, sealed, version, attributes, extras
`

func (r *nodeRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Node, error) {
	query := `SELECT ` + nodeColumns + ` FROM node WHERE id = $1`

	node, err := scanNode(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNodeNotFound
		}
		return nil, fmt.Errorf("get node by id: %w", err)
	}
	return node, nil
}

func (r *nodeRepo) List(ctx context.Context, filter output.NodeListFilter) ([]*domain.Node, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argPos := 1

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, filter.Type)
		argPos++
	}
	if filter.Label != "" {
		conditions = append(conditions, fmt.Sprintf("label ILIKE $%d", argPos))
		args = append(args, "%"+filter.Label+"%")
		argPos++
	}
	if filter.Sealed != nil {
		conditions = append(conditions, fmt.Sprintf("sealed = $%d", argPos))
		args = append(args, *filter.Sealed)
		argPos++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM node " + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count nodes: %w", err)
	}

	sortBy := "created_at"
	switch filter.SortBy {
	case "label", "type", "updated_at":
		sortBy = filter.SortBy
	}
	order := "DESC"
	if strings.EqualFold(filter.Order, "asc") {
		order = "ASC"
	}

	query := fmt.Sprintf(
		"SELECT %s FROM node %s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		nodeColumns, where, sortBy, order, argPos, argPos+1,
	)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []*domain.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, total, rows.Err()
}

func (r *nodeRepo) Update(ctx context.Context, node *domain.Node) error {
	query := `
		UPDATE node
		SET label=$1, description=$2, version=version+1, updated_at=NOW()
		WHERE id=$3
	`
	result, err := r.pool.Exec(ctx, query, node.Label, node.Description, node.ID)
	if err != nil {
		return fmt.Errorf("update node: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM node WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete node: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) SetAttributes(ctx context.Context, id uuid.UUID, attributes map[string]interface{}) error {
	attrsJSON, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}

	query := `
		UPDATE node
		SET attributes=$1, version=version+1, updated_at=NOW()
		WHERE id=$2 AND sealed = FALSE
	`
	result, err := r.pool.Exec(ctx, query, attrsJSON, id)
	if err != nil {
		return fmt.Errorf("set node attributes: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) SetExtra(ctx context.Context, id uuid.UUID, key string, value interface{}) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal extra: %w", err)
	}

	query := `
		UPDATE node
		SET extras = jsonb_set(COALESCE(extras, '{}'::jsonb), ARRAY[$1], $2::jsonb),
			version=version+1, updated_at=NOW()
		WHERE id=$3
	`
	result, err := r.pool.Exec(ctx, query, key, valueJSON, id)
	if err != nil {
		return fmt.Errorf("set node extra: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) DeleteExtra(ctx context.Context, id uuid.UUID, key string) error {
	query := `
		UPDATE node
		SET extras = extras - $1, version=version+1, updated_at=NOW()
		WHERE id=$2
	`
	result, err := r.pool.Exec(ctx, query, key, id)
	if err != nil {
		return fmt.Errorf("delete node extra: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) Seal(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE node
		SET sealed = TRUE, version=version+1, updated_at=NOW()
		WHERE id=$1
	`
	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("seal node: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrNodeNotFound
	}
	return nil
}

func (r *nodeRepo) AddLink(ctx context.Context, link *domain.Link) error {
	query := `
		INSERT INTO link (source_id, target_id, label, type, created_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		link.SourceID, link.TargetID, link.Label, string(link.Type), link.CreatedAt,
	).Scan(&link.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrLinkLabelConflict
		}
		return fmt.Errorf("create link: %w", err)
	}
	return nil
}

func (r *nodeRepo) RemoveLink(ctx context.Context, targetID uuid.UUID, label string) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM link WHERE target_id = $1 AND label = $2`, targetID, label)
	if err != nil {
		return fmt.Errorf("remove link: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrLinkNotFound
	}
	return nil
}

func (r *nodeRepo) IncomingLinks(ctx context.Context, targetID uuid.UUID, filter output.LinkFilter) ([]*domain.Link, error) {
	return r.links(ctx, "target_id", targetID, filter)
}

func (r *nodeRepo) OutgoingLinks(ctx context.Context, sourceID uuid.UUID, filter output.LinkFilter) ([]*domain.Link, error) {
	return r.links(ctx, "source_id", sourceID, filter)
}

func (r *nodeRepo) links(ctx context.Context, column string, id uuid.UUID, filter output.LinkFilter) ([]*domain.Link, error) {
	conditions := []string{fmt.Sprintf("%s = $1", column)}
	args := []interface{}{id}
	argPos := 2

	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("type = $%d", argPos))
		args = append(args, string(filter.Type))
		argPos++
	}
	if filter.Label != "" {
		conditions = append(conditions, fmt.Sprintf("label = $%d", argPos))
		args = append(args, filter.Label)
		argPos++
	}

	query := fmt.Sprintf(`
		SELECT id, source_id, target_id, label, type, created_at
		FROM link
		WHERE %s
		ORDER BY id
	`, strings.Join(conditions, " AND "))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	links := []*domain.Link{}
	for rows.Next() {
		var l domain.Link
		var linkType string
		if err := rows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.Label, &linkType, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		l.Type = domain.LinkType(linkType)
		links = append(links, &l)
	}
	return links, rows.Err()
}

// HasPath walks INPUT and CREATE links with a recursive CTE. Depth is
// bounded so a corrupted graph cannot spin the query forever.
func (r *nodeRepo) HasPath(ctx context.Context, from uuid.UUID, to uuid.UUID) (bool, error) {
	query := `
		WITH RECURSIVE walk(node_id, depth) AS (
			SELECT target_id, 1
			FROM link
			WHERE source_id = $1 AND type IN ('INPUT', 'CREATE')
			UNION
			SELECT l.target_id, w.depth + 1
			FROM link l
			JOIN walk w ON l.source_id = w.node_id
			WHERE l.type IN ('INPUT', 'CREATE') AND w.depth < 100
		)
		SELECT EXISTS (SELECT 1 FROM walk WHERE node_id = $2)
	`
	var found bool
	if err := r.pool.QueryRow(ctx, query, from, to).Scan(&found); err != nil {
		return false, fmt.Errorf("provenance path query: %w", err)
	}
	return found, nil
}

func (r *nodeRepo) Ancestors(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	query := `
		WITH RECURSIVE walk(node_id, depth) AS (
			SELECT source_id, 1
			FROM link
			WHERE target_id = $1 AND type IN ('INPUT', 'CREATE')
			UNION
			SELECT l.source_id, w.depth + 1
			FROM link l
			JOIN walk w ON l.target_id = w.node_id
			WHERE l.type IN ('INPUT', 'CREATE') AND w.depth < $2
		)
		SELECT ` + nodeColumns + `
		FROM node
		WHERE id IN (SELECT DISTINCT node_id FROM walk)
		ORDER BY created_at
	`
	return r.queryNodes(ctx, query, id, maxDepth)
}

func (r *nodeRepo) Descendants(ctx context.Context, id uuid.UUID, maxDepth int) ([]*domain.Node, error) {
	query := `
		WITH RECURSIVE walk(node_id, depth) AS (
			SELECT target_id, 1
			FROM link
			WHERE source_id = $1 AND type IN ('INPUT', 'CREATE')
			UNION
			SELECT l.target_id, w.depth + 1
			FROM link l
			JOIN walk w ON l.source_id = w.node_id
			WHERE l.type IN ('INPUT', 'CREATE') AND w.depth < $2
		)
		SELECT ` + nodeColumns + `
		FROM node
		WHERE id IN (SELECT DISTINCT node_id FROM walk)
		ORDER BY created_at
	`
	return r.queryNodes(ctx, query, id, maxDepth)
}

func (r *nodeRepo) queryNodes(ctx context.Context, query string, args ...interface{}) ([]*domain.Node, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	nodes := []*domain.Node{}
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan node: %w", err)
		}
		nodes = append(nodes, node)
	}
	return nodes, rows.Err()
}

func scanNode(row pgx.Row) (*domain.Node, error) {
	var n domain.Node
	var nodeType string
	var attrsJSON, extrasJSON []byte

	err := row.Scan(
		&n.ID, &n.CreatedAt, &n.UpdatedAt, &nodeType, &n.Label, &n.Description,
		&n.ComputerID, &n.Sealed, &n.Version, &attrsJSON, &extrasJSON,
	)
	if err != nil {
		return nil, err
	}

	n.Type = domain.NodeType(nodeType)
	if len(attrsJSON) > 0 {
		if err := json.Unmarshal(attrsJSON, &n.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
	}
	if n.Attributes == nil {
		n.Attributes = make(map[string]interface{})
	}
	if len(extrasJSON) > 0 {
		if err := json.Unmarshal(extrasJSON, &n.Extras); err != nil {
			return nil, fmt.Errorf("unmarshal extras: %w", err)
		}
	}
	if n.Extras == nil {
		n.Extras = make(map[string]interface{})
	}
	return &n, nil
}
