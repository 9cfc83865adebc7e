package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"provenance-workflow-service/internal/core/domain"
	ports "provenance-workflow-service/internal/core/ports/output"
)

const FormatVersion = "1.0"

// Archive is a self-contained JSON export of a provenance subgraph.
type Archive struct {
	FormatVersion string         `json:"format_version"`
	CreatedAt     time.Time      `json:"created_at"`
	RootIDs       []uuid.UUID    `json:"root_ids"`
	Nodes         []*domain.Node `json:"nodes"`
	Links         []*domain.Link `json:"links"`
}

type Exporter struct {
	nodes ports.NodeRepository
}

func NewExporter(nodes ports.NodeRepository) *Exporter {
	return &Exporter{nodes: nodes}
}

// Export collects the given roots, their descendants up to maxDepth, and
// every link whose endpoints both fall in the collected set.
func (e *Exporter) Export(ctx context.Context, rootIDs []uuid.UUID, maxDepth int) (*Archive, error) {
	if len(rootIDs) == 0 {
		return nil, fmt.Errorf("at least one root node is required")
	}

	collected := map[uuid.UUID]*domain.Node{}
	for _, rootID := range rootIDs {
		root, err := e.nodes.GetByID(ctx, rootID)
		if err != nil {
			return nil, fmt.Errorf("resolve root %s: %w", rootID, err)
		}
		collected[root.ID] = root

		descendants, err := e.nodes.Descendants(ctx, rootID, maxDepth)
		if err != nil {
			return nil, fmt.Errorf("walk descendants of %s: %w", rootID, err)
		}
		for _, node := range descendants {
			collected[node.ID] = node
		}
	}

	arch := &Archive{
		FormatVersion: FormatVersion,
		CreatedAt:     time.Now().UTC(),
		RootIDs:       rootIDs,
	}
	for _, node := range collected {
		arch.Nodes = append(arch.Nodes, node)
	}

	seen := map[int64]bool{}
	for id := range collected {
		links, err := e.nodes.OutgoingLinks(ctx, id, ports.LinkFilter{})
		if err != nil {
			return nil, fmt.Errorf("collect links of %s: %w", id, err)
		}
		for _, link := range links {
			if seen[link.ID] {
				continue
			}
			if _, ok := collected[link.TargetID]; !ok {
				continue
			}
			seen[link.ID] = true
			arch.Links = append(arch.Links, link)
		}
	}

	return arch, nil
}

func (a *Archive) WriteFile(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}
	return nil
}

func ReadFile(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var a Archive
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	if a.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported archive format version %q", a.FormatVersion)
	}
	return &a, nil
}
