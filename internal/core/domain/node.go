package domain

import (
	"time"

	"github.com/google/uuid"
)

type NodeType string

const (
	NodeTypeData        NodeType = "data"
	NodeTypeParameter   NodeType = "data.parameter"
	NodeTypeStructure   NodeType = "data.structure"
	NodeTypeRemote      NodeType = "data.remote"
	NodeTypeCalculation NodeType = "process.calculation"
	NodeTypeInline      NodeType = "process.inline"
	NodeTypeWorkflow    NodeType = "process.workflow"
)

var validNodeTypes = map[NodeType]bool{
	NodeTypeData:        true,
	NodeTypeParameter:   true,
	NodeTypeStructure:   true,
	NodeTypeRemote:      true,
	NodeTypeCalculation: true,
	NodeTypeInline:      true,
	NodeTypeWorkflow:    true,
}

func ValidateNodeType(t NodeType) error {
	if !validNodeTypes[t] {
		return ErrInvalidNodeType
	}
	return nil
}

// IsProcessType reports whether nodes of this type represent an execution
// (calculation, inline function or workflow) rather than a piece of data.
func (t NodeType) IsProcessType() bool {
	switch t {
	case NodeTypeCalculation, NodeTypeInline, NodeTypeWorkflow:
		return true
	}
	return false
}

// Node is a vertex of the provenance graph. Attributes are frozen once the
// node is sealed; extras stay mutable for the whole lifetime of the node.
type Node struct {
	ID          uuid.UUID              `json:"id"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	Type        NodeType               `json:"type"`
	Label       string                 `json:"label"`
	Description string                 `json:"description"`
	ComputerID  *uuid.UUID             `json:"computer_id"`
	Sealed      bool                   `json:"sealed"`
	Version     int                    `json:"version"`
	Attributes  map[string]interface{} `json:"attributes"`
	Extras      map[string]interface{} `json:"extras"`
}

type LinkType string

const (
	LinkTypeInput       LinkType = "INPUT"
	LinkTypeCreate      LinkType = "CREATE"
	LinkTypeCall        LinkType = "CALL"
	LinkTypeReturn      LinkType = "RETURN"
	LinkTypeUnspecified LinkType = "UNSPECIFIED"
)

var validLinkTypes = map[LinkType]bool{
	LinkTypeInput:       true,
	LinkTypeCreate:      true,
	LinkTypeCall:        true,
	LinkTypeReturn:      true,
	LinkTypeUnspecified: true,
}

func ValidateLinkType(t LinkType) error {
	if !validLinkTypes[t] {
		return ErrInvalidLinkType
	}
	return nil
}

// RequiresAcyclicity reports whether links of this type take part in the
// data provenance walk and therefore must not close a directed cycle.
func (t LinkType) RequiresAcyclicity() bool {
	return t == LinkTypeInput || t == LinkTypeCreate
}

// Link is a directed, labelled edge from a source node to a target node.
// Labels are unique per target.
type Link struct {
	ID        int64     `json:"id"`
	SourceID  uuid.UUID `json:"source_id"`
	TargetID  uuid.UUID `json:"target_id"`
	Label     string    `json:"label"`
	Type      LinkType  `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

type Comment struct {
	ID        int64     `json:"id"`
	NodeID    uuid.UUID `json:"node_id"`
	UserEmail string    `json:"user_email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Content   string    `json:"content"`
}
