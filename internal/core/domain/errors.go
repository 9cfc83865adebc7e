package domain

import "errors"

// ============================================================================
// Provenance Graph Errors
// ============================================================================

var (
	ErrNodeNotFound    = errors.New("node not found")
	ErrLinkNotFound    = errors.New("link not found")
	ErrCommentNotFound = errors.New("comment not found")
)

var (
	ErrLinkLabelConflict = errors.New("link with this label already exists on the target node")
)

var (
	ErrInvalidNodeType  = errors.New("invalid node type")
	ErrInvalidLinkType  = errors.New("invalid link type")
	ErrInvalidNodeLabel = errors.New("node label is required")
	ErrEmptyComment     = errors.New("comment content is required")
)

// Business rule errors
var (
	ErrNodeSealed          = errors.New("node is sealed: attributes cannot be modified")
	ErrSelfLink            = errors.New("cannot link a node to itself")
	ErrLinkWouldCreateLoop = errors.New("link would create a loop in the provenance graph")
)

// ============================================================================
// Computer & Code Errors
// ============================================================================

var (
	ErrComputerNotFound = errors.New("computer not found")
	ErrCodeNotFound     = errors.New("code not found")
)

var (
	ErrComputerNameConflict = errors.New("computer with this name already exists")
	ErrCodeNameConflict     = errors.New("code with this name already exists on the computer")
)

var (
	ErrInvalidComputerName  = errors.New("computer name is required")
	ErrInvalidHostname      = errors.New("computer hostname is required")
	ErrInvalidWorkDir       = errors.New("computer work directory is required")
	ErrUnsupportedScheduler = errors.New("unsupported scheduler type")
	ErrInvalidCodeName      = errors.New("code name is required")
	ErrInvalidExecutable    = errors.New("code executable path or container image is required")
)

var (
	ErrComputerDisabled = errors.New("computer is disabled")
	ErrComputerHasCodes = errors.New("cannot delete computer: codes are still registered on it")
)

// ============================================================================
// Calculation Job Errors
// ============================================================================

var (
	ErrCalcJobNotFound = errors.New("calculation job not found")
)

var (
	ErrInvalidJobState       = errors.New("invalid calculation job state")
	ErrIllegalJobTransition  = errors.New("illegal calculation job state transition")
	ErrJobAlreadySubmitted   = errors.New("calculation job was already submitted")
	ErrJobNotKillable        = errors.New("calculation job is not in a killable state")
	ErrInvalidJobResources   = errors.New("number of machines must be at least 1")
	ErrSchedulerNotAvailable = errors.New("scheduler backend is not available")
)

// ============================================================================
// Process Engine Errors
// ============================================================================

var (
	ErrCheckpointNotFound = errors.New("process checkpoint not found")
)

var (
	ErrInvalidProcessLabel  = errors.New("process label is required")
	ErrMissingRequiredInput = errors.New("required input port is missing")
	ErrUndeclaredInputPort  = errors.New("input on undeclared port with dynamic inputs disabled")
	ErrUndeclaredOutputPort = errors.New("output on undeclared port with dynamic outputs disabled")
	ErrProcessNotWaiting    = errors.New("process is not in a waiting state")
	ErrInputNotBuffered     = errors.New("no buffered value for this input link")
	ErrProcessNotResumable  = errors.New("process checkpoint is not ready to resume")
	ErrProcessTerminal      = errors.New("process has already terminated")
	ErrUnknownInlineFunc    = errors.New("inline function is not registered")
)
