package handlers

import (
	"errors"
	"net/http"

	"provenance-workflow-service/internal/core/domain"

	"github.com/gin-gonic/gin"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrNodeNotFound),
		errors.Is(err, domain.ErrLinkNotFound),
		errors.Is(err, domain.ErrCommentNotFound),
		errors.Is(err, domain.ErrComputerNotFound),
		errors.Is(err, domain.ErrCodeNotFound),
		errors.Is(err, domain.ErrCalcJobNotFound),
		errors.Is(err, domain.ErrCheckpointNotFound),
		errors.Is(err, domain.ErrUnknownInlineFunc),
		errors.Is(err, domain.ErrInputNotBuffered):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrLinkLabelConflict),
		errors.Is(err, domain.ErrComputerNameConflict),
		errors.Is(err, domain.ErrCodeNameConflict),
		errors.Is(err, domain.ErrJobAlreadySubmitted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidNodeType),
		errors.Is(err, domain.ErrInvalidLinkType),
		errors.Is(err, domain.ErrInvalidNodeLabel),
		errors.Is(err, domain.ErrEmptyComment),
		errors.Is(err, domain.ErrNodeSealed),
		errors.Is(err, domain.ErrSelfLink),
		errors.Is(err, domain.ErrLinkWouldCreateLoop),
		errors.Is(err, domain.ErrInvalidComputerName),
		errors.Is(err, domain.ErrInvalidHostname),
		errors.Is(err, domain.ErrInvalidWorkDir),
		errors.Is(err, domain.ErrUnsupportedScheduler),
		errors.Is(err, domain.ErrInvalidCodeName),
		errors.Is(err, domain.ErrInvalidExecutable),
		errors.Is(err, domain.ErrComputerDisabled),
		errors.Is(err, domain.ErrComputerHasCodes),
		errors.Is(err, domain.ErrInvalidJobState),
		errors.Is(err, domain.ErrIllegalJobTransition),
		errors.Is(err, domain.ErrJobNotKillable),
		errors.Is(err, domain.ErrInvalidJobResources),
		errors.Is(err, domain.ErrInvalidProcessLabel),
		errors.Is(err, domain.ErrMissingRequiredInput),
		errors.Is(err, domain.ErrUndeclaredInputPort),
		errors.Is(err, domain.ErrUndeclaredOutputPort),
		errors.Is(err, domain.ErrProcessNotWaiting),
		errors.Is(err, domain.ErrProcessNotResumable),
		errors.Is(err, domain.ErrProcessTerminal):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	// Service unavailable errors
	case errors.Is(err, domain.ErrSchedulerNotAvailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
