package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/agrichar/internal/conservation"
	"github.com/smallbiznis/agrichar/internal/ownercontext"
)

func (s *Server) ListMovements(c *gin.Context) {
	var query struct {
		SourceType string `form:"source_type"`
		SourceID   string `form:"source_id"`
		Limit      string `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	ownerID, ok := ownercontext.OwnerIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	filter := conservation.MovementFilter{}
	switch kind := conservation.SourceKind(strings.ToLower(strings.TrimSpace(query.SourceType))); kind {
	case "":
	case conservation.SourceBiomass, conservation.SourceStorage, conservation.SourceFertilizer:
		filter.SourceType = kind
	default:
		AbortWithError(c, newValidationError("source_type", "invalid_source_type", "invalid source_type"))
		return
	}

	sourceID, err := parseOptionalSnowflakeID(query.SourceID)
	if err != nil {
		AbortWithError(c, newValidationError("source_id", "invalid_source_id", "invalid source_id"))
		return
	}
	if sourceID != nil {
		filter.SourceID = sourceID.Int64()
	}

	limit, err := parseOptionalInt(query.Limit)
	if err != nil {
		AbortWithError(c, newValidationError("limit", "invalid_limit", "invalid limit"))
		return
	}
	if limit != nil {
		filter.Limit = *limit
	}

	resp, err := s.ledger.ListMovements(c.Request.Context(), ownerID, filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isMovementValidationError(err error) bool {
	return errors.Is(err, conservation.ErrInvalidSource)
}
