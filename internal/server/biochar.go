package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	biochardomain "github.com/smallbiznis/agrichar/internal/biochar/domain"
)

func (s *Server) CreateBatch(c *gin.Context) {
	var req biochardomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.biocharSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBatches(c *gin.Context) {
	var query struct {
		BiomassID string `form:"biomass_id"`
		Status    string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.biocharSvc.List(c.Request.Context(), biochardomain.ListRequest{
		BiomassID: strings.TrimSpace(query.BiomassID),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBatch(c *gin.Context) {
	resp, err := s.biocharSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteBatch(c *gin.Context) {
	var req biochardomain.CompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.biocharSvc.Complete(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) FailBatch(c *gin.Context) {
	var req biochardomain.FailRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.biocharSvc.Fail(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBatch(c *gin.Context) {
	var req biochardomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.biocharSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBatch(c *gin.Context) {
	if err := s.biocharSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isBiocharValidationError(err error) bool {
	switch {
	case errors.Is(err, biochardomain.ErrInvalidID),
		errors.Is(err, biochardomain.ErrInvalidBiomass),
		errors.Is(err, biochardomain.ErrInvalidBiomassWeight),
		errors.Is(err, biochardomain.ErrInvalidBiocharWeight),
		errors.Is(err, biochardomain.ErrInvalidTemperature),
		errors.Is(err, biochardomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}
