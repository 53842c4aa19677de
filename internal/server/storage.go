package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	storagedomain "github.com/smallbiznis/agrichar/internal/storage/domain"
)

func (s *Server) CreateStorage(c *gin.Context) {
	var req storagedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.storageSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListStorage(c *gin.Context) {
	resp, err := s.storageSvc.List(c.Request.Context(), storagedomain.ListRequest{
		Status: strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetStorage(c *gin.Context) {
	resp, err := s.storageSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateStorage(c *gin.Context) {
	var req storagedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.storageSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteStorage(c *gin.Context) {
	if err := s.storageSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isStorageValidationError(err error) bool {
	switch {
	case errors.Is(err, storagedomain.ErrInvalidID),
		errors.Is(err, storagedomain.ErrInvalidBatch),
		errors.Is(err, storagedomain.ErrInvalidLocation),
		errors.Is(err, storagedomain.ErrInvalidQuantity),
		errors.Is(err, storagedomain.ErrInvalidRemaining),
		errors.Is(err, storagedomain.ErrInvalidStatus),
		errors.Is(err, storagedomain.ErrBatchEmpty):
		return true
	default:
		return false
	}
}
