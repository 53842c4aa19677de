package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/agrichar/internal/application/domain"
)

func (s *Server) CreateApplication(c *gin.Context) {
	var req applicationdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListApplications(c *gin.Context) {
	var query struct {
		StorageID string `form:"storage_id"`
		ParcelID  string `form:"parcel_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.List(c.Request.Context(), applicationdomain.ListRequest{
		StorageID: strings.TrimSpace(query.StorageID),
		ParcelID:  strings.TrimSpace(query.ParcelID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetApplication(c *gin.Context) {
	resp, err := s.applicationSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteApplication(c *gin.Context) {
	if err := s.applicationSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isApplicationValidationError(err error) bool {
	switch {
	case errors.Is(err, applicationdomain.ErrInvalidID),
		errors.Is(err, applicationdomain.ErrInvalidStorage),
		errors.Is(err, applicationdomain.ErrInvalidParcel),
		errors.Is(err, applicationdomain.ErrInvalidFertilizer),
		errors.Is(err, applicationdomain.ErrInvalidQuantity),
		errors.Is(err, applicationdomain.ErrInvalidFertilizerQuantity):
		return true
	default:
		return false
	}
}
