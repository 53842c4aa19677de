package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	parceldomain "github.com/smallbiznis/agrichar/internal/parcel/domain"
)

func (s *Server) CreateParcel(c *gin.Context) {
	var req parceldomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parcelSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParcels(c *gin.Context) {
	var query struct {
		Status             string `form:"status"`
		VerificationStatus string `form:"verification_status"`
		Name               string `form:"name"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.parcelSvc.List(c.Request.Context(), parceldomain.ListRequest{
		Status:             strings.TrimSpace(query.Status),
		VerificationStatus: strings.TrimSpace(query.VerificationStatus),
		Name:               strings.TrimSpace(query.Name),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetParcel(c *gin.Context) {
	resp, err := s.parcelSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateParcel(c *gin.Context) {
	var req parceldomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.parcelSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeactivateParcel(c *gin.Context) {
	resp, err := s.parcelSvc.Deactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VerifyParcel(c *gin.Context) {
	var req parceldomain.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.parcelSvc.Verify(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteParcel(c *gin.Context) {
	if err := s.parcelSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isParcelValidationError(err error) bool {
	switch {
	case errors.Is(err, parceldomain.ErrInvalidID),
		errors.Is(err, parceldomain.ErrInvalidName),
		errors.Is(err, parceldomain.ErrInvalidArea),
		errors.Is(err, parceldomain.ErrInvalidStatus),
		errors.Is(err, parceldomain.ErrInvalidVerificationStatus),
		errors.Is(err, parceldomain.ErrInvalidDocumentURL),
		errors.Is(err, parceldomain.ErrInactive):
		return true
	default:
		return false
	}
}
