package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	biomassdomain "github.com/smallbiznis/agrichar/internal/biomass/domain"
)

func (s *Server) CreateBiomass(c *gin.Context) {
	var req biomassdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.biomassSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListBiomass(c *gin.Context) {
	var query struct {
		ParcelID string `form:"parcel_id"`
		Status   string `form:"status"`
		CropType string `form:"crop_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.biomassSvc.List(c.Request.Context(), biomassdomain.ListRequest{
		ParcelID: strings.TrimSpace(query.ParcelID),
		Status:   strings.TrimSpace(query.Status),
		CropType: strings.TrimSpace(query.CropType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetBiomass(c *gin.Context) {
	resp, err := s.biomassSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBiomass(c *gin.Context) {
	var req biomassdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.biomassSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteBiomass(c *gin.Context) {
	if err := s.biomassSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func isBiomassValidationError(err error) bool {
	switch {
	case errors.Is(err, biomassdomain.ErrInvalidID),
		errors.Is(err, biomassdomain.ErrInvalidParcel),
		errors.Is(err, biomassdomain.ErrInvalidCropType),
		errors.Is(err, biomassdomain.ErrInvalidQuantity),
		errors.Is(err, biomassdomain.ErrInvalidRemaining),
		errors.Is(err, biomassdomain.ErrInvalidMoisture),
		errors.Is(err, biomassdomain.ErrInvalidStatus):
		return true
	default:
		return false
	}
}
