package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	fertilizerdomain "github.com/smallbiznis/agrichar/internal/fertilizer/domain"
)

func (s *Server) CreateFertilizer(c *gin.Context) {
	var req fertilizerdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fertilizerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFertilizers(c *gin.Context) {
	var query struct {
		Status         string `form:"status"`
		FertilizerType string `form:"fertilizer_type"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fertilizerSvc.List(c.Request.Context(), fertilizerdomain.ListRequest{
		Status:         strings.TrimSpace(query.Status),
		FertilizerType: strings.TrimSpace(query.FertilizerType),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetFertilizer(c *gin.Context) {
	resp, err := s.fertilizerSvc.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateFertilizer(c *gin.Context) {
	var req fertilizerdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.fertilizerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteFertilizer(c *gin.Context) {
	if err := s.fertilizerSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) RecordFertilizerUsage(c *gin.Context) {
	var req fertilizerdomain.UsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.InventoryID = strings.TrimSpace(c.Param("id"))

	resp, err := s.fertilizerSvc.RecordUsage(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListFertilizerUsages(c *gin.Context) {
	var query struct {
		InventoryID string `form:"inventory_id"`
		ParcelID    string `form:"parcel_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.fertilizerSvc.ListUsages(c.Request.Context(), fertilizerdomain.UsageListRequest{
		InventoryID: strings.TrimSpace(query.InventoryID),
		ParcelID:    strings.TrimSpace(query.ParcelID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isFertilizerValidationError(err error) bool {
	switch {
	case errors.Is(err, fertilizerdomain.ErrInvalidID),
		errors.Is(err, fertilizerdomain.ErrInvalidName),
		errors.Is(err, fertilizerdomain.ErrInvalidType),
		errors.Is(err, fertilizerdomain.ErrInvalidQuantity),
		errors.Is(err, fertilizerdomain.ErrInvalidUnit),
		errors.Is(err, fertilizerdomain.ErrInvalidStatus),
		errors.Is(err, fertilizerdomain.ErrInvalidParcel):
		return true
	default:
		return false
	}
}
