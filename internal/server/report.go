package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (s *Server) GetSummaryReport(c *gin.Context) {
	resp, err := s.reportSvc.Summary(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportSummaryPDF(c *gin.Context) {
	content, err := s.reportSvc.SummaryPDF(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "summary.pdf"))
	c.Data(http.StatusOK, contentTypePDF, content)
}

func (s *Server) ExportSummaryXLSX(c *gin.Context) {
	content, err := s.reportSvc.SummaryXLSX(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "summary.xlsx"))
	c.Data(http.StatusOK, contentTypeXLSX, content)
}
