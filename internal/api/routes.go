package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册业务路由。generationLimit 作用于两个生成端点，可为 nil。
func RegisterRoutes(router *gin.Engine, h *Handler, generationLimit gin.HandlerFunc) {
	if h.MaxUploadBytes > 0 {
		router.MaxMultipartMemory = h.MaxUploadBytes
	}

	apiGroup := router.Group("/api")
	{
		genGroup := apiGroup.Group("")
		if generationLimit != nil {
			genGroup.Use(generationLimit)
		}
		genGroup.POST("/generate-resume", h.GenerateResume)
		genGroup.POST("/generate-cover-letter", h.GenerateCoverLetter)

		apiGroup.POST("/export-pdf", h.ExportPDF)
		apiGroup.POST("/export-docx", h.ExportDOCX)

		apiGroup.GET("/drafts/:id", h.GetDraft)
		apiGroup.POST("/uploads", h.Upload)
	}

	router.GET("/download/:filename", h.Download)
}
