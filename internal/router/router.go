package router

import (
	"net/http"
	"strings"

	"github.com/forkliftia/case-service/api"
	"github.com/forkliftia/case-service/internal/handler"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func New(caseHandler *handler.CaseHandler, diagnosisHandler *handler.DiagnosisHandler) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/health", handler.Health)
	r.GET("/ready", handler.Ready)
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/") })
	r.GET("/swagger/*any", func(c *gin.Context) {
		if strings.TrimPrefix(c.Param("any"), "/") == "openapi.json" {
			c.Data(http.StatusOK, "application/json", api.OpenAPISpec)
			return
		}
		if strings.TrimPrefix(c.Param("any"), "/") == "" {
			c.Request.URL.Path = "/swagger/index.html"
			c.Request.RequestURI = "/swagger/index.html"
		}
		ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/openapi.json"))(c)
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/cases", caseHandler.List)
		v1.GET("/cases/:id", caseHandler.Get)

		// Mutations and LLM-backed operations need a requester identity.
		authed := v1.Group("", RequireAuth())
		authed.POST("/cases", caseHandler.Create)
		authed.PATCH("/cases/:id/status", caseHandler.UpdateStatus)
		authed.POST("/cases/:id/resolve", caseHandler.Resolve)
		authed.POST("/diagnosis", diagnosisHandler.Diagnose)
		authed.POST("/chat", diagnosisHandler.Chat)
	}

	return r
}
