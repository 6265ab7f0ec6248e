package main

import (
	"wartungsmanager/auth"
	"wartungsmanager/internal/comment"
	"wartungsmanager/internal/config"
	"wartungsmanager/internal/document"
	"wartungsmanager/internal/logging"
	"wartungsmanager/internal/maintenance"
	"wartungsmanager/internal/middleware"
	"wartungsmanager/internal/scheduler"
	"wartungsmanager/internal/task"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type handlers struct {
	maintenance *maintenance.Handler
	task        *task.Handler
	comment     *comment.Handler
	document    *document.Handler
	jobs        *scheduler.Handler
	health      gin.HandlerFunc
}

func setupRouter(cfg config.Config, logger logrus.FieldLogger, authMw *middleware.Auth, h handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinLogger(logger))
	router.Use(middleware.ErrorHandler(logger))

	// cors setting
	corsConfig := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}
	if cfg.Environment == "development" {
		// Allow all origins in development
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = []string{cfg.FrontendAddress}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/healthz", h.health)

	api := router.Group("", authMw.AuthMiddleWare())
	write := authMw.RequireRole(auth.RoleAdmin, auth.RoleMaintenance)

	// Maintenance routes
	api.GET("/maintenances", h.maintenance.List)
	api.POST("/maintenances", write, h.maintenance.Create)
	api.GET("/maintenances/:id", h.maintenance.Show)
	api.PATCH("/maintenances/:id", write, h.maintenance.Update)
	api.DELETE("/maintenances/:id", write, h.maintenance.Delete)
	api.POST("/maintenances/:id/complete", write, h.maintenance.Complete)
	api.POST("/maintenances/:id/copy", write, h.maintenance.Copy)
	api.GET("/maintenances/:id/tasks", h.task.List)
	api.POST("/maintenances/:id/tasks", write, h.task.Create)
	api.GET("/maintenances/:id/comments", h.comment.ListForMaintenance)
	api.POST("/maintenances/:id/comments", write, h.comment.AttachToMaintenance)

	// Task routes
	api.PATCH("/tasks/:id", write, h.task.Update)
	api.PUT("/tasks/:id/position", write, h.task.Move)
	api.DELETE("/tasks/:id", write, h.task.Delete)
	api.GET("/tasks/:id/comments", h.comment.ListForTask)
	api.POST("/tasks/:id/comments", write, h.comment.AttachToTask)

	api.DELETE("/comments/:id", write, h.comment.Delete)

	// Document routes
	api.GET("/documents", h.document.List)
	api.POST("/documents", write, h.document.Create)
	api.GET("/documents/:id", h.document.Show)
	api.PATCH("/documents/:id", write, h.document.Update)

	// internal use routes
	internal := router.Group("/internal", authMw.InternalAuthMiddleware())
	internal.POST("/sweep", h.jobs.Trigger(jobStatusSweep))
	internal.POST("/documents/purge", h.document.Purge)

	return router
}
