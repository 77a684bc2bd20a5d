package router

import (
	"net/http"

	"github.com/daybook/internal/handler"
	"github.com/daybook/internal/logger"
	"github.com/daybook/internal/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ZapLogger(logger.OrNop(log)), gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/all_data", api.AllData)

		reminders := apiGroup.Group("/reminders")
		{
			reminders.GET("", api.ListReminders)
			reminders.POST("", api.CreateReminder)
			reminders.GET("/upcoming", api.UpcomingReminders)
			reminders.GET("/projected", api.ProjectedReminders)
			reminders.GET("/calendar", api.CalendarReminders)
			reminders.PUT("/:id", api.UpdateReminder)
			reminders.DELETE("/:id", api.DeleteReminder)
		}

		tasks := apiGroup.Group("/tasks")
		{
			tasks.GET("", api.ListTasks)
			tasks.POST("", api.CreateTask)
			tasks.PUT("/:id", api.UpdateTask)
			tasks.PUT("/:id/status", api.UpdateTaskStatus)
			tasks.DELETE("/:id", api.DeleteTask)
		}

		apiGroup.POST("/comments", api.AddComment)
		apiGroup.GET("/comments/latest", api.LatestComments)

		kb := apiGroup.Group("/kb")
		{
			kb.GET("", api.ListKnowledge)
			kb.POST("", api.CreateKnowledge)
			kb.GET("/search", api.SearchKnowledge)
			kb.GET("/:id", api.GetKnowledge)
			kb.PUT("/:id", api.UpdateKnowledge)
			kb.DELETE("/:id", api.DeleteKnowledge)
		}

		projects := apiGroup.Group("/projects")
		{
			projects.GET("", api.ListProjects)
			projects.POST("", api.CreateProject)
			projects.GET("/:id", api.GetProject)
			projects.PUT("/:id", api.UpdateProject)
			projects.DELETE("/:id", api.DeleteProject)
			projects.POST("/:id/tasks", api.AddProjectTask)
			projects.PUT("/:id/tasks/:taskId", api.UpdateProjectTask)
			projects.PUT("/:id/tasks/:taskId/status", api.UpdateProjectTaskStatus)
			projects.DELETE("/:id/tasks/:taskId", api.DeleteProjectTask)
			projects.POST("/:id/tasks/:taskId/comments", api.AddProjectTaskComment)
		}

		secure := apiGroup.Group("/secure")
		{
			secure.GET("/status", api.VaultStatus)
			secure.POST("/init", api.InitVault)
			secure.POST("/validate", api.ValidateVault)
			secure.POST("/items", api.ListVaultItems)
			secure.POST("/add", api.AddVaultItem)
			secure.PUT("/:id", api.UpdateVaultItem)
			secure.DELETE("/:id", api.DeleteVaultItem)
		}
	}

	return r
}
