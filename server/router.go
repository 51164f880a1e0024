// Package server exposes the forum over HTTP with gin. Handlers read the
// authenticated user once and pass it to the service explicitly.
package server

import (
	"net/http"

	"github.com/Luismorlan/coursehub/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Register mounts every route on router. auth guards everything except the
// health and metrics endpoints.
func (h *Handlers) Register(router *gin.Engine, auth gin.HandlerFunc) {
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := router.Group("/", auth)
	authed.GET("/protected", func(c *gin.Context) {
		c.String(http.StatusOK, "Authenticated access to protected!")
	})

	authed.POST("/user", h.AddUser)
	authed.GET("/user", h.GetUser)
	authed.PUT("/user", h.UpdateUser)
	authed.DELETE("/user", h.DeleteUser)
	authed.POST("/user/course/:courseId", h.AddUserToCourse)
	authed.GET("/user/course/:courseId/type", h.GetUserType)

	authed.POST("/course", h.CreateCourse)
	authed.GET("/course/:courseId", h.GetCourse)
	authed.DELETE("/course/:courseId", h.DeleteCourse)

	authed.POST("/post", h.CreatePost)
	authed.DELETE("/post/:postId", h.DeletePost)
	authed.POST("/post/:postId/comment", h.CreateComment)
	authed.DELETE("/comment/:commentId", h.DeleteComment)
}
