package server

import (
	"net/http"

	"github.com/Luismorlan/coursehub/server/middlewares"
	"github.com/gin-gonic/gin"
)

type createCourseRequest struct {
	Name        string `json:"name"`
	Term        string `json:"term"`
	Description string `json:"description"`
}

type createPostRequest struct {
	CourseID string `json:"courseId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

type createCommentRequest struct {
	Content string `json:"content"`
}

func (h *Handlers) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed course body")
		return
	}
	id, err := h.svc.CreateCourse(c.Request.Context(), middlewares.UserID(c), req.Name, req.Term, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uuid": id})
}

func (h *Handlers) GetCourse(c *gin.Context) {
	course, err := h.svc.GetCourse(c.Request.Context(), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

func (h *Handlers) DeleteCourse(c *gin.Context) {
	courseID := c.Param("courseId")
	if err := h.svc.DeleteCourse(c.Request.Context(), middlewares.UserID(c), courseID); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "removed course %s", courseID)
}

func (h *Handlers) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed post body")
		return
	}
	id, err := h.svc.CreatePost(c.Request.Context(), middlewares.UserID(c), req.CourseID, req.Title, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uuid": id})
}

func (h *Handlers) CreateComment(c *gin.Context) {
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "malformed comment body")
		return
	}
	id, err := h.svc.CreateComment(c.Request.Context(), middlewares.UserID(c), c.Param("postId"), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uuid": id})
}

func (h *Handlers) DeletePost(c *gin.Context) {
	postID := c.Param("postId")
	if err := h.svc.DeletePost(c.Request.Context(), middlewares.UserID(c), postID); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "removed post %s", postID)
}

func (h *Handlers) DeleteComment(c *gin.Context) {
	commentID := c.Param("commentId")
	if err := h.svc.DeleteComment(c.Request.Context(), middlewares.UserID(c), commentID); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "removed comment %s", commentID)
}
