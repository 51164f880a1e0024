package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Luismorlan/coursehub/model"
	"github.com/Luismorlan/coursehub/server/middlewares"
	"github.com/Luismorlan/coursehub/service"
	"github.com/gin-gonic/gin"
)

type addUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	UUID  string `json:"uuid"`
}

type addUserToCourseRequest struct {
	UserID string `json:"userId"`
	Type   string `json:"type"`
}

func (h *Handlers) AddUser(c *gin.Context) {
	var req addUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, "Missing one of the following parameters: name, email, or uuid")
		return
	}
	uuid, err := h.svc.CreateUser(c.Request.Context(), req.Name, req.Email, req.UUID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "Added user %s", uuid)
}

// GetUser returns the user named by the userUUID query parameter, or the
// caller, with both course lists expanded.
func (h *Handlers) GetUser(c *gin.Context) {
	userID := c.Query("userUUID")
	if userID == "" {
		userID = middlewares.UserID(c)
	}
	view, err := h.svc.GetUserView(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handlers) UpdateUser(c *gin.Context) {
	var update service.UserUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		respondValidation(c, "malformed update body")
		return
	}
	if err := h.svc.UpdateUser(c.Request.Context(), middlewares.UserID(c), update); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "Updated user.")
}

func (h *Handlers) DeleteUser(c *gin.Context) {
	userID := c.Query("userUUID")
	if userID == "" {
		userID = middlewares.UserID(c)
	}
	if err := h.svc.DeleteUser(c.Request.Context(), userID); err != nil {
		respondError(c, err)
		return
	}
	c.String(http.StatusOK, "removed user with the following userUUID:%s", userID)
}

// AddUserToCourse enrolls body.userId, or the caller, as a student unless
// body.type is "instructor".
func (h *Handlers) AddUserToCourse(c *gin.Context) {
	var req addUserToCourseRequest
	// The body is optional. Chunked bodies report no length, so an empty body
	// is only known once decoding hits EOF.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondValidation(c, "malformed body")
		return
	}
	courseID := c.Param("courseId")
	role, err := h.svc.AddUserToCourse(c.Request.Context(), courseID, middlewares.UserID(c), req.UserID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}
	kind := "student"
	if role == model.RoleInstructor {
		kind = "instructor"
	}
	c.String(http.StatusOK, fmt.Sprintf("Added user as %s to course %s", kind, courseID))
}

func (h *Handlers) GetUserType(c *gin.Context) {
	role, err := h.svc.GetUserType(c.Request.Context(), middlewares.UserID(c), c.Param("courseId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !role.IsEnrolled() {
		c.JSON(http.StatusOK, gin.H{"error": "User not in this class"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"type": role})
}
