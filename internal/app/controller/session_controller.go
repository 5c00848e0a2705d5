package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/shopgenie-backend/internal/app/model"
	"github.com/ikkim/shopgenie-backend/internal/engine"
	apperrors "github.com/ikkim/shopgenie-backend/internal/errors"
	"github.com/ikkim/shopgenie-backend/internal/middleware"
)

type SessionController struct {
	engine *engine.Engine
}

func NewSessionController(e *engine.Engine) *SessionController {
	return &SessionController{
		engine: e,
	}
}

type SignInRequest struct {
	ID     string `json:"id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required,email"`
	Avatar string `json:"avatar"`
}

type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1"`
	Email  *string `json:"email" binding:"omitempty,email"`
	Avatar *string `json:"avatar"`
}

// GetSession returns the signed-in user, null when anonymous
// GET /api/v1/session
func (ctrl *SessionController) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": ctrl.engine.State().User,
	})
}

// SignIn signs in the given identity, or the demo user without a body
// POST /api/v1/session
func (ctrl *SessionController) SignIn(c *gin.Context) {
	var identity *model.UserIdentity
	if c.Request.ContentLength > 0 {
		var req SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			middleware.GetLoggerFromContext(c).Warn("Invalid sign in request", map[string]interface{}{
				"error": err.Error(),
			})
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
			return
		}
		identity = &model.UserIdentity{ID: req.ID, Name: req.Name, Email: req.Email, Avatar: req.Avatar}
	}

	user, err := ctrl.engine.SignIn(c.Request.Context(), identity)
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}

// SignOut clears the session
// DELETE /api/v1/session
func (ctrl *SessionController) SignOut(c *gin.Context) {
	if err := ctrl.engine.SignOut(c.Request.Context()); err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateProfile changes only the supplied fields
// PATCH /api/v1/session/profile
func (ctrl *SessionController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
		return
	}

	user, err := ctrl.engine.UpdateProfile(c.Request.Context(), model.ProfileUpdate{
		Name:   req.Name,
		Email:  req.Email,
		Avatar: req.Avatar,
	})
	if err != nil {
		apperrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
