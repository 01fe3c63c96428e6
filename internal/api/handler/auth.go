package handler

import (
	"net/http"

	"flatgripe/backend/internal/utils"

	"github.com/gin-gonic/gin"
)

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	FlatCode string `json:"flatCode" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register створює користувача і повертає JWT
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("username, password and flatCode are required"))
		return
	}

	user, _, err := h.Auth.Register(c.Request.Context(), req.Username, req.Password, req.FlatCode)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.Auth.Tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// Login перевіряє облікові дані і повертає JWT разом з кодом квартири
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, utils.NewValidationError("username and password are required"))
		return
	}

	user, flatCode, err := h.Auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	token, err := h.Auth.Tokens.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user, "flatCode": flatCode})
}
