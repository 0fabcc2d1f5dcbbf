package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register 创建新账号，用户名重复时返回 409。
func (a *API) Register(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, "Username and password are required") {
		return
	}

	username := strings.TrimSpace(payload.Username)
	if username == "" {
		respondError(c, http.StatusBadRequest, "Username and password are required")
		return
	}

	created, err := a.accounts.Register(username, payload.Password)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if !created {
		respondError(c, http.StatusConflict, "Username already exists")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "User created successfully"})
}

// Login 校验账号并写入会话。
// 用户不存在与密码错误返回相同的提示。
func (a *API) Login(c *gin.Context) {
	var payload credentialsRequest
	if !bindJSON(c, &payload, "Username and password are required") {
		return
	}

	username := strings.TrimSpace(payload.Username)
	userID, ok, err := a.accounts.Authenticate(username, payload.Password)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Login failed")
		return
	}
	if !ok {
		respondError(c, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionKeyUserID, userID)
	session.Set(sessionKeyUsername, username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"userId": userID, "username": username})
}

// Logout 清除会话。
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to clear session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// AuthRequired 要求请求携带已登录的会话，否则返回 401。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := currentUserID(c); !ok {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
