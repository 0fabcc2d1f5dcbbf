package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionKeyUserID   = "user_id"
	sessionKeyUsername = "username"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

// currentUserID 读取会话中的用户 ID，未登录时 ok 为 false。
func currentUserID(c *gin.Context) (uint, bool) {
	session := sessions.Default(c)
	switch value := session.Get(sessionKeyUserID).(type) {
	case uint:
		return value, value != 0
	default:
		return 0, false
	}
}
