package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/db"
	"github.com/gymbuddy/internal/service"
)

type profileRequest struct {
	Age    int     `json:"age"`
	Weight float64 `json:"weight"`
	Height float64 `json:"height"`
	Level  string  `json:"level"`
	Tenure string  `json:"tenure"`
}

// GetProfile 返回当前用户的训练档案，未保存过时 profile 为 null。
func (a *API) GetProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	profile, err := a.accounts.GetProfile(userID)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	if profile == nil {
		c.JSON(http.StatusOK, gin.H{"profile": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profilePayload(*profile)})
}

// SaveProfile 覆盖保存当前用户的训练档案。
func (a *API) SaveProfile(c *gin.Context) {
	userID, _ := currentUserID(c)

	var payload profileRequest
	if !bindJSON(c, &payload, "Invalid profile payload") {
		return
	}

	if err := a.accounts.SaveProfile(userID, payload.toInput()); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	profile, err := a.accounts.GetProfile(userID)
	if err != nil || profile == nil {
		c.JSON(http.StatusOK, gin.H{"message": "Profile saved"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile saved", "profile": profilePayload(*profile)})
}

func (r profileRequest) toInput() service.ProfileInput {
	return service.ProfileInput{
		Age:    r.Age,
		Weight: r.Weight,
		Height: r.Height,
		Level:  r.Level,
		Tenure: r.Tenure,
	}
}

func profilePayload(profile db.Profile) gin.H {
	return gin.H{
		"user_id":    profile.UserID,
		"age":        profile.Age,
		"weight":     profile.Weight,
		"height":     profile.Height,
		"level":      profile.Level,
		"tenure":     profile.Tenure,
		"updated_at": profile.UpdatedAt,
	}
}
