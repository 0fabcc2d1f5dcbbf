package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gymbuddy/internal/service"
)

type generateRoutineRequest struct {
	Age           int     `json:"age" binding:"required"`
	Weight        float64 `json:"weight" binding:"required"`
	Height        float64 `json:"height" binding:"required"`
	Level         string  `json:"level" binding:"required"`
	Tenure        string  `json:"tenure" binding:"required"`
	ModelProvider string  `json:"model_provider"`
	APIKey        string  `json:"api_key"`
}

// GenerateRoutine 调用模型生成周计划。
// 传入 format=html 时额外返回渲染后的 HTML。
func (a *API) GenerateRoutine(c *gin.Context) {
	var payload generateRoutineRequest
	if !bindJSON(c, &payload, "All profile fields are required") {
		return
	}

	result, err := a.routines.GenerateDetailed(c.Request.Context(), service.RoutineProfile{
		Age:    payload.Age,
		Weight: payload.Weight,
		Height: payload.Height,
		Level:  payload.Level,
		Tenure: payload.Tenure,
	}, payload.ModelProvider, payload.APIKey)
	if err != nil {
		handleRoutineError(c, err)
		return
	}

	response := gin.H{
		"routine":   result.Routine,
		"requestId": result.RequestID,
		"provider":  result.Provider,
	}

	if c.Query("format") == "html" {
		rendered, err := service.RenderRoutineHTML(result.Routine)
		if err != nil {
			c.Error(err)
			respondError(c, http.StatusInternalServerError, "Failed to render routine")
			return
		}
		response["html"] = rendered
	}

	c.JSON(http.StatusOK, response)
}

func handleRoutineError(c *gin.Context, err error) {
	c.Error(err)
	switch {
	case errors.Is(err, service.ErrUnknownProvider):
		respondError(c, http.StatusBadRequest, "Unsupported model provider")
	case errors.Is(err, service.ErrMissingCredential):
		respondError(c, http.StatusInternalServerError, "Failed to generate routine. Check your API key.")
	case errors.Is(err, service.ErrSchemaViolation):
		respondError(c, http.StatusBadGateway, "Model returned an invalid routine")
	case errors.Is(err, service.ErrProviderFailure):
		respondError(c, http.StatusBadGateway, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
