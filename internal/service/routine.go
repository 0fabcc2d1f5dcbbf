package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// WeeklyDays 是一份周计划必须包含的天数。
const WeeklyDays = 7

// Exercise 描述单个训练动作。
type Exercise struct {
	Name       string `json:"name" validate:"required"`
	SetsReps   string `json:"sets_reps" validate:"required"`
	YouTubeURL string `json:"youtube_url" validate:"required"`
	// FormTip 为 2-3 句的动作要领说明。
	FormTip string `json:"form_tip" validate:"required"`
}

// DailyRoutine 表示一天的训练安排。
type DailyRoutine struct {
	Day       string     `json:"day" validate:"required"`
	Exercises []Exercise `json:"exercises" validate:"min=1,dive"`
}

// WeeklyRoutine 是模型按结构化约束返回的 7 天训练计划，不做持久化。
type WeeklyRoutine struct {
	Days []DailyRoutine `json:"days" validate:"len=7,dive"`
}

var routineValidator = validator.New(validator.WithRequiredStructEnabled())

// weeklyRoutineSchema 返回随请求发送给模型的 JSON Schema。
// 字段描述与 WeeklyRoutine 的结构保持一致。
func weeklyRoutineSchema() map[string]any {
	exercise := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name": map[string]any{
				"type":        "string",
				"description": "Name of the exercise",
			},
			"sets_reps": map[string]any{
				"type":        "string",
				"description": "Sets and Reps (e.g., '3 sets of 12 reps')",
			},
			"youtube_url": map[string]any{
				"type":        "string",
				"description": "YouTube search URL for the exercise",
			},
			"form_tip": map[string]any{
				"type":        "string",
				"description": "2-3 sentence guide on proper form and technique",
			},
		},
		"required":             []string{"name", "sets_reps", "youtube_url", "form_tip"},
		"additionalProperties": false,
	}

	day := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"day": map[string]any{
				"type":        "string",
				"description": "Day name (e.g., 'Day 1: Chest & Triceps')",
			},
			"exercises": map[string]any{
				"type":        "array",
				"description": "List of exercises for this day",
				"items":       exercise,
			},
		},
		"required":             []string{"day", "exercises"},
		"additionalProperties": false,
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"days": map[string]any{
				"type":        "array",
				"description": "7 days of workout routines",
				"items":       day,
			},
		},
		"required":             []string{"days"},
		"additionalProperties": false,
	}
}

// decodeWeeklyRoutine 解析模型输出并校验结构，失败时返回 ErrSchemaViolation。
func decodeWeeklyRoutine(raw []byte) (*WeeklyRoutine, error) {
	var routine WeeklyRoutine
	if err := json.Unmarshal(raw, &routine); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	if err := routineValidator.Struct(routine); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return nil, fmt.Errorf("%w: %s failed on %s", ErrSchemaViolation, first.Namespace(), first.Tag())
		}
		return nil, fmt.Errorf("%w: %v", ErrSchemaViolation, err)
	}

	return &routine, nil
}
