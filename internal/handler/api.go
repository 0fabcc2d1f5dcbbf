package handler

import (
	"context"

	"github.com/gymbuddy/internal/service"
)

// routineGenerator 抽象训练计划生成能力，便于在测试中替换为桩实现。
type routineGenerator interface {
	GenerateDetailed(ctx context.Context, profile service.RoutineProfile, provider, apiKey string) (service.RoutineResult, error)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	dbPath   string
	accounts *service.AccountService
	routines routineGenerator
}

// NewAPI constructs a handler set backed by the database file and routine generator.
func NewAPI(databasePath string, routines *service.RoutineGenerator) *API {
	return &API{
		dbPath:   databasePath,
		accounts: service.NewAccountService(databasePath),
		routines: routines,
	}
}

// Accounts exposes the account store for startup tasks such as seeding.
func (a *API) Accounts() *service.AccountService {
	return a.accounts
}
