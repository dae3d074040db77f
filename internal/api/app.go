package api

import (
	"github.com/yourname/sleepcycle/internal"
	"github.com/yourname/sleepcycle/internal/auth"
	"github.com/yourname/sleepcycle/internal/config"
	"github.com/yourname/sleepcycle/internal/storage"
)

type App interface {
	Logger() internal.Logger
	Users() storage.UserRepository
	SleepLogs() storage.SleepLogRepository
	Sessions() *auth.SessionService
	Hasher() *auth.PasswordHasher
	Strength() *auth.StrengthPolicy
	LoginLimiter() auth.LoginLimiter
	Config() *config.Config
}

// Application bundles the wired dependencies for the handlers.
type Application struct {
	Log      internal.Logger
	Store    storage.Store
	Session  *auth.SessionService
	Password *auth.PasswordHasher
	Policy   *auth.StrengthPolicy
	Limiter  auth.LoginLimiter
	Cfg      *config.Config
}

func (a *Application) Logger() internal.Logger               { return a.Log }
func (a *Application) Users() storage.UserRepository         { return a.Store }
func (a *Application) SleepLogs() storage.SleepLogRepository { return a.Store }
func (a *Application) Sessions() *auth.SessionService        { return a.Session }
func (a *Application) Hasher() *auth.PasswordHasher          { return a.Password }
func (a *Application) Strength() *auth.StrengthPolicy        { return a.Policy }
func (a *Application) LoginLimiter() auth.LoginLimiter       { return a.Limiter }
func (a *Application) Config() *config.Config                { return a.Cfg }

var _ App = (*Application)(nil)
