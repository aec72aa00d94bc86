package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"outreach-engine/internal/checkpoint"
	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/outreach"
	"outreach-engine/internal/scrape"
)

type Deps struct {
	DB *sql.DB

	Hub *events.Hub

	// Atomic store for the live config snapshot
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// Pipeline control
	ScrapeStatus *scrape.Status
	Runner       *scrape.Runner
	Checkpoints  *checkpoint.Store

	// Outreach entrypoints (inject for testability)
	Generate func(ctx context.Context, req outreach.Request) (string, error)
	SendMail func(to, subject, body string) error
}
