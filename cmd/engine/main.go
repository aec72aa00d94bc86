package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"outreach-engine/internal/checkpoint"
	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/mailer"
	"outreach-engine/internal/outreach"
	"outreach-engine/internal/replies"
	"outreach-engine/internal/scheduler"
	"outreach-engine/internal/scrape"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/store"
)

func main() {
	// Engine data dir: env wins, then the loaded config, then cwd.
	dataDir := os.Getenv("OUTREACH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}
	personasPath, err := config.EnsurePersonas(dataDir, filepath.Join("config", "personas.yml"))
	if err != nil {
		log.Fatalf("personas bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	workDir := dataDir
	if cfg.App.DataDir != "" {
		workDir = cfg.App.DataDir
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	db, err := store.Open(filepath.Join(workDir, "outreach.db"))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()
	status := scrape.NewStatus()
	checkpoints := checkpoint.New(workDir)

	runner := &scrape.Runner{
		New: func(runCfg config.Config) *scrape.Pipeline {
			return scrape.NewPipeline(runCfg, checkpoints, status, hub)
		},
	}

	personas, err := outreach.LoadPersonas(personasPath)
	if err != nil {
		log.Fatalf("personas load failed (%s): %v", personasPath, err)
	}

	generate := func(ctx context.Context, req outreach.Request) (string, error) {
		cur := cfgVal.Load().(config.Config)
		if req.Persona == "" {
			req.Persona = cur.Outreach.Persona
		}
		g := &outreach.Generator{
			Client:   outreach.NewClient(cur.Outreach.OllamaURL, cur.Outreach.Model),
			Personas: personas,
			Parallel: cur.Outreach.Parallel,
		}
		return g.Generate(ctx, req)
	}

	sendMail := func(to, subject, body string) error {
		cur := cfgVal.Load().(config.Config)
		m := &mailer.Mailer{
			Host:     cur.Mail.SMTPHost,
			Port:     cur.Mail.SMTPPort,
			Username: cur.Mail.Username,
			From:     cur.Mail.From,
			Password: func() (string, error) {
				return secrets.GetPassword(secrets.SMTPKeyringAccount(cur))
			},
		}
		return m.SendMail(to, subject, body)
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Replies.Enabled {
		interval := time.Duration(cfg.Replies.PollSeconds) * time.Second
		go scheduler.Every(rootCtx, interval, "replies", func(ctx context.Context) error {
			cur := cfgVal.Load().(config.Config)
			if !cur.Replies.Enabled {
				return nil
			}
			p := &replies.Poller{
				Cfg: cur,
				DB:  db.Pool,
				Hub: hub,
				Password: func() (string, error) {
					return secrets.GetPassword(secrets.IMAPKeyringAccount(cur))
				},
			}
			n, err := p.PollOnce(ctx)
			if n > 0 {
				log.Printf("[replies] %d sends marked replied", n)
			}
			return err
		})
	}

	go scheduler.Every(rootCtx, 24*time.Hour, "sendlog-prune", func(ctx context.Context) error {
		_, err := store.CleanupOldSends(db.Pool)
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		CfgVal:       &cfgVal,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		ScrapeStatus: status,
		Runner:       runner,
		Checkpoints:  checkpoints,
		Generate:     generate,
		SendMail:     sendMail,
	})

	srv := &http.Server{
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))

	srv.Handler = httpapi.Chain(mux,
		httpapi.Cors,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("[engine] listening on http://%s (data=%s)", addr, workDir)
	log.Printf("[engine] shutdown token: %s", token)

	go func() {
		<-rootCtx.Done()
		runner.Stop()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
