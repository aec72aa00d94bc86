package httpapi

import "net/http"

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Scrape pipeline
	sch := ScrapeHandler{
		CfgVal:       d.CfgVal,
		ScrapeStatus: d.ScrapeStatus,
		Runner:       d.Runner,
		Checkpoints:  d.Checkpoints,
	}
	mux.HandleFunc("/api/start-scraping", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Start,
	}))
	mux.HandleFunc("/api/scraping-status", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Status,
	}))
	mux.HandleFunc("/api/download-results", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: sch.Download,
	}))
	mux.HandleFunc("/api/cleanup", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sch.Cleanup,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
	}
	mux.HandleFunc("/api/current-config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
	}))
	mux.HandleFunc("/api/update-config", methodMux(map[string]http.HandlerFunc{
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/api/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	mux.HandleFunc("/api/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Outreach
	oh := OutreachHandler{
		DB:       d.DB,
		Hub:      d.Hub,
		Generate: d.Generate,
		SendMail: d.SendMail,
	}
	mux.HandleFunc("/api/outreach/generate", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: oh.GenerateEmail,
	}))
	mux.HandleFunc("/api/outreach/send", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: oh.Send,
	}))

	// Send log
	slh := SendLogHandler{DB: d.DB}
	mux.HandleFunc("/api/sendlog", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: slh.List,
	}))

	// Secrets (use cfgVal, NOT a snapshot cfg)
	sh := SecretsHandler{CfgVal: d.CfgVal}
	mux.HandleFunc("/api/secrets/smtp", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetSMTPPassword,
	}))
	mux.HandleFunc("/api/secrets/imap", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SetIMAPPassword,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Health
	hh := HealthHandler{}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))

	return mux
}
