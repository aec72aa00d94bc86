package config

import (
	"fmt"
	"net/url"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate returns a normalized copy plus everything wrong
// or questionable about it. Empty term lists fall back to the defaults.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	var out = cfg
	var res Validation

	trimList := func(xs []string) []string {
		seen := map[string]bool{}
		var ys []string
		for _, x := range xs {
			x = strings.TrimSpace(x)
			if x == "" {
				continue
			}
			key := strings.ToLower(x)
			if seen[key] {
				continue
			}
			seen[key] = true
			ys = append(ys, x)
		}
		return ys
	}

	out.Scrape.URLs = trimList(out.Scrape.URLs)
	out.Scrape.Keywords = trimList(out.Scrape.Keywords)
	out.Scrape.Blacklist = trimList(out.Scrape.Blacklist)
	out.Scrape.RemoteTerms = trimList(out.Scrape.RemoteTerms)
	out.Scrape.NonRemoteTerms = trimList(out.Scrape.NonRemoteTerms)

	if len(out.Scrape.Blacklist) == 0 {
		out.Scrape.Blacklist = append([]string(nil), DefaultBlacklist...)
	}
	if len(out.Scrape.RemoteTerms) == 0 {
		out.Scrape.RemoteTerms = append([]string(nil), DefaultRemoteTerms...)
	}
	if len(out.Scrape.NonRemoteTerms) == 0 {
		out.Scrape.NonRemoteTerms = append([]string(nil), DefaultNonRemoteTerms...)
	}
	if out.Scrape.BatchSize <= 0 {
		out.Scrape.BatchSize = 10
	}
	if out.Scrape.MaxRetries <= 0 {
		out.Scrape.MaxRetries = 3
	}
	if out.Outreach.Parallel <= 0 {
		out.Outreach.Parallel = 3
	}
	if out.Replies.PollSeconds <= 0 {
		out.Replies.PollSeconds = 300
	}

	// ---- Validation rules ----

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if len(out.Scrape.URLs) == 0 {
		res.addErr("scrape.urls must have at least 1 search URL")
	}
	for i, raw := range out.Scrape.URLs {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("scrape.urls[%d] is not an absolute URL: %q", i, raw)
		}
	}
	if len(out.Scrape.Keywords) == 0 {
		res.addWarn("scrape.keywords is empty; every discovered title will be kept.")
	}
	if out.Scrape.BatchSize > 100 {
		res.addWarn("scrape.batch_size is %d; checkpoints will be far apart.", out.Scrape.BatchSize)
	}
	if out.Scrape.MaxRetries > 10 {
		res.addWarn("scrape.max_retries is %d; failed pages will stall the run.", out.Scrape.MaxRetries)
	}

	if out.Outreach.OllamaURL != "" {
		if u, err := url.Parse(out.Outreach.OllamaURL); err != nil || u.Scheme == "" || u.Host == "" {
			res.addErr("outreach.ollama_url is not an absolute URL: %q", out.Outreach.OllamaURL)
		}
	}
	if out.Outreach.OllamaURL != "" && strings.TrimSpace(out.Outreach.Model) == "" {
		res.addWarn("outreach.model is empty; the server's first model will be used.")
	}

	if out.Mail.SMTPHost != "" {
		if out.Mail.SMTPPort == 0 {
			res.addErr("mail.smtp_port is required when mail.smtp_host is set")
		}
		if strings.TrimSpace(out.Mail.Username) == "" {
			res.addErr("mail.username is required when mail.smtp_host is set")
		}
	}

	if out.Replies.Enabled {
		if strings.TrimSpace(out.Replies.IMAPHost) == "" {
			res.addErr("replies.imap_host is required when replies.enabled=true")
		}
		if out.Replies.IMAPPort == 0 {
			res.addErr("replies.imap_port is required when replies.enabled=true")
		}
		if strings.TrimSpace(out.Replies.Username) == "" {
			res.addErr("replies.username is required when replies.enabled=true")
		}
		if strings.TrimSpace(out.Replies.Mailbox) == "" {
			res.addErr("replies.mailbox is required when replies.enabled=true")
		}
	}

	// keyword/blacklist overlap is almost always a config mistake
	blackSet := map[string]bool{}
	for _, b := range out.Scrape.Blacklist {
		blackSet[strings.ToLower(b)] = true
	}
	for _, k := range out.Scrape.Keywords {
		if blackSet[strings.ToLower(k)] {
			res.addWarn("keyword appears in both keywords and blacklist: %q", k)
		}
	}

	return out, res
}
