// engine/internal/config/config.go
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port"`
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Scrape struct {
		URLs           []string `yaml:"urls"`
		Keywords       []string `yaml:"keywords"`
		Blacklist      []string `yaml:"blacklist"`
		RemoteTerms    []string `yaml:"remote_terms"`
		NonRemoteTerms []string `yaml:"non_remote_terms"`
		BatchSize      int      `yaml:"batch_size"`
		MaxRetries     int      `yaml:"max_retries"`
		Headless       bool     `yaml:"headless"`
	} `yaml:"scrape"`

	Outreach struct {
		OllamaURL string `yaml:"ollama_url"`
		Model     string `yaml:"model"`
		Persona   string `yaml:"persona"`
		Parallel  int    `yaml:"parallel"`
	} `yaml:"outreach"`

	Mail struct {
		SMTPHost string `yaml:"smtp_host"`
		SMTPPort int    `yaml:"smtp_port"`
		Username string `yaml:"username"`
		From     string `yaml:"from"`
	} `yaml:"mail"`

	Replies struct {
		Enabled     bool   `yaml:"enabled"`
		IMAPHost    string `yaml:"imap_host"`
		IMAPPort    int    `yaml:"imap_port"`
		Username    string `yaml:"username"`
		Mailbox     string `yaml:"mailbox"`
		PollSeconds int    `yaml:"poll_seconds"`
	} `yaml:"replies"`
}

// DefaultBlacklist is applied when scrape.blacklist is absent from the
// user config. Terms are matched case-insensitively as substrings.
var DefaultBlacklist = []string{
	"paid research",
	"get paid",
	"paid wellness",
	"sis4",
	"research",
	"study",
	"studies",
	"make america",
	"thinking about drinking less",
	"paid cash",
	"survey",
	"cash relief",
	"local",
	"extra income",
	"daily pay",
	"easiest money online",
	"paid to post",
	"paid for your opinions",
	"online survey",
}

// DefaultRemoteTerms and DefaultNonRemoteTerms classify descriptions;
// remote terms win when both match.
var (
	DefaultRemoteTerms = []string{
		"remote", "work from home", "wfh", "telecommute", "anywhere",
	}
	DefaultNonRemoteTerms = []string{
		"on-site", "onsite", "in person", "in-person", "local only", "must be local",
	}
)

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}
