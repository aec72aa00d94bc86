// engine/internal/replies/poller.go
package replies

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/emersion/go-imap/v2"

	"outreach-engine/internal/config"
	"outreach-engine/internal/events"
	"outreach-engine/internal/store"
)

// Publisher is the slice of the event hub the poller needs.
type Publisher interface {
	Publish(evt string)
}

// Poller scans the replies inbox for answers to sent outreach. A reply
// is any unseen message whose text carries the reference link of a
// logged send. Best-effort throughout; IMAP trouble is logged, never
// fatal to the caller's loop.
type Poller struct {
	Cfg config.Config
	DB  *sql.DB
	Hub Publisher

	Password func() (string, error)

	// Injectable inbox for tests. Matched messages are marked seen via
	// the returned func (nil when there's nothing to mark).
	Fetch func(ctx context.Context) ([]Message, func([]imap.UID) error, func(), error)
}

func (p *Poller) fetch(ctx context.Context) ([]Message, func([]imap.UID) error, func(), error) {
	if p.Fetch != nil {
		return p.Fetch(ctx)
	}

	pass, err := p.Password()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("imap password: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", p.Cfg.Replies.IMAPHost, p.Cfg.Replies.IMAPPort)
	c, err := dialAndLogin(ctx, addr, p.Cfg.Replies.Username, pass)
	if err != nil {
		return nil, nil, nil, err
	}

	msgs, err := fetchUnseen(ctx, c, p.Cfg.Replies.Mailbox, 50)
	if err != nil {
		logoutAndClose(c)
		return nil, nil, nil, err
	}

	seen := func(uids []imap.UID) error { return markSeen(c, uids) }
	closeFn := func() { logoutAndClose(c) }
	return msgs, seen, closeFn, nil
}

// PollOnce runs one scan. Returns how many sends were marked replied.
func (p *Poller) PollOnce(ctx context.Context) (int, error) {
	if !p.Cfg.Replies.Enabled {
		return 0, nil
	}

	links, err := store.SentLinks(ctx, p.DB)
	if err != nil {
		return 0, err
	}
	if len(links) == 0 {
		return 0, nil
	}

	msgs, seen, closeFn, err := p.fetch(ctx)
	if err != nil {
		return 0, err
	}
	if closeFn != nil {
		defer closeFn()
	}
	if len(msgs) == 0 {
		return 0, nil
	}

	matched := 0
	var matchedUIDs []imap.UID
	for _, m := range msgs {
		link := matchLink(m.Text, links)
		if link == "" {
			continue
		}
		n, err := store.MarkReplied(ctx, p.DB, link)
		if err != nil {
			log.Printf("[replies] mark replied %s: %v", link, err)
			continue
		}
		if n > 0 {
			matched++
			matchedUIDs = append(matchedUIDs, m.UID)
			log.Printf("[replies] reply from %s for %s", m.From, link)
			if p.Hub != nil {
				p.Hub.Publish(events.MakeEvent("", events.TypeReplySeen, 1, map[string]string{
					"from": m.From,
					"link": link,
				}))
			}
		}
	}

	if seen != nil && len(matchedUIDs) > 0 {
		if err := seen(matchedUIDs); err != nil {
			log.Printf("[replies] mark seen: %v", err)
		}
	}
	return matched, nil
}

// matchLink finds the first logged link present in a reply body.
func matchLink(text string, links []string) string {
	if text == "" {
		return ""
	}
	for _, l := range links {
		if l != "" && strings.Contains(text, l) {
			return l
		}
	}
	return ""
}
