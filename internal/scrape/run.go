// engine/internal/scrape/run.go
package scrape

import (
	"context"
	"log"
	"math/rand"
	"time"

	"outreach-engine/internal/browser"
	"outreach-engine/internal/checkpoint"
	"outreach-engine/internal/config"
	"outreach-engine/internal/domain"
	"outreach-engine/internal/events"
)

// Publisher is the slice of the event hub the pipeline needs.
type Publisher interface {
	Publish(evt string)
}

// Options tune one run.
type Options struct {
	StartIndex int // prepend already-checkpointed results, skip this many listings
	MaxCount   int // cap on newly processed records, 0 = unlimited
}

// Pipeline drives a full run: discovery over the configured search
// URLs, cleaning, then detail enrichment with batch checkpoints.
type Pipeline struct {
	Cfg    config.Config
	Store  *checkpoint.Store
	Status *Status
	Hub    Publisher

	// Injectable for tests; left nil they are wired to a live browser
	// session when Run starts.
	LoadPage func(url string, mode browser.Mode) error
	PageHTML func() (string, error)
	Reveal   func(link string) EmailInfo
	Sleep    func(time.Duration)
	Now      func() time.Time

	session *browser.Session
}

func NewPipeline(cfg config.Config, store *checkpoint.Store, status *Status, hub Publisher) *Pipeline {
	return &Pipeline{Cfg: cfg, Store: store, Status: status, Hub: hub}
}

func (p *Pipeline) publish(typ string, data any) {
	if p.Hub != nil {
		p.Hub.Publish(events.MakeEvent("", typ, 1, data))
	}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// pause sleeps a random duration in [min,max]; pacing keeps the client
// from hammering the site.
func (p *Pipeline) pause(min, max time.Duration) {
	d := min
	if max > min {
		d = min + time.Duration(rand.Int63n(int64(max-min)))
	}
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}

// ensureBrowser wires the live session unless test stubs are injected.
func (p *Pipeline) ensureBrowser() error {
	if p.LoadPage != nil {
		return nil
	}
	sess, err := browser.NewSession(p.Cfg.Scrape.Headless)
	if err != nil {
		return err
	}
	defense := &browser.Defense{
		Session: sess,
		Notify:  func(ev string) { p.publish(ev, nil) },
	}
	loader := &browser.Loader{
		Session:    sess,
		Defense:    defense,
		MaxRetries: p.Cfg.Scrape.MaxRetries,
	}
	revealer := &Revealer{Session: sess, Defense: defense, Loader: loader}

	p.session = sess
	p.LoadPage = loader.Load
	p.PageHTML = func() (string, error) { return sess.Page().HTML() }
	p.Reveal = revealer.Reveal
	return nil
}

func (p *Pipeline) teardown() {
	if p.session != nil {
		p.session.Close()
		p.session = nil
		p.LoadPage = nil
		p.PageHTML = nil
		p.Reveal = nil
	}
}

// Teardown closes any live session. Used by cleanup.
func (p *Pipeline) Teardown() { p.teardown() }

func (p *Pipeline) setPhase(phase string, progress int) {
	p.Status.Update(func(st *RunStatus) {
		st.Phase = phase
		st.Progress = progress
	})
	p.publish(events.TypePhase, map[string]any{"phase": phase, "progress": progress})
}

func (p *Pipeline) fail(err error) {
	log.Printf("[run] failed: %v", err)
	p.Status.Update(func(st *RunStatus) {
		st.Running = false
		st.Error = err.Error()
	})
	p.publish(events.TypeRunError, map[string]string{"error": err.Error()})
}

// Run executes the whole pipeline. Blocking; callers start it in a
// goroutine. Cancelling ctx stops it between pages, leaving checkpoints
// valid.
func (p *Pipeline) Run(ctx context.Context, opts Options) {
	defer p.teardown()

	p.Status.Update(func(st *RunStatus) {
		*st = RunStatus{Running: true, Phase: PhaseDiscovery}
	})
	p.publish(events.TypeRunStarted, nil)

	if err := p.ensureBrowser(); err != nil {
		p.fail(err)
		return
	}

	listings, err := p.discover(ctx)
	if err != nil {
		p.fail(err)
		return
	}
	if len(listings) == 0 {
		log.Printf("[run] no listings matched")
		p.Status.Update(func(st *RunStatus) {
			st.Running = false
			st.Completed = true
			st.NoResults = true
			st.Phase = PhaseCompleted
			st.Progress = 100
		})
		p.publish(events.TypeNoResults, nil)
		return
	}

	p.setPhase(PhaseCleaning, 30)
	cleaned := Clean(listings, p.Cfg.Scrape.Blacklist)
	log.Printf("[clean] %d listings after dedupe/blacklist (from %d)", len(cleaned), len(listings))
	if err := p.Store.SaveLinks(cleaned); err != nil {
		p.fail(err)
		return
	}

	p.setPhase(PhaseDetails, 50)
	results, err := p.enrich(ctx, cleaned, opts)
	if err != nil {
		p.fail(err)
		return
	}

	p.Status.Update(func(st *RunStatus) {
		st.Running = false
		st.Completed = true
		st.Phase = PhaseCompleted
		st.Progress = 100
		st.LastCompleted = p.now().Format(time.RFC3339)
		st.CurrentCity = ""
	})
	p.publish(events.TypeRunCompleted, map[string]int{"results": len(results)})
	log.Printf("[run] completed with %d results", len(results))
}

// discover walks the search URLs, filtering candidates as they stream
// in and checkpointing links plus the history ledger after each URL.
func (p *Pipeline) discover(ctx context.Context) ([]domain.Listing, error) {
	var all []domain.Listing
	for _, u := range p.Cfg.Scrape.URLs {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		city := CityFromURL(u)
		p.Status.Update(func(st *RunStatus) { st.CurrentCity = city })

		if err := p.LoadPage(u, browser.ModeSearch); err != nil {
			log.Printf("[discover] %s: %v", u, err)
			continue
		}
		html, err := p.PageHTML()
		if err != nil {
			log.Printf("[discover] snapshot %s: %v", u, err)
			continue
		}

		candidates := ParseCandidates(html, city, p.now())
		log.Printf("[discover] %s: %d candidates", city, len(candidates))

		var kept []domain.Listing
		for _, c := range candidates {
			if !HasKeyword(c.Title, p.Cfg.Scrape.Keywords) {
				continue
			}
			if term, hit := BlacklistHit(c.Title, p.Cfg.Scrape.Blacklist); hit {
				log.Printf("[discover] blacklisted %q (%s)", c.Title, term)
				continue
			}
			kept = append(kept, c)
			p.pause(500*time.Millisecond, 1500*time.Millisecond)
		}
		log.Printf("[discover] %s: kept %d", city, len(kept))

		all = append(all, kept...)
		if len(all) > 0 {
			if err := p.Store.SaveLinks(all); err != nil {
				log.Printf("[discover] checkpoint: %v", err)
			}
			if n, err := p.Store.AppendHistory(kept, p.now()); err != nil {
				log.Printf("[discover] history: %v", err)
			} else if n > 0 {
				log.Printf("[discover] %d new links in history", n)
			}
		}

		p.pause(5*time.Second, 10*time.Second)
	}
	return all, nil
}

// enrich visits each listing's detail page. Checkpoints every batch and
// once more at the end.
func (p *Pipeline) enrich(ctx context.Context, ls []domain.Listing, opts Options) ([]domain.Enriched, error) {
	var results []domain.Enriched

	if opts.StartIndex > 0 {
		if opts.StartIndex >= len(ls) {
			return nil, nil
		}
		prev, err := p.Store.LoadResults()
		if err != nil {
			return nil, err
		}
		results = prev
		ls = ls[opts.StartIndex:]
	}
	if opts.MaxCount > 0 && len(ls) > opts.MaxCount {
		ls = ls[:opts.MaxCount]
	}

	batch := p.Cfg.Scrape.BatchSize
	if batch <= 0 {
		batch = 10
	}

	total := len(ls)
	for i, l := range ls {
		if err := ctx.Err(); err != nil {
			_ = p.Store.SaveResults(results)
			return results, err
		}
		if l.Processed || l.Link == "" {
			continue
		}

		progress := 50
		if total > 0 {
			progress = 50 + 50*i/total
		}
		p.Status.Update(func(st *RunStatus) {
			st.CurrentCity = l.City
			st.Progress = progress
		})

		rec := p.enrichOne(l)
		if rec == nil {
			continue
		}
		results = append(results, *rec)

		if len(results)%batch == 0 {
			if err := p.Store.SaveResults(results); err != nil {
				log.Printf("[details] checkpoint: %v", err)
			} else {
				log.Printf("[details] checkpointed %d results", len(results))
			}
		}

		p.pause(2*time.Second, 5*time.Second)
	}

	if err := p.Store.SaveResults(results); err != nil {
		return results, err
	}
	return results, nil
}

// enrichOne visits one detail page. A nil return means the record was
// dropped (blacklisted description). Failures come back as sentinel
// records; a panic additionally recreates the session.
func (p *Pipeline) enrichOne(l domain.Listing) (rec *domain.Enriched) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[details] panic on %s: %v", l.Link, r)
			if p.session != nil {
				if err := p.session.Recreate(); err != nil {
					log.Printf("[details] recreate session: %v", err)
				}
			}
			e := sentinelRecord(l)
			rec = &e
		}
	}()

	if err := p.LoadPage(l.Link, browser.ModeDetail); err != nil {
		log.Printf("[details] load %s: %v", l.Link, err)
		e := sentinelRecord(l)
		return &e
	}
	html, err := p.PageHTML()
	if err != nil {
		log.Printf("[details] snapshot %s: %v", l.Link, err)
		e := sentinelRecord(l)
		return &e
	}

	e := domain.Enriched{Listing: l}
	e.Processed = true

	desc := ExtractDescription(html)
	if desc != domain.DescriptionMissing {
		if term, hit := BlacklistHit(desc, p.Cfg.Scrape.Blacklist); hit {
			log.Printf("[details] dropping %q, blacklisted description (%s)", l.Title, term)
			return nil
		}
	}
	e.Description = desc
	e.Remote = ClassifyRemote(desc, p.Cfg.Scrape.RemoteTerms, p.Cfg.Scrape.NonRemoteTerms)
	if desc == domain.DescriptionMissing {
		e.Remote = domain.RemoteUnknown
	}

	info := p.Reveal(l.Link)
	e.Email = info.Email
	e.DefaultMail = info.DefaultMail
	e.Gmail = info.Gmail
	e.Yahoo = info.Yahoo
	e.Outlook = info.Outlook
	e.AOL = info.AOL

	return &e
}

func sentinelRecord(l domain.Listing) domain.Enriched {
	e := domain.Enriched{Listing: l}
	e.Processed = true
	e.Description = domain.DescriptionLoadFail
	e.Remote = domain.RemoteUnknown
	e.Email = domain.EmailUnavailable
	return e
}
