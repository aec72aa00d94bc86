// engine/internal/checkpoint/history.go
package checkpoint

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"outreach-engine/internal/domain"
)

var historyHeader = []string{"link", "city", "title", "date_scraped"}

// EnsureHistory creates the ledger with its header when absent.
func (s *Store) EnsureHistory() error {
	_, err := os.Stat(s.HistoryPath)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.HistoryPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(s.HistoryPath)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write(historyHeader); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// LoadHistory returns every ledger row.
func (s *Store) LoadHistory() ([]domain.HistoryRecord, error) {
	rows, err := readRows(s.HistoryPath)
	if err != nil {
		return nil, err
	}
	var out []domain.HistoryRecord
	for _, row := range rows {
		if len(row) < 4 {
			continue
		}
		out = append(out, domain.HistoryRecord{
			Link: row[0], City: row[1], Title: row[2], DateScraped: row[3],
		})
	}
	return out, nil
}

// AppendHistory appends rows for listings whose link the ledger has not
// seen, stamped with now. The ledger is append-only; existing rows are
// never rewritten. Returns how many rows were added.
func (s *Store) AppendHistory(ls []domain.Listing, now time.Time) (int, error) {
	if err := s.EnsureHistory(); err != nil {
		return 0, err
	}

	lk := flock.New(s.HistoryPath + ".lock")
	if err := lk.Lock(); err != nil {
		return 0, fmt.Errorf("lock history: %w", err)
	}
	defer lk.Unlock()

	existing, err := s.LoadHistory()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, h := range existing {
		seen[h.Link] = true
	}

	var fresh []domain.Listing
	for _, l := range ls {
		if l.Link == "" || seen[l.Link] {
			continue
		}
		seen[l.Link] = true
		fresh = append(fresh, l)
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	f, err := os.OpenFile(s.HistoryPath, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	stamp := now.Format("2006-01-02 15:04:05")
	w := csv.NewWriter(f)
	for _, l := range fresh {
		if err := w.Write([]string{l.Link, l.City, l.Title, stamp}); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// HistoryLinks returns the set of links already in the ledger.
func (s *Store) HistoryLinks() (map[string]bool, error) {
	hs, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(hs))
	for _, h := range hs {
		set[h.Link] = true
	}
	return set, nil
}
