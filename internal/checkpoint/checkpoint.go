// engine/internal/checkpoint/checkpoint.go
package checkpoint

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gofrs/flock"

	"outreach-engine/internal/domain"
)

var linksHeader = []string{"City", "Title", "Link", "Post Date", "Processed"}

var resultsHeader = []string{
	"City", "Title", "Link", "Post Date",
	"Description", "Remote", "Email", "Default Mail",
	"Gmail", "Yahoo", "Outlook", "AOL", "Processed",
}

// Store reads and writes the run's working files. Writes go through a
// temp file and rename under an advisory lock, so a crash mid-write
// leaves the previous snapshot intact and concurrent processes don't
// interleave rows.
type Store struct {
	LinksPath   string
	ResultsPath string
	HistoryPath string
}

func New(dataDir string) *Store {
	return &Store{
		LinksPath:   filepath.Join(dataDir, "links.csv"),
		ResultsPath: filepath.Join(dataDir, "results.csv"),
		HistoryPath: filepath.Join(dataDir, "history_links.csv"),
	}
}

func writeAtomic(path string, write func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	lk := flock.New(path + ".lock")
	if err := lk.Lock(); err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	defer lk.Unlock()

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func readRows(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

// SaveLinks replaces the links file with ls.
func (s *Store) SaveLinks(ls []domain.Listing) error {
	return writeAtomic(s.LinksPath, func(w *csv.Writer) error {
		if err := w.Write(linksHeader); err != nil {
			return err
		}
		for _, l := range ls {
			row := []string{l.City, l.Title, l.Link, l.PostDate, strconv.FormatBool(l.Processed)}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadLinks returns the checkpointed listings; a missing file is an
// empty result, not an error.
func (s *Store) LoadLinks() ([]domain.Listing, error) {
	rows, err := readRows(s.LinksPath)
	if err != nil {
		return nil, err
	}
	var out []domain.Listing
	for _, row := range rows {
		if len(row) < 5 {
			continue
		}
		proc, _ := strconv.ParseBool(row[4])
		out = append(out, domain.Listing{
			City: row[0], Title: row[1], Link: row[2], PostDate: row[3], Processed: proc,
		})
	}
	return out, nil
}

// SaveResults replaces the results file with rs.
func (s *Store) SaveResults(rs []domain.Enriched) error {
	return writeAtomic(s.ResultsPath, func(w *csv.Writer) error {
		if err := w.Write(resultsHeader); err != nil {
			return err
		}
		for _, r := range rs {
			row := []string{
				r.City, r.Title, r.Link, r.PostDate,
				r.Description, r.Remote, r.Email, r.DefaultMail,
				r.Gmail, r.Yahoo, r.Outlook, r.AOL, strconv.FormatBool(r.Processed),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadResults returns the checkpointed enriched records.
func (s *Store) LoadResults() ([]domain.Enriched, error) {
	rows, err := readRows(s.ResultsPath)
	if err != nil {
		return nil, err
	}
	var out []domain.Enriched
	for _, row := range rows {
		if len(row) < 13 {
			continue
		}
		proc, _ := strconv.ParseBool(row[12])
		out = append(out, domain.Enriched{
			Listing: domain.Listing{
				City: row[0], Title: row[1], Link: row[2], PostDate: row[3], Processed: proc,
			},
			Description: row[4], Remote: row[5], Email: row[6], DefaultMail: row[7],
			Gmail: row[8], Yahoo: row[9], Outlook: row[10], AOL: row[11],
		})
	}
	return out, nil
}

// ClearWorking deletes the links and results files. The history ledger
// is never cleared.
func (s *Store) ClearWorking() error {
	for _, p := range []string{s.LinksPath, s.ResultsPath} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

// RemoveResults deletes only the results file, keeping checkpointed links.
func (s *Store) RemoveResults() error {
	if err := os.Remove(s.ResultsPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// HasResults reports whether a results file exists.
func (s *Store) HasResults() bool {
	_, err := os.Stat(s.ResultsPath)
	return err == nil
}
