package ledger

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/ledgerlink-dev/ledgerlink/internal/id"
	"github.com/ledgerlink-dev/ledgerlink/internal/model"
)

// Ledger holds the in-memory contents of one account's ledger file.
type Ledger struct {
	Path      string
	AccountID string
	Records   []model.TransactionRecord
}

// LoadDir reads every account ledger (*.csv) directly under dir, in file
// name order. A missing directory yields no ledgers, not an error.
func LoadDir(dir string) ([]*Ledger, error) {
	paths, err := ListFiles(dir)
	if err != nil {
		return nil, err
	}
	return ReadFiles(paths)
}

// ListFiles returns the ledger file paths directly under dir, in file name
// order. A missing directory yields no paths, not an error.
func ListFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading ledger dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}

// ReadFiles reads each ledger in order. Two files claiming the same account
// id would shadow each other downstream, so that is an error here.
func ReadFiles(paths []string) ([]*Ledger, error) {
	ledgers := make([]*Ledger, 0, len(paths))
	seen := make(map[string]string, len(paths))
	for _, p := range paths {
		lg, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[lg.AccountID]; ok {
			return nil, fmt.Errorf("account %s appears in both %s and %s", lg.AccountID, prev, p)
		}
		seen[lg.AccountID] = lg.Path
		ledgers = append(ledgers, lg)
	}
	return ledgers, nil
}

// ReadFile reads one account ledger. The account id comes from the records,
// falling back to the transaction id prefix and then to the file name stem.
func ReadFile(path string) (*Ledger, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	defer f.Close()

	records, err := ReadRecords(f)
	if err != nil {
		return nil, fmt.Errorf("reading ledger %s: %w", path, err)
	}

	accountID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if len(records) > 0 {
		switch {
		case records[0].AccountID != "":
			accountID = records[0].AccountID
		case id.AccountOf(records[0].ID) != "":
			accountID = id.AccountOf(records[0].ID)
		}
	}

	return &Ledger{Path: path, AccountID: accountID, Records: records}, nil
}

// fileLocks serializes read-modify-write cycles per ledger path so that
// overlapping invocations within one process cannot lose updates.
var fileLocks sync.Map // abs path -> *sync.Mutex

func lockFor(path string) *sync.Mutex {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	v, _ := fileLocks.LoadOrStore(abs, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// LockPaths acquires the write lock for each path and returns a release
// function. Locks are taken in sorted order so overlapping callers cannot
// deadlock; holding them across a whole read-modify-write cycle is what
// keeps a concurrent Append from being lost to a stale rewrite.
func LockPaths(paths []string) func() {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	var held []*sync.Mutex
	for i, p := range sorted {
		if i > 0 && p == sorted[i-1] {
			continue
		}
		mu := lockFor(p)
		mu.Lock()
		held = append(held, mu)
	}
	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

// WriteFileAtomic replaces path with the rendered records. The write goes to
// a temp file in the same directory and renames into place, so a reader sees
// either the old contents or the new, never a partial file. Callers that may
// race another writer hold the path lock via LockPaths for their whole
// read-modify-write cycle; Append and the transfer linker do.
func WriteFileAtomic(path string, records []model.TransactionRecord) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp ledger: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := WriteRecords(tmp, records); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp ledger: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// Append reads the ledger at path (which may not exist yet), appends the
// given records, and atomically rewrites the file, all under the path lock.
func Append(path string, records []model.TransactionRecord) error {
	unlock := LockPaths([]string{path})
	defer unlock()

	var existing []model.TransactionRecord
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// First import for this account.
	case err != nil:
		return fmt.Errorf("opening ledger %s: %w", path, err)
	default:
		existing, err = ReadRecords(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("reading ledger %s: %w", path, err)
		}
	}

	return WriteFileAtomic(path, append(existing, records...))
}
