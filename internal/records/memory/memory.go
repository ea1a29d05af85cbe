package memory

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"financas/internal/core"
	"financas/internal/records"
)

// Store keeps all three record kinds in memory behind one mutex. It backs
// local development and tests; snapshots handed out are always copies.
type Store struct {
	mu     sync.Mutex
	nextID int64
	txs    []core.Transaction
	banks  []core.Bank
	cats   []string
}

func New(categories []string, banks []core.Bank) *Store {
	return &Store{nextID: 1, cats: dedupe(categories), banks: banks}
}

// NewFromFiles seeds categories and banks from plain-text files under base.
// Bank lines are "name;opening_balance"; malformed lines are skipped.
func NewFromFiles(base string) *Store {
	cats := readLines(filepath.Join(base, "seed_categories.txt"))
	if len(cats) == 0 {
		cats = []string{"Alimentação", "Transporte", "Salário"}
	}

	var banks []core.Bank
	for _, line := range readLines(filepath.Join(base, "seed_banks.txt")) {
		name, balance, ok := strings.Cut(line, ";")
		if !ok {
			continue
		}
		cents, err := core.ParseSignedDecimalToCents(balance)
		if err != nil {
			continue
		}
		banks = append(banks, core.Bank{
			Name:           strings.TrimSpace(name),
			OpeningBalance: core.Money{Cents: cents},
		})
	}

	return New(cats, banks)
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.txs...), nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.nextID
	s.nextID++
	s.txs = append(s.txs, t)
	return t.ID, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			t.ID = id
			s.txs[i] = t
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.txs {
		if s.txs[i].ID == id {
			s.txs = append(s.txs[:i], s.txs[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func (s *Store) ListCategories(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cats...), nil
}

func (s *Store) UpsertCategory(_ context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.ErrEmptyCategory
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cats {
		if c == name {
			return nil
		}
	}
	s.cats = append(s.cats, name)
	return nil
}

func (s *Store) ListBanks(_ context.Context) ([]core.Bank, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Bank(nil), s.banks...), nil
}

func (s *Store) GetBank(_ context.Context, name string) (core.Bank, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.banks {
		if b.Name == name {
			return b, true, nil
		}
	}
	return core.Bank{}, false, nil
}

func (s *Store) UpsertBank(_ context.Context, b core.Bank) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.banks {
		if s.banks[i].Name == b.Name {
			s.banks[i] = b
			return nil
		}
	}
	s.banks = append(s.banks, b)
	return nil
}

func (s *Store) DeleteBank(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.banks {
		if s.banks[i].Name == name {
			s.banks = append(s.banks[:i], s.banks[i+1:]...)
			return nil
		}
	}
	return records.ErrNotFound
}

func readLines(path string) []string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
