package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/iho/ledgerviews/internal/domain"
)

// LoadTaxonomy reads and validates a statement taxonomy from a JSON file.
func LoadTaxonomy(path string) (*domain.Taxonomy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy: %w", err)
	}

	var cfg domain.TaxonomyConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse taxonomy: %w", err)
	}
	return domain.NewTaxonomy(cfg)
}

// Registry serves the chart-of-accounts, counterparty and opening-balance
// lookups from JSON files loaded into memory. It backs the CLI path, where no
// database is present.
type Registry struct {
	accounts map[string]*domain.AccountRecord
	parties  map[string]*domain.PartyRecord
	openings map[string]*domain.OpeningBalance
}

// registryFile is the JSON shape of the registry input.
type registryFile struct {
	Accounts        []domain.AccountRecord  `json:"accounts"`
	Counterparties  []domain.PartyRecord    `json:"counterparties"`
	OpeningBalances []domain.OpeningBalance `json:"opening_balances"`
}

// LoadRegistry reads a registry file. An empty path yields an empty registry,
// which makes every lookup a miss.
func LoadRegistry(path string) (*Registry, error) {
	r := &Registry{
		accounts: make(map[string]*domain.AccountRecord),
		parties:  make(map[string]*domain.PartyRecord),
		openings: make(map[string]*domain.OpeningBalance),
	}
	if path == "" {
		return r, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}

	var f registryFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	for i := range f.Accounts {
		r.accounts[f.Accounts[i].Code] = &f.Accounts[i]
	}
	for i := range f.Counterparties {
		r.parties[f.Counterparties[i].ID] = &f.Counterparties[i]
	}
	for i := range f.OpeningBalances {
		r.openings[f.OpeningBalances[i].AccountCode] = &f.OpeningBalances[i]
	}
	return r, nil
}

// GetByCode resolves an account record; a miss returns (nil, nil).
func (r *Registry) GetByCode(_ context.Context, code string) (*domain.AccountRecord, error) {
	return r.accounts[code], nil
}

// GetByID resolves a counterparty record; a miss returns (nil, nil).
func (r *Registry) GetByID(_ context.Context, id string) (*domain.PartyRecord, error) {
	return r.parties[id], nil
}

// GetByAccount resolves an opening balance; a miss returns (nil, nil).
func (r *Registry) GetByAccount(_ context.Context, code string) (*domain.OpeningBalance, error) {
	return r.openings[code], nil
}

// Codes lists every account with a declared opening balance.
func (r *Registry) Codes(_ context.Context) ([]string, error) {
	codes := make([]string, 0, len(r.openings))
	for code := range r.openings {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes, nil
}

// MemoryLock serializes jobs within a single process. It backs the CLI path,
// where no Redis is present.
type MemoryLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemoryLock creates a new MemoryLock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]struct{})}
}

// Acquire takes the in-process lock for a taxpayer's period.
func (l *MemoryLock) Acquire(_ context.Context, taxpayerID string, period int) (func(context.Context) error, error) {
	key := fmt.Sprintf("%s:%d", taxpayerID, period)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[key]; ok {
		return nil, domain.ErrJobLocked
	}
	l.held[key] = struct{}{}

	release := func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		return nil
	}
	return release, nil
}
