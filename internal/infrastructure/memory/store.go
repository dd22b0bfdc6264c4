// Package memory is an in-memory implementation of the domain repositories
// and transaction runners, used by use-case tests. Transactions snapshot the
// whole store and restore it on error, so rollback semantics match PostgreSQL.
package memory

import (
	"context"
	"sync"

	"github.com/openretail/pos-backend/internal/application/inventory"
	"github.com/openretail/pos-backend/internal/application/sales"
	"github.com/openretail/pos-backend/internal/domain/entity"
	"github.com/openretail/pos-backend/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ sales.TxRunner     = (*Store)(nil)
)

// Store holds all state behind one mutex. Repo views share it.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex // serializes transactions

	products      map[string]*entity.Product
	sales         map[string]*entity.Sale
	saleItems     map[string][]*entity.SaleItem
	movements     []*entity.InventoryMovement
	customers     map[string]*entity.Customer
	fiscalRecords []*entity.FiscalRecord
	counters      map[string]int64
	settings      map[string]string
	outbox        []*entity.OutboxEntry
	users         map[string]*entity.User
}

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		products:  make(map[string]*entity.Product),
		sales:     make(map[string]*entity.Sale),
		saleItems: make(map[string][]*entity.SaleItem),
		customers: make(map[string]*entity.Customer),
		counters:  make(map[string]int64),
		settings:  make(map[string]string),
		users:     make(map[string]*entity.User),
	}
}

// Seed helpers for tests.

func (s *Store) AddProduct(p *entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *p
	s.products[p.ID] = &cp
}

func (s *Store) AddCustomer(c *entity.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *c
	s.customers[c.ID] = &cp
}

func (s *Store) AddUser(u *entity.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *u
	s.users[u.ID] = &cp
}

func (s *Store) SetSetting(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[key] = value
}

// Repo accessors.

func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }
func (s *Store) Sales() repository.SaleRepository       { return &saleRepo{s} }
func (s *Store) Movements() repository.InventoryMovementRepository {
	return &movementRepo{s}
}
func (s *Store) Customers() repository.CustomerRepository         { return &customerRepo{s} }
func (s *Store) FiscalRecords() repository.FiscalRecordRepository { return &fiscalRecordRepo{s} }
func (s *Store) Counters() repository.CounterRepository           { return &counterRepo{s} }
func (s *Store) Settings() repository.SettingsRepository          { return &settingsRepo{s} }
func (s *Store) Outbox() repository.OutboxRepository              { return &outboxRepo{s} }
func (s *Store) Users() repository.UserRepository                 { return &userRepo{s} }

// Run executes fn with ledger repos, restoring the store on error.
func (s *Store) Run(ctx context.Context, fn func(
	ctx context.Context,
	movements repository.InventoryMovementRepository,
	products repository.ProductRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s.Movements(), s.Products()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// RunSale executes fn with the checkout repo set, restoring the store on error.
func (s *Store) RunSale(ctx context.Context, fn func(
	ctx context.Context,
	sales repository.SaleRepository,
	products repository.ProductRepository,
	movements repository.InventoryMovementRepository,
	customers repository.CustomerRepository,
	outbox repository.OutboxRepository,
) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx, s.Sales(), s.Products(), s.Movements(), s.Customers(), s.Outbox()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type storeSnapshot struct {
	products      map[string]*entity.Product
	sales         map[string]*entity.Sale
	saleItems     map[string][]*entity.SaleItem
	movements     []*entity.InventoryMovement
	customers     map[string]*entity.Customer
	fiscalRecords []*entity.FiscalRecord
	counters      map[string]int64
	settings      map[string]string
	outbox        []*entity.OutboxEntry
	users         map[string]*entity.User
}

func (s *Store) snapshot() storeSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return storeSnapshot{
		products:      cloneMap(s.products),
		sales:         cloneMap(s.sales),
		saleItems:     cloneItemsMap(s.saleItems),
		movements:     cloneSlice(s.movements),
		customers:     cloneMap(s.customers),
		fiscalRecords: cloneSlice(s.fiscalRecords),
		counters:      cloneFlatMap(s.counters),
		settings:      cloneFlatMap(s.settings),
		outbox:        cloneSlice(s.outbox),
		users:         cloneMap(s.users),
	}
}

func (s *Store) restore(snap storeSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = snap.products
	s.sales = snap.sales
	s.saleItems = snap.saleItems
	s.movements = snap.movements
	s.customers = snap.customers
	s.fiscalRecords = snap.fiscalRecords
	s.counters = snap.counters
	s.settings = snap.settings
	s.outbox = snap.outbox
	s.users = snap.users
}

func cloneMap[T any](in map[string]*T) map[string]*T {
	out := make(map[string]*T, len(in))
	for k, v := range in {
		cp := *v
		out[k] = &cp
	}
	return out
}

func cloneFlatMap[T any](in map[string]T) map[string]T {
	out := make(map[string]T, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func cloneSlice[T any](in []*T) []*T {
	out := make([]*T, len(in))
	for i, v := range in {
		cp := *v
		out[i] = &cp
	}
	return out
}

func cloneItemsMap(in map[string][]*entity.SaleItem) map[string][]*entity.SaleItem {
	out := make(map[string][]*entity.SaleItem, len(in))
	for k, v := range in {
		out[k] = cloneSlice(v)
	}
	return out
}
