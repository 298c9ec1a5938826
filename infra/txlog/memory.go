// Package txlog provides the transaction log implementations: an in-memory
// log for tests and local runs, and a gorm/postgres log for production.
package txlog

import (
	"context"
	"iter"
	"sort"
	"sync"
	"time"

	"github.com/novawallet/novawallet/pkg/domain/wallet"
	"github.com/novawallet/novawallet/pkg/dto"
)

type memoryRecord struct {
	read dto.TransactionRead
	seq  int64
}

// Memory is an in-process txlog.Log guarded by one mutex. Append and
// Transition hold it for microseconds; contention is not a concern at test
// scale.
type Memory struct {
	mu      sync.Mutex
	records map[string]*memoryRecord
	nextSeq int64
}

// NewMemory returns an empty in-memory transaction log.
func NewMemory() *Memory {
	return &Memory{records: make(map[string]*memoryRecord)}
}

// Append creates a record, rejecting duplicate ids and reused idempotency
// keys, mirroring the partial unique index the postgres log relies on.
func (m *Memory) Append(_ context.Context, create dto.TransactionCreate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.records[create.ID]; exists {
		return wallet.ErrDuplicateTransaction
	}
	if create.IdempotencyKey != "" {
		for _, rec := range m.records {
			if rec.read.AccountID == create.AccountID && rec.read.IdempotencyKey == create.IdempotencyKey {
				return wallet.ErrDuplicateTransaction
			}
		}
	}
	now := time.Now()
	status := create.Status
	if status == "" {
		status = wallet.StatusCreated
	}
	m.nextSeq++
	m.records[create.ID] = &memoryRecord{
		seq: m.nextSeq,
		read: dto.TransactionRead{
			ID:                 create.ID,
			AccountID:          create.AccountID,
			Amount:             create.Amount,
			Kind:               create.Kind,
			Method:             create.Method,
			Status:             status,
			DestinationKey:     create.DestinationKey,
			DestinationKeyType: create.DestinationKeyType,
			IdempotencyKey:     create.IdempotencyKey,
			CreatedAt:          now,
			UpdatedAt:          now,
		},
	}
	return nil
}

// Transition moves a record forward through the status machine, guarded by
// the expected prior status. First writer wins; everyone else gets
// wallet.ErrInvalidTransition and the record stays untouched.
func (m *Memory) Transition(
	_ context.Context,
	id string,
	from, to wallet.Status,
	extra dto.TransactionUpdate,
) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return wallet.ErrTransactionNotFound
	}
	if rec.read.Status != from || !from.CanTransitionTo(to) {
		return wallet.ErrInvalidTransition
	}
	rec.read.Status = to
	if extra.ExternalRef != nil {
		rec.read.ExternalRef = *extra.ExternalRef
	}
	if extra.PixQRCode != nil {
		rec.read.PixQRCode = *extra.PixQRCode
	}
	if extra.PixCopyPaste != nil {
		rec.read.PixCopyPaste = *extra.PixCopyPaste
	}
	if extra.ExpiresAt != nil {
		rec.read.ExpiresAt = extra.ExpiresAt
	}
	rec.read.UpdatedAt = time.Now()
	return nil
}

// Get returns a copy of one record.
func (m *Memory) Get(_ context.Context, id string) (*dto.TransactionRead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, wallet.ErrTransactionNotFound
	}
	out := rec.read
	return &out, nil
}

// GetByIdempotencyKey returns the record previously created with this key.
func (m *Memory) GetByIdempotencyKey(_ context.Context, accountID, key string) (*dto.TransactionRead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.read.AccountID == accountID && rec.read.IdempotencyKey == key {
			out := rec.read
			return &out, nil
		}
	}
	return nil, wallet.ErrTransactionNotFound
}

// GetByExternalRef returns the record carrying a gateway reference.
func (m *Memory) GetByExternalRef(_ context.Context, externalRef string) (*dto.TransactionRead, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.read.ExternalRef == externalRef {
			out := rec.read
			return &out, nil
		}
	}
	return nil, wallet.ErrTransactionNotFound
}

func (m *Memory) snapshot(filter func(*memoryRecord) bool) []*memoryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*memoryRecord
	for _, rec := range m.records {
		if filter(rec) {
			clone := *rec
			out = append(out, &clone)
		}
	}
	return out
}

// ListByAccount yields the account's records newest-first, at most limit.
// Each range over the sequence takes a fresh snapshot, so it is restartable.
func (m *Memory) ListByAccount(_ context.Context, accountID string, limit int) iter.Seq2[*dto.TransactionRead, error] {
	return func(yield func(*dto.TransactionRead, error) bool) {
		recs := m.snapshot(func(r *memoryRecord) bool { return r.read.AccountID == accountID })
		sort.Slice(recs, func(i, j int) bool { return recs[i].seq > recs[j].seq })
		for i, rec := range recs {
			if limit > 0 && i >= limit {
				return
			}
			out := rec.read
			if !yield(&out, nil) {
				return
			}
		}
	}
}

// ListByStatus yields records in the given status, oldest first.
func (m *Memory) ListByStatus(_ context.Context, status wallet.Status, limit int) iter.Seq2[*dto.TransactionRead, error] {
	return func(yield func(*dto.TransactionRead, error) bool) {
		recs := m.snapshot(func(r *memoryRecord) bool { return r.read.Status == status })
		sort.Slice(recs, func(i, j int) bool { return recs[i].seq < recs[j].seq })
		for i, rec := range recs {
			if limit > 0 && i >= limit {
				return
			}
			out := rec.read
			if !yield(&out, nil) {
				return
			}
		}
	}
}
