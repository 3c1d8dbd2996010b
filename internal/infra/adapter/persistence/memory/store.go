// Package memory holds in-process repositories for local runs and tests.
// Records are copied on the way in and out so callers never share state with
// the store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"notify-dispatch/internal/domain/entity"
	"notify-dispatch/internal/repository"
)

// Store keeps recipients and notifications in maps. A per-notification mutex
// serializes UpdateLocked calls on the same id.
type Store struct {
	mu            sync.RWMutex
	recipients    map[int64]entity.Recipient
	notifications map[int64]entity.Notification
	nextRecipient int64
	nextNotif     int64

	locksMu sync.Mutex
	locks   map[int64]*sync.Mutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		recipients:    make(map[int64]entity.Recipient),
		notifications: make(map[int64]entity.Notification),
		locks:         make(map[int64]*sync.Mutex),
		now:           time.Now,
	}
}

func (s *Store) Recipients() repository.RecipientRepository {
	return recipientRepo{s}
}

func (s *Store) Notifications() repository.NotificationRepository {
	return notificationRepo{s}
}

func (s *Store) rowLock(id int64) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func copyNotification(n entity.Notification) *entity.Notification {
	if n.DeliveryMethod != nil {
		m := *n.DeliveryMethod
		n.DeliveryMethod = &m
	}
	return &n
}

/* ─── recipients ─── */

type recipientRepo struct{ s *Store }

func (r recipientRepo) Get(_ context.Context, id int64) (*entity.Recipient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	rec, ok := r.s.recipients[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return &rec, nil
}

func (r recipientRepo) List(_ context.Context) ([]*entity.Recipient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Recipient, 0, len(r.s.recipients))
	for _, rec := range r.s.recipients {
		rec := rec
		out = append(out, &rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r recipientRepo) Create(_ context.Context, rec *entity.Recipient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextRecipient++
	rec.ID = r.s.nextRecipient
	rec.CreatedAt = r.s.now()
	r.s.recipients[rec.ID] = *rec
	return nil
}

/* ─── notifications ─── */

type notificationRepo struct{ s *Store }

func (r notificationRepo) Get(_ context.Context, id int64) (*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, ok := r.s.notifications[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return copyNotification(n), nil
}

func (r notificationRepo) List(_ context.Context) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Notification, 0, len(r.s.notifications))
	for _, n := range r.s.notifications {
		out = append(out, copyNotification(n))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r notificationRepo) ListPendingRetry(_ context.Context, maxAttempts int, afterID int64, limit int) ([]*entity.Notification, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Notification, 0)
	for _, n := range r.s.notifications {
		if !n.Delivered && n.Attempts < maxAttempts && n.ID > afterID {
			out = append(out, copyNotification(n))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationRepo) Create(_ context.Context, n *entity.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.recipients[n.RecipientID]; !ok {
		return fmt.Errorf("recipient %d: %w", n.RecipientID, entity.ErrNotFound)
	}
	r.s.nextNotif++
	n.ID = r.s.nextNotif
	n.CreatedAt = r.s.now()
	n.Delivered = false
	n.DeliveryMethod = nil
	n.Attempts = 0
	r.s.notifications[n.ID] = *n
	return nil
}

// UpdateLocked holds the row lock for id while fn runs. The store-wide lock
// is only taken to read and write the maps, so attempts on different
// notifications run in parallel.
func (r notificationRepo) UpdateLocked(ctx context.Context, id int64, fn repository.LockedUpdateFunc) error {
	l := r.s.rowLock(id)
	l.Lock()
	defer l.Unlock()

	r.s.mu.RLock()
	stored, ok := r.s.notifications[id]
	var rec entity.Recipient
	var recOK bool
	if ok {
		rec, recOK = r.s.recipients[stored.RecipientID]
	}
	r.s.mu.RUnlock()

	if !ok {
		return fmt.Errorf("notification %d: %w", id, entity.ErrNotFound)
	}
	if !recOK {
		return fmt.Errorf("recipient %d: %w", stored.RecipientID, entity.ErrNotFound)
	}

	n := copyNotification(stored)
	persist, err := fn(ctx, n, &rec)
	if err != nil || !persist {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur := r.s.notifications[id]
	cur.Delivered = n.Delivered
	cur.DeliveryMethod = copyNotification(*n).DeliveryMethod
	cur.Attempts = n.Attempts
	r.s.notifications[id] = cur
	return nil
}
