package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"kassa/internal/core"
)

// In-memory fakes for the outbound ports.

type fakeQueue struct {
	mu     sync.Mutex
	nextID int64
	items  []core.PendingMessage

	enqueueErr error
}

func (q *fakeQueue) EnqueuePending(_ context.Context, msg core.PendingMessage) (int64, error) {
	if q.enqueueErr != nil {
		return 0, q.enqueueErr
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	msg.ID = q.nextID
	q.items = append(q.items, msg)
	return msg.ID, nil
}

func (q *fakeQueue) DuePending(_ context.Context, now time.Time) ([]core.PendingMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var due []core.PendingMessage
	for _, item := range q.items {
		if !item.Processed && !item.ReadyAt.After(now) {
			due = append(due, item)
		}
	}
	return due, nil
}

func (q *fakeQueue) ClaimPending(_ context.Context, id int64) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := range q.items {
		if q.items[i].ID == id {
			if q.items[i].Processed {
				return false, nil
			}
			q.items[i].Processed = true
			return true, nil
		}
	}
	return false, nil
}

type fakeLedger struct {
	mu    sync.Mutex
	total int64

	addErr    error
	settleErr error
}

func (l *fakeLedger) AddToLedger(_ context.Context, cents int64) (int64, error) {
	if l.addErr != nil {
		return 0, l.addErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total += cents
	return l.total, nil
}

func (l *fakeLedger) LedgerTotal(context.Context) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total, nil
}

func (l *fakeLedger) SettleLedger(_ context.Context, reported int64) error {
	if l.settleErr != nil {
		return l.settleErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.total -= reported
	return nil
}

type fakeLog struct {
	mu      sync.Mutex
	entries []core.Entry

	appendErr error
}

func (l *fakeLog) AppendEntry(_ context.Context, e core.Entry) error {
	if l.appendErr != nil {
		return l.appendErr
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, e)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []string

	fail bool
}

var errNotify = errors.New("transport down")

func (n *fakeNotifier) Send(_ context.Context, text string) error {
	if n.fail {
		return errNotify
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, text)
	return nil
}

type fakePublisher struct {
	mu      sync.Mutex
	entries []core.Entry
	reports []string
}

func (p *fakePublisher) PublishEntry(_ context.Context, e core.Entry, _ int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return nil
}

func (p *fakePublisher) PublishDailyReport(_ context.Context, _ int64, date string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reports = append(p.reports, date)
	return nil
}
