package intake

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ayibatonye-ikemike/suoops-backend-sub000/internal/domain/invoice"
)

// DefaultClarificationTTL is how long an unanswered clarification is
// retained. There is no background timer per draft; expiry is passive
// and a sender's next message supersedes the stored request.
const DefaultClarificationTTL = 24 * time.Hour

type pendingClarification struct {
	request   *invoice.ClarificationRequest
	expiresAt time.Time
}

// ClarificationStore holds outstanding clarification requests keyed by
// (tenant, sender). In-memory: losing one on restart only costs the
// sender a restated message.
type ClarificationStore struct {
	mu      sync.RWMutex
	pending map[string]pendingClarification
	ttl     time.Duration
	done    chan struct{}
	once    sync.Once
}

// NewClarificationStore creates a store with a background sweep
func NewClarificationStore(ttl time.Duration) *ClarificationStore {
	if ttl <= 0 {
		ttl = DefaultClarificationTTL
	}
	s := &ClarificationStore{
		pending: make(map[string]pendingClarification),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go s.sweep()
	return s
}

func key(tenantID uuid.UUID, sender string) string {
	return tenantID.String() + ":" + sender
}

// Put stores or replaces the outstanding clarification for a sender
func (s *ClarificationStore) Put(tenantID uuid.UUID, sender string, req *invoice.ClarificationRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key(tenantID, sender)] = pendingClarification{
		request:   req,
		expiresAt: time.Now().Add(s.ttl),
	}
}

// Take removes and returns the outstanding clarification, if any
func (s *ClarificationStore) Take(tenantID uuid.UUID, sender string) (*invoice.ClarificationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := key(tenantID, sender)
	p, ok := s.pending[k]
	if !ok {
		return nil, false
	}
	delete(s.pending, k)
	if time.Now().After(p.expiresAt) {
		return nil, false
	}
	return p.request, true
}

// Len returns the number of outstanding clarifications
func (s *ClarificationStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// Close stops the background sweep
func (s *ClarificationStore) Close() {
	s.once.Do(func() { close(s.done) })
}

func (s *ClarificationStore) sweep() {
	interval := s.ttl / 4
	if interval > time.Hour {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for k, p := range s.pending {
				if now.After(p.expiresAt) {
					delete(s.pending, k)
				}
			}
			s.mu.Unlock()
		}
	}
}
