package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"fund-portal/monitor"

	"go.uber.org/zap"
)

// ErrScreenClosed is returned when a result arrives for a screen that was already closed.
var ErrScreenClosed = errors.New("screen closed")

// ScreenSession is the server side state of one open screen. A session belongs to the
// user that opened it; the same screen id opened by another user is a different session.
type ScreenSession struct {
	ID      string
	Owner   string
	Lookups *LookupCache

	mu          sync.Mutex
	closed      bool
	bindSeq     uint64
	binds       map[uint64]context.CancelFunc
	sequencers  map[string]*Sequencer
	lists       map[string]*ListPage
	mergedToken string
	lastUsed    time.Time
}

// Bind derives a context from ctx that Close cancels before it returns.
func (s *ScreenSession) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		cancel()
		return ctx, cancel
	}
	s.bindSeq++
	id := s.bindSeq
	s.binds[id] = cancel
	return ctx, func() {
		s.mu.Lock()
		delete(s.binds, id)
		s.mu.Unlock()
		cancel()
	}
}

// LastList returns the most recent list page committed for the named list.
func (s *ScreenSession) LastList(list string) *ListPage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lists[list]
}

func (s *ScreenSession) setList(list string, page *ListPage) {
	s.mu.Lock()
	s.lists[list] = page
	s.mu.Unlock()
}

// Sequencer returns the request sequencer for the named list, creating it on first use.
func (s *ScreenSession) Sequencer(list string) *Sequencer {
	s.mu.Lock()
	defer s.mu.Unlock()
	seq, ok := s.sequencers[list]
	if !ok {
		seq = NewSequencer()
		if s.closed {
			seq.Stop()
		}
		s.sequencers[list] = seq
	}
	return seq
}

// MergedToken returns the token of the screen's live merged document, if any.
func (s *ScreenSession) MergedToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mergedToken
}

func (s *ScreenSession) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// ScreenManager owns every screen session and the merged documents they publish.
type ScreenManager struct {
	store   MergedStore
	lookups LookupSource
	logger  *zap.Logger
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*ScreenSession
}

func NewScreenManager(store MergedStore, lookups LookupSource, logger *zap.Logger) *ScreenManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScreenManager{
		store:    store,
		lookups:  lookups,
		logger:   logger.Named("screens"),
		now:      time.Now,
		sessions: make(map[string]*ScreenSession),
	}
}

func sessionKey(owner, id string) string {
	return owner + ":" + id
}

// Open returns owner's session for screen id, creating it when the screen is new.
func (m *ScreenManager) Open(owner, id string) *ScreenSession {
	key := sessionKey(owner, id)
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[key]
	if !ok {
		session = &ScreenSession{
			ID:         id,
			Owner:      owner,
			Lookups:    NewLookupCache(m.lookups),
			binds:      make(map[uint64]context.CancelFunc),
			sequencers: make(map[string]*Sequencer),
			lists:      make(map[string]*ListPage),
		}
		m.sessions[key] = session
		m.logger.Debug("screen opened", zap.String("owner", owner), zap.String("screen_id", id))
	}
	session.mu.Lock()
	session.lastUsed = m.now()
	session.mu.Unlock()
	return session
}

// PublishMerged stores doc as the live merged document of session and revokes the one it
// replaces. When the session closed while the merge was running the new document is revoked
// at once and ErrScreenClosed is returned.
func (m *ScreenManager) PublishMerged(ctx context.Context, session *ScreenSession, doc MergedDocument) (string, error) {
	doc.Owner = session.Owner
	token, err := m.store.Put(ctx, doc)
	if err != nil {
		return "", err
	}

	session.mu.Lock()
	if session.closed {
		session.mu.Unlock()
		m.revoke(ctx, token)
		return "", ErrScreenClosed
	}
	previous := session.mergedToken
	session.mergedToken = token
	session.mu.Unlock()

	if previous != "" {
		m.revoke(ctx, previous)
	} else {
		monitor.LiveMergedURLs.Inc()
	}
	return token, nil
}

// GetMerged returns the merged document behind token when owner published it. Documents of
// other users are reported as not found.
func (m *ScreenManager) GetMerged(ctx context.Context, owner, token string) (MergedDocument, error) {
	doc, err := m.store.Get(ctx, token)
	if err != nil {
		return MergedDocument{}, err
	}
	if doc.Owner != owner {
		return MergedDocument{}, ErrMergedNotFound
	}
	return doc, nil
}

// RevokeMerged revokes owner's token and detaches it from the screen that published it.
func (m *ScreenManager) RevokeMerged(ctx context.Context, owner, token string) error {
	if _, err := m.GetMerged(ctx, owner, token); err != nil {
		return err
	}

	m.mu.Lock()
	for _, session := range m.sessions {
		if session.Owner != owner {
			continue
		}
		session.mu.Lock()
		if session.mergedToken == token {
			session.mergedToken = ""
			monitor.LiveMergedURLs.Dec()
		}
		session.mu.Unlock()
	}
	m.mu.Unlock()

	return m.store.Revoke(ctx, token)
}

// Close tears down owner's screen id: its live merged URL is revoked, in-flight requests
// are canceled and the lookup cache is dropped. Closing an unknown screen is a no-op.
func (m *ScreenManager) Close(ctx context.Context, owner, id string) bool {
	return m.closeKey(ctx, sessionKey(owner, id))
}

func (m *ScreenManager) closeKey(ctx context.Context, key string) bool {
	m.mu.Lock()
	session, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	session.mu.Lock()
	session.closed = true
	token := session.mergedToken
	session.mergedToken = ""
	session.lists = make(map[string]*ListPage)
	sequencers := make([]*Sequencer, 0, len(session.sequencers))
	for _, seq := range session.sequencers {
		sequencers = append(sequencers, seq)
	}
	for id, cancel := range session.binds {
		cancel()
		delete(session.binds, id)
	}
	session.mu.Unlock()

	for _, seq := range sequencers {
		seq.Stop()
	}
	session.Lookups.Invalidate()
	if token != "" {
		monitor.LiveMergedURLs.Dec()
		m.revoke(ctx, token)
	}
	m.logger.Debug("screen closed", zap.String("owner", session.Owner), zap.String("screen_id", session.ID))
	return true
}

// CloseIdle closes every screen not used within maxIdle and returns how many were closed.
func (m *ScreenManager) CloseIdle(ctx context.Context, maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)
	var idle []string
	m.mu.Lock()
	for key, session := range m.sessions {
		session.mu.Lock()
		if session.lastUsed.Before(cutoff) {
			idle = append(idle, key)
		}
		session.mu.Unlock()
	}
	m.mu.Unlock()

	closed := 0
	for _, key := range idle {
		if m.closeKey(ctx, key) {
			closed++
		}
	}
	return closed
}

// RunJanitor closes idle screens every interval until ctx is done.
func (m *ScreenManager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.CloseIdle(ctx, maxIdle); n > 0 {
				m.logger.Info("closed idle screens", zap.Int("count", n))
			}
		}
	}
}

func (m *ScreenManager) revoke(ctx context.Context, token string) {
	ctx, cancel := detachedContext(ctx, 5*time.Second)
	defer cancel()

	err := m.store.Revoke(ctx, token)
	if err != nil && !errors.Is(err, ErrMergedNotFound) {
		m.logger.Warn("failed to revoke merged document", zap.String("token", token), zap.Error(err))
	}
}
