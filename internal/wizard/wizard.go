// Package wizard implements the walk-in intake flow: three ordered
// steps (client info, service tier, payment method) with forward-only
// validation gating. A wizard session lives in memory only; cancelling
// discards everything and nothing is persisted until the final submit.
package wizard

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/certilux/cert-app/internal/validation"
)

// Step is the active wizard step.
type Step string

const (
	StepInfo    Step = "info"
	StepService Step = "service"
	StepPayment Step = "payment"
)

var (
	// ErrBusy is returned while a submission is in flight; only one
	// submit may run at a time and navigation is frozen meanwhile.
	ErrBusy = errors.New("submission in flight")
	// ErrWrongStep is returned when an operation does not match the
	// active step (steps are linear, no skipping).
	ErrWrongStep = errors.New("operation not allowed at this step")
	// ErrNotFound is returned for unknown or expired session tokens.
	ErrNotFound = errors.New("wizard session not found")
)

// ClientInfo is the contact data collected at the first step.
type ClientInfo struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Country    string `json:"country"`
}

// Session is one wizard instance, owned by the partner who opened it.
type Session struct {
	mu sync.Mutex

	Token     string
	UserID    uint
	CreatedAt time.Time

	step          Step
	info          ClientInfo
	tierCode      string
	paymentMethod string
	submitting    bool
}

// Step returns the active step.
func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// Snapshot returns the collected data for display.
func (s *Session) Snapshot() (Step, ClientInfo, string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step, s.info, s.tierCode, s.paymentMethod
}

// SubmitInfo validates the client info step and advances to the
// service step. On violations the step does not change.
func (s *Session) SubmitInfo(info ClientInfo) (validation.Violations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return nil, ErrBusy
	}
	if s.step != StepInfo {
		return nil, ErrWrongStep
	}
	v := make(validation.Violations)
	validation.Required("first_name", info.FirstName, v)
	validation.Required("last_name", info.LastName, v)
	validation.Required("email", info.Email, v)
	validation.Required("phone", info.Phone, v)
	validation.Email("email", info.Email, v)
	if !v.Empty() {
		return v, nil
	}
	s.info = info
	s.step = StepService
	return nil, nil
}

// SelectTier validates the tier against the configured catalog and
// advances to the payment step.
func (s *Session) SelectTier(code string, catalog []string) (validation.Violations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return nil, ErrBusy
	}
	if s.step != StepService {
		return nil, ErrWrongStep
	}
	v := make(validation.Violations)
	validation.Required("tier", code, v)
	if v.Empty() {
		validation.OneOf("tier", code, catalog, v)
	}
	if !v.Empty() {
		return v, nil
	}
	s.tierCode = code
	s.step = StepPayment
	return nil, nil
}

// Back moves one step backwards (payment -> service -> info). Always
// permitted except while a submission is in flight; at the first step
// it is a no-op.
func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return ErrBusy
	}
	switch s.step {
	case StepPayment:
		s.step = StepService
	case StepService:
		s.step = StepInfo
	}
	return nil
}

// BeginSubmit validates the payment method and marks the session
// submitting. The caller must pair it with EndSubmit. While submitting,
// every other operation including a second submit is rejected.
func (s *Session) BeginSubmit(method string, allowed []string) (validation.Violations, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.submitting {
		return nil, ErrBusy
	}
	if s.step != StepPayment {
		return nil, ErrWrongStep
	}
	v := make(validation.Violations)
	validation.Required("payment_method", method, v)
	if v.Empty() {
		validation.OneOf("payment_method", method, allowed, v)
	}
	if !v.Empty() {
		return v, nil
	}
	s.paymentMethod = method
	s.submitting = true
	return nil, nil
}

// EndSubmit closes a submission. On success the flow resets back to a
// blank info step; on failure the entered data is kept so the partner
// can retry manually.
func (s *Session) EndSubmit(success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if success {
		s.step = StepInfo
		s.info = ClientInfo{}
		s.tierCode = ""
		s.paymentMethod = ""
	}
}

// Store keeps active wizard sessions in memory, keyed by token.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a session store. Sessions older than ttl are
// evicted lazily.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Open creates a fresh session for a partner.
func (st *Store) Open(userID uint) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.evictStale()
	s := &Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		CreatedAt: st.now(),
		step:      StepInfo,
	}
	st.sessions[s.Token] = s
	return s
}

// Get returns the session for a token, scoped to its owner.
func (st *Store) Get(token string, userID uint) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[token]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	if st.now().Sub(s.CreatedAt) > st.ttl {
		delete(st.sessions, token)
		return nil, ErrNotFound
	}
	return s, nil
}

// Discard drops a session, throwing away all entered data.
func (st *Store) Discard(token string, userID uint) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[token]; ok && s.UserID == userID {
		delete(st.sessions, token)
	}
}

func (st *Store) evictStale() {
	cutoff := st.now().Add(-st.ttl)
	for token, s := range st.sessions {
		if s.CreatedAt.Before(cutoff) {
			delete(st.sessions, token)
		}
	}
}
