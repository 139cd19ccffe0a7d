package domain

import "time"

// Session is the per-caller recommendation state. It is bound to at most one
// customer; binding a different customer clears everything else.
type Session struct {
	ID             string                `json:"id"`
	CustomerID     *uint                 `json:"customer_id,omitempty"`
	Algorithm      string                `json:"algorithm,omitempty"`
	RecommendedIDs []uint64              `json:"recommended_ids"`
	Profiles       map[uint]*UserProfile `json:"profiles,omitempty"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func NewSession(id string) *Session {
	return &Session{ID: id}
}

// Bind attaches customerID, resetting state when it differs from the bound
// customer. It reports whether a reset happened.
func (s *Session) Bind(customerID uint) bool {
	if s.CustomerID != nil && *s.CustomerID == customerID {
		return false
	}
	s.Reset(customerID)
	return true
}

// Reset clears recommended ids and cached profiles and binds customerID.
// The active algorithm survives.
func (s *Session) Reset(customerID uint) {
	id := customerID
	s.CustomerID = &id
	s.RecommendedIDs = nil
	s.Profiles = nil
}

func (s *Session) MarkRecommended(ids ...uint64) {
	seen := s.RecommendedSet()
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		s.RecommendedIDs = append(s.RecommendedIDs, id)
	}
}

func (s *Session) RecommendedSet() map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(s.RecommendedIDs))
	for _, id := range s.RecommendedIDs {
		set[id] = struct{}{}
	}
	return set
}

// CacheProfile stores p only when customerID is the bound customer.
func (s *Session) CacheProfile(customerID uint, p *UserProfile) {
	if s.CustomerID == nil || *s.CustomerID != customerID {
		return
	}
	s.Profiles = map[uint]*UserProfile{customerID: p}
}

// Clone returns a deep copy so stores never share state with callers.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.CustomerID != nil {
		id := *s.CustomerID
		c.CustomerID = &id
	}
	c.RecommendedIDs = append([]uint64(nil), s.RecommendedIDs...)
	if s.Profiles != nil {
		c.Profiles = make(map[uint]*UserProfile, len(s.Profiles))
		for k, v := range s.Profiles {
			c.Profiles[k] = v
		}
	}
	return &c
}
