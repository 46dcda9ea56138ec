package auth

// Subscribers reports how many subscriptions s still holds.
func Subscribers(s *Store) int {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return len(s.subKeys)
}
