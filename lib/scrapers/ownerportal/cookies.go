package ownerportal

import "strings"

// cookieStore tracks the session cookies the portal hands out across
// requests. One entry per cookie name, last write wins, insertion
// order preserved for the outgoing Cookie header.
//
// net/http/cookiejar is deliberately not used here: the portal's
// Set-Cookie handling reduces to name and value only, and the store's
// exact replace-or-append behavior is part of the client's contract.
type cookieStore struct {
	order []string
	vals  map[string]string
}

func newCookieStore() *cookieStore {
	return &cookieStore{vals: map[string]string{}}
}

// apply folds one Set-Cookie header value (or a bare name=value pair)
// into the store. The cookie name is everything before the first "=",
// the stored pair is everything before the first ";" (attributes such
// as Path or HttpOnly are dropped).
func (s *cookieStore) apply(setCookie string) {
	pair := setCookie
	if idx := strings.Index(pair, ";"); idx >= 0 {
		pair = pair[:idx]
	}
	pair = strings.TrimSpace(pair)

	idx := strings.Index(pair, "=")
	if idx <= 0 {
		return
	}
	name := pair[:idx]

	if _, exists := s.vals[name]; !exists {
		s.order = append(s.order, name)
	}
	s.vals[name] = pair
}

func (s *cookieStore) len() int {
	return len(s.order)
}

// header renders the store as a Cookie request header value.
func (s *cookieStore) header() string {
	pairs := make([]string, len(s.order))
	for i, name := range s.order {
		pairs[i] = s.vals[name]
	}
	return strings.Join(pairs, "; ")
}
