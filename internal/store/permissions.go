// Website permission registry. Domains are trusted, blocked, or granted for
// one use; a domain lives in exactly one list at a time, so granting evicts
// any previous standing.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"aria/internal/logging"
)

// PermissionDecision is the outcome of a permission check.
type PermissionDecision string

const (
	PermissionAllowed PermissionDecision = "allowed"
	PermissionDenied  PermissionDecision = "denied"
	PermissionAsk     PermissionDecision = "ask"
)

// PermissionStatus is the standing of a domain in the registry.
type PermissionStatus string

const (
	StatusTrusted PermissionStatus = "trusted"
	StatusBlocked PermissionStatus = "blocked"
	StatusOnce    PermissionStatus = "once"
)

// NormalizeDomain reduces a raw website reference to a bare lowercase domain.
// Scheme, path, query, credentials, port, and a leading "www." are stripped
// so "https://www.YouTube.com/watch" and "youtube.com" are the same resource.
// Returns an error when no plausible domain remains.
func NormalizeDomain(raw string) (string, error) {
	d := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.Index(d, "://"); i >= 0 {
		d = d[i+3:]
	}
	if i := strings.IndexAny(d, "/?#"); i >= 0 {
		d = d[:i]
	}
	if i := strings.LastIndex(d, "@"); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.Index(d, ":"); i >= 0 {
		d = d[:i]
	}
	d = strings.TrimPrefix(d, "www.")
	if d == "" || !strings.Contains(d, ".") {
		return "", fmt.Errorf("not a valid domain: %q", raw)
	}
	return d, nil
}

// CheckPermission reports whether a domain may be opened. A one-time grant is
// consumed by the check that uses it.
func (s *Store) CheckPermission(domain string) (PermissionDecision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return PermissionAsk, fmt.Errorf("store is closed")
	}

	var status string
	err := s.db.QueryRow(`SELECT status FROM website_permissions WHERE domain = ?`, domain).Scan(&status)
	if err == sql.ErrNoRows {
		return PermissionAsk, nil
	}
	if err != nil {
		return PermissionAsk, fmt.Errorf("failed to check permission: %w", err)
	}

	switch PermissionStatus(status) {
	case StatusTrusted:
		return PermissionAllowed, nil
	case StatusBlocked:
		logging.Security("Blocked domain refused: %s", domain)
		return PermissionDenied, nil
	case StatusOnce:
		if _, err := s.db.Exec(`DELETE FROM website_permissions WHERE domain = ?`, domain); err != nil {
			return PermissionAsk, fmt.Errorf("failed to consume one-time grant: %w", err)
		}
		logging.Security("One-time grant consumed: %s", domain)
		return PermissionAllowed, nil
	default:
		return PermissionAsk, fmt.Errorf("unknown permission status %q for %s", status, domain)
	}
}

// GrantPermanent adds a domain to the trusted list.
func (s *Store) GrantPermanent(domain string) error {
	logging.Security("Domain trusted permanently: %s", domain)
	return s.setStatus(domain, StatusTrusted)
}

// GrantOnce allows a domain for a single use.
func (s *Store) GrantOnce(domain string) error {
	logging.Security("Domain granted once: %s", domain)
	return s.setStatus(domain, StatusOnce)
}

// Block adds a domain to the blocked list.
func (s *Store) Block(domain string) error {
	logging.Security("Domain blocked: %s", domain)
	return s.setStatus(domain, StatusBlocked)
}

func (s *Store) setStatus(domain string, status PermissionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.Exec(`
		INSERT INTO website_permissions (domain, status)
		VALUES (?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			status = excluded.status,
			granted_at = CURRENT_TIMESTAMP
	`, domain, string(status))
	if err != nil {
		return fmt.Errorf("failed to set permission: %w", err)
	}
	return nil
}

// ClearOneTime drops unconsumed one-time grants. Called at shutdown so a
// "this time only" answer never outlives the session.
func (s *Store) ClearOneTime() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store is closed")
	}

	res, err := s.db.Exec(`DELETE FROM website_permissions WHERE status = ?`, string(StatusOnce))
	if err != nil {
		return fmt.Errorf("failed to clear one-time grants: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logging.Security("Cleared %d one-time grants", n)
	}
	return nil
}

// Permissions returns all standing entries grouped by status, domains sorted
// per status by the database.
func (s *Store) Permissions() (map[PermissionStatus][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.Query(`SELECT domain, status FROM website_permissions ORDER BY status, domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	defer rows.Close()

	out := make(map[PermissionStatus][]string)
	for rows.Next() {
		var domain, status string
		if err := rows.Scan(&domain, &status); err != nil {
			return nil, err
		}
		out[PermissionStatus(status)] = append(out[PermissionStatus(status)], domain)
	}
	return out, rows.Err()
}
