// Action preference counters. Every successfully executed (intent, action)
// pair increments a counter; context-sensitive selection consults the
// most-frequent action to override the static priority.
package store

import (
	"database/sql"
	"fmt"

	"aria/internal/logging"
)

// IncrementPreference records one successful execution of action for intent.
func (s *Store) IncrementPreference(intent, action string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("store is closed")
	}

	_, err := s.db.Exec(`
		INSERT INTO action_preferences (intent, action, count)
		VALUES (?, ?, 1)
		ON CONFLICT(intent, action) DO UPDATE SET
			count = count + 1,
			updated_at = CURRENT_TIMESTAMP
	`, intent, action)
	if err != nil {
		logging.Get(logging.CategoryStore).Error("Failed to increment preference %s/%s: %v", intent, action, err)
		return fmt.Errorf("failed to increment preference: %w", err)
	}
	logging.StoreDebug("Preference incremented: intent=%s action=%s", intent, action)
	return nil
}

// PreferredAction returns the most frequently chosen action for an intent.
// Returns "" with no error when nothing has been learned yet. Ties break by
// action name so the answer is stable.
func (s *Store) PreferredAction(intent string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", fmt.Errorf("store is closed")
	}

	var action string
	err := s.db.QueryRow(`
		SELECT action FROM action_preferences
		WHERE intent = ?
		ORDER BY count DESC, action ASC
		LIMIT 1
	`, intent).Scan(&action)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query preferred action: %w", err)
	}
	return action, nil
}

// PreferenceCounts returns all learned counters for an intent.
func (s *Store) PreferenceCounts(intent string) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, fmt.Errorf("store is closed")
	}

	rows, err := s.db.Query(`
		SELECT action, count FROM action_preferences WHERE intent = ?
	`, intent)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, rows.Err()
}

// InteractionTotal returns the total number of recorded executions.
func (s *Store) InteractionTotal() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, fmt.Errorf("store is closed")
	}

	var total int
	err := s.db.QueryRow(`SELECT COALESCE(SUM(count), 0) FROM action_preferences`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum preferences: %w", err)
	}
	return total, nil
}
