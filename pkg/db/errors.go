package db

import "strings"

// IsUniqueViolation reports whether the provided error is a unique constraint
// violation. Optional match terms narrow it to a specific constraint: Postgres
// reports the index name ("violates unique constraint \"idx_stores_email\"")
// while SQLite reports the column list ("UNIQUE constraint failed:
// stores.email"), so callers pass one term per engine and any match counts.
func IsUniqueViolation(err error, matchTerms ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "duplicate key value") &&
		!strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	if len(matchTerms) == 0 {
		return true
	}
	for _, term := range matchTerms {
		if term != "" && strings.Contains(msg, term) {
			return true
		}
	}
	return false
}
