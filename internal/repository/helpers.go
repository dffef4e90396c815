package repository

import (
	"database/sql"
	"encoding/json"
	"time"
)

// parseNullableTime parses a sql.NullString into a *time.Time using the given layout.
// Returns nil if the value is NULL, empty, or fails to parse.
func parseNullableTime(s sql.NullString, layout string) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil
	}
	return &t
}

// nullableTimeToString converts a *time.Time to a value suitable for SQLite storage.
func nullableTimeToString(t *time.Time, layout string) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(layout)
}

// nullableStr converts a *string to a value suitable for SQLite storage.
func nullableStr(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

// strPtr converts a sql.NullString back into a *string.
func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// mediaRefsToJSON serializes media references for storage. An empty slice
// stores as "[]" so scans never see NULL.
func mediaRefsToJSON(refs []string) string {
	if len(refs) == 0 {
		return "[]"
	}
	data, err := json.Marshal(refs)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// mediaRefsFromJSON deserializes stored media references.
func mediaRefsFromJSON(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var refs []string
	if err := json.Unmarshal([]byte(raw), &refs); err != nil {
		return nil
	}
	return refs
}
