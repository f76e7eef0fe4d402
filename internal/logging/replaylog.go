package logging

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// #region log-replay
// LogReplay writes an entry to the replay_log table.
func LogReplay(db *sql.DB, entry ReplayEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := db.Exec(
		`INSERT INTO replay_log (document_id, version_id, direction, toast_count, updated_widgets, focused_widgets, effects_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DocumentID,
		entry.VersionID,
		entry.Direction,
		entry.ToastCount,
		nullIfEmpty(strings.Join(entry.UpdatedWidgets, ",")),
		nullIfEmpty(strings.Join(entry.FocusedWidgets, ",")),
		nullIfEmpty(entry.EffectsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log replay: %w", err)
	}
	return nil
}
// #endregion log-replay

// #region list-replays
// ListReplays returns the most recent replay_log rows of documentID,
// newest first.
func ListReplays(db *sql.DB, documentID string, limit int) ([]ReplayEntry, error) {
	rows, err := db.Query(
		`SELECT id, document_id, version_id, direction, toast_count, updated_widgets, focused_widgets, effects_json, created_at
		 FROM replay_log WHERE document_id = ? ORDER BY id DESC LIMIT ?`, documentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list replays: %w", err)
	}
	defer rows.Close()

	var out []ReplayEntry
	for rows.Next() {
		var e ReplayEntry
		var updated, focused, effects sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.DocumentID, &e.VersionID, &e.Direction, &e.ToastCount,
			&updated, &focused, &effects, &createdStr); err != nil {
			return nil, fmt.Errorf("scan replay: %w", err)
		}
		e.UpdatedWidgets = splitIDs(updated)
		e.FocusedWidgets = splitIDs(focused)
		e.EffectsJSON = effects.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion list-replays

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func splitIDs(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return nil
	}
	return strings.Split(s.String, ",")
}
// #endregion helpers
