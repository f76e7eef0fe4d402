package state

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/canvas-replay/go-controller/internal/widget"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshot_versions (
	version_id    TEXT PRIMARY KEY,
	document_id   TEXT NOT NULL,
	parent_id     TEXT,
	dsl_json      TEXT NOT NULL,
	widget_count  INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES snapshot_versions(version_id)
);

CREATE INDEX IF NOT EXISTS idx_snapshot_versions_document
	ON snapshot_versions(document_id, created_at);

CREATE TABLE IF NOT EXISTS replay_log (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	document_id      TEXT NOT NULL,
	version_id       TEXT NOT NULL,
	direction        TEXT NOT NULL,
	toast_count      INTEGER NOT NULL DEFAULT 0,
	updated_widgets  TEXT,
	focused_widgets  TEXT,
	effects_json     TEXT,
	created_at       TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES snapshot_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_snapshot (
	document_id   TEXT PRIMARY KEY,
	version_id    TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES snapshot_versions(version_id)
);
`
// #endregion schema

// ErrNotFound is returned when a document or version has no stored row.
var ErrNotFound = errors.New("not found")

// #region store-struct
// Store keeps every committed widget tree of every document in SQLite,
// plus a per-document pointer to the live version.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor

// #region create-initial
// CreateInitial stores snap as the first version of documentID and makes
// it the active one.
func (s *Store) CreateInitial(documentID string, snap widget.Snapshot) (SnapshotVersion, error) {
	if snap == nil {
		snap = widget.Snapshot{}
	}
	v := SnapshotVersion{
		VersionID:  uuid.New().String(),
		DocumentID: documentID,
		Snapshot:   snap.Clone(),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.CommitSnapshot(v); err != nil {
		return SnapshotVersion{}, err
	}
	log.Printf("[STORE] document=%s initial version=%s widgets=%d", documentID, v.VersionID, len(v.Snapshot))
	return v, nil
}
// #endregion create-initial

// #region commit-snapshot
// CommitSnapshot inserts a new version and points the document at it
// atomically.
func (s *Store) CommitSnapshot(v SnapshotVersion) error {
	if v.DocumentID == "" {
		return fmt.Errorf("commit snapshot: empty document id")
	}
	if v.VersionID == "" {
		v.VersionID = uuid.New().String()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	dsl, err := widget.EncodeSnapshot(v.Snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	if v.ParentID != "" {
		parentPtr = v.ParentID
	}

	_, err = tx.Exec(
		`INSERT INTO snapshot_versions (version_id, document_id, parent_id, dsl_json, widget_count, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		v.VersionID, v.DocumentID, parentPtr, string(dsl), len(v.Snapshot),
		v.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_snapshot (document_id, version_id) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET version_id = excluded.version_id`,
		v.DocumentID, v.VersionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}

	return tx.Commit()
}
// #endregion commit-snapshot

// #region get-current
// GetCurrent reads the active version of documentID.
func (s *Store) GetCurrent(documentID string) (SnapshotVersion, error) {
	var versionID string
	err := s.db.QueryRow(
		`SELECT version_id FROM active_snapshot WHERE document_id = ?`, documentID,
	).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotVersion{}, fmt.Errorf("get active %s: %w", documentID, ErrNotFound)
	}
	if err != nil {
		return SnapshotVersion{}, fmt.Errorf("get active %s: %w", documentID, err)
	}
	return s.GetVersion(versionID)
}
// #endregion get-current

// #region get-version
// GetVersion retrieves a specific version by ID.
func (s *Store) GetVersion(id string) (SnapshotVersion, error) {
	var v SnapshotVersion
	var parentID sql.NullString
	var dsl string
	var createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, document_id, parent_id, dsl_json, created_at
		 FROM snapshot_versions WHERE version_id = ?`, id,
	).Scan(&v.VersionID, &v.DocumentID, &parentID, &dsl, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return SnapshotVersion{}, fmt.Errorf("get version %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return SnapshotVersion{}, fmt.Errorf("get version %s: %w", id, err)
	}

	if parentID.Valid {
		v.ParentID = parentID.String
	}
	v.Snapshot, err = widget.DecodeSnapshot([]byte(dsl))
	if err != nil {
		return SnapshotVersion{}, fmt.Errorf("decode version %s: %w", id, err)
	}
	v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return v, nil
}
// #endregion get-version

// #region set-active
// SetActive moves the document's live pointer to an existing version of
// the same document. Undo and redo land here.
func (s *Store) SetActive(documentID, versionID string) error {
	var owner string
	err := s.db.QueryRow(
		`SELECT document_id FROM snapshot_versions WHERE version_id = ?`, versionID,
	).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("version %s: %w", versionID, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("check version: %w", err)
	}
	if owner != documentID {
		return fmt.Errorf("version %s belongs to document %s, not %s", versionID, owner, documentID)
	}

	_, err = s.db.Exec(
		`INSERT INTO active_snapshot (document_id, version_id) VALUES (?, ?)
		 ON CONFLICT(document_id) DO UPDATE SET version_id = excluded.version_id`,
		documentID, versionID,
	)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	return nil
}
// #endregion set-active

// #region list-versions
// ListVersions returns the most recent versions of documentID, newest first.
func (s *Store) ListVersions(documentID string, limit int) ([]VersionSummary, error) {
	rows, err := s.db.Query(
		`SELECT v.version_id, v.document_id, v.parent_id, v.widget_count, v.created_at,
		        a.version_id IS NOT NULL
		 FROM snapshot_versions v
		 LEFT JOIN active_snapshot a ON a.version_id = v.version_id
		 WHERE v.document_id = ?
		 ORDER BY v.created_at DESC, v.rowid DESC LIMIT ?`, documentID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []VersionSummary
	for rows.Next() {
		var v VersionSummary
		var parentID sql.NullString
		var createdStr string

		if err := rows.Scan(&v.VersionID, &v.DocumentID, &parentID, &v.WidgetCount, &createdStr, &v.Active); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if parentID.Valid {
			v.ParentID = parentID.String
		}
		v.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, v)
	}
	return out, rows.Err()
}

// Chain walks parent links from the active version back to the initial
// one and returns the versions oldest first.
func (s *Store) Chain(documentID string) ([]SnapshotVersion, error) {
	cur, err := s.GetCurrent(documentID)
	if err != nil {
		return nil, err
	}
	chain := []SnapshotVersion{cur}
	for cur.ParentID != "" {
		cur, err = s.GetVersion(cur.ParentID)
		if err != nil {
			return nil, fmt.Errorf("walk chain: %w", err)
		}
		chain = append(chain, cur)
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}
// #endregion list-versions

// #region delete-document
// DeleteDocument removes every version and replay log row of documentID.
func (s *Store) DeleteDocument(documentID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`DELETE FROM active_snapshot WHERE document_id = ?`,
		`DELETE FROM replay_log WHERE document_id = ?`,
		`UPDATE snapshot_versions SET parent_id = NULL WHERE document_id = ?`,
		`DELETE FROM snapshot_versions WHERE document_id = ?`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt, documentID); err != nil {
			return fmt.Errorf("delete document %s: %w", documentID, err)
		}
	}
	return tx.Commit()
}
// #endregion delete-document
