// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for chatline.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/chatline/internal/model"
)

// DefaultMaxConversations is how many conversations are kept before the
// oldest are pruned.
const DefaultMaxConversations = 200

var (
	// ErrNotFound is returned when a conversation doesn't exist.
	ErrNotFound = errors.New("conversation not found")

	// ErrAmbiguousID is returned when an ID prefix matches several conversations.
	ErrAmbiguousID = errors.New("conversation ID prefix is ambiguous")
)

// Store persists conversations in SQLite.
type Store struct {
	db   *sql.DB
	path string

	// MaxConversations limits stored conversations. 0 disables pruning.
	MaxConversations int
}

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	s := &Store{db: db, path: path, MaxConversations: DefaultMaxConversations}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return err
	}
	_, err := s.db.Exec(InitMetadata)
	return err
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// WRITE
// =============================================================================

// Save inserts or replaces conv and all of its messages.
func (s *Store) Save(ctx context.Context, conv *model.Conversation) error {
	if conv == nil || conv.ID == "" {
		return errors.New("conversation has no ID")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO conversations (id, title, thread_id, greeting, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			thread_id = excluded.thread_id,
			greeting = excluded.greeting,
			updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.ThreadID, conv.Greeting,
		conv.CreatedAt.UnixNano(), conv.UpdatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", conv.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (conversation_id, seq, id, role, content, is_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, msg := range conv.Messages {
		isErr := 0
		if msg.IsError {
			isErr = 1
		}
		if _, err := stmt.ExecContext(ctx, conv.ID, i, msg.ID, string(msg.Role), msg.Content, isErr, msg.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("failed to save message %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if s.MaxConversations > 0 {
		if _, err := s.Prune(ctx, s.MaxConversations); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a conversation. id may be a unique prefix.
func (s *Store) Delete(ctx context.Context, id string) error {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, "DELETE FROM conversations WHERE id = ?", full); err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	return nil
}

// Prune keeps the keep most recently updated conversations and deletes the
// rest. Returns the number deleted.
func (s *Store) Prune(ctx context.Context, keep int) (int, error) {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM conversations WHERE id NOT IN (
			SELECT id FROM conversations ORDER BY updated_at DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune conversations: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// READ
// =============================================================================

// Load returns the conversation with the given ID. id may be a unique prefix.
func (s *Store) Load(ctx context.Context, id string) (*model.Conversation, error) {
	full, err := s.resolveID(ctx, id)
	if err != nil {
		return nil, err
	}

	conv := &model.Conversation{ID: full}
	var created, updated int64
	err = s.db.QueryRowContext(ctx, `
		SELECT title, thread_id, greeting, created_at, updated_at
		FROM conversations WHERE id = ?`, full).
		Scan(&conv.Title, &conv.ThreadID, &conv.Greeting, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}
	conv.CreatedAt = time.Unix(0, created)
	conv.UpdatedAt = time.Unix(0, updated)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, role, content, is_error, created_at
		FROM messages WHERE conversation_id = ? ORDER BY seq`, full)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	conv.Messages = make([]*model.Message, 0)
	for rows.Next() {
		var (
			msg   model.Message
			role  string
			isErr int
			ts    int64
		)
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &isErr, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.IsError = isErr != 0
		msg.Timestamp = time.Unix(0, ts)
		conv.Messages = append(conv.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	return conv, nil
}

// List returns metadata for the most recently updated conversations.
// A limit of 0 returns all of them.
func (s *Store) List(ctx context.Context, limit int) ([]model.ConversationMeta, error) {
	return s.queryMeta(ctx, "", nil, limit)
}

// Search returns conversations whose title or any message contains query
// (case-insensitive for ASCII).
func (s *Store) Search(ctx context.Context, query string, limit int) ([]model.ConversationMeta, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, limit)
	}
	pattern := "%" + escapeLike(query) + "%"
	where := `WHERE c.title LIKE ? ESCAPE '\' OR EXISTS (
		SELECT 1 FROM messages sm
		WHERE sm.conversation_id = c.id AND sm.content LIKE ? ESCAPE '\')`
	return s.queryMeta(ctx, where, []any{pattern, pattern}, limit)
}

// Count returns the number of stored conversations.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM conversations").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return n, nil
}

func (s *Store) queryMeta(ctx context.Context, where string, args []any, limit int) ([]model.ConversationMeta, error) {
	q := `
		SELECT c.id, c.title, c.thread_id, c.created_at, c.updated_at,
			(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
			COALESCE((SELECT content FROM messages m
				WHERE m.conversation_id = c.id AND m.role = 'user'
				ORDER BY m.seq DESC LIMIT 1), '')
		FROM conversations c ` + where + `
		ORDER BY c.updated_at DESC`
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var metas []model.ConversationMeta
	for rows.Next() {
		var (
			m                model.ConversationMeta
			created, updated int64
			lastUser         string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.ThreadID, &created, &updated, &m.MessageCount, &lastUser); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		m.CreatedAt = time.Unix(0, created)
		m.UpdatedAt = time.Unix(0, updated)
		if m.Title == "" {
			m.Title = "New Conversation"
		}
		m.Preview = (&model.Message{Content: lastUser}).Preview(100)
		if m.Preview == "" {
			m.Preview = "Empty conversation"
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// resolveID expands a unique ID prefix to the full conversation ID.
func (s *Store) resolveID(ctx context.Context, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty ID", ErrNotFound)
	}

	var exact string
	err := s.db.QueryRowContext(ctx, "SELECT id FROM conversations WHERE id = ?", id).Scan(&exact)
	if err == nil {
		return exact, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to resolve ID: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM conversations WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escapeLike(id)+"%")
	if err != nil {
		return "", fmt.Errorf("failed to resolve ID: %w", err)
	}
	defer rows.Close()

	var matches []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return "", err
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
