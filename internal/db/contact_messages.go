package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SaveContactMessage inserts a message. Missing ID and ReceivedAt are filled in.
func (db *DB) SaveContactMessage(ctx context.Context, m *ContactMessage) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.ReceivedAt.IsZero() {
		m.ReceivedAt = time.Now().UTC()
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO contact_messages (id, full_name, email, message, remote_addr, user_agent, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		m.ID, m.FullName, m.Email, m.Message, m.RemoteAddr, m.UserAgent, m.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save contact message: %w", err)
	}
	return nil
}

// ListContactMessages returns a page of messages, newest first.
func (db *DB) ListContactMessages(ctx context.Context, limit, offset int) (*ContactMessagePage, error) {
	limit, offset = NormalizePage(limit, offset)

	var total int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count contact messages: %w", err)
	}

	rows, err := db.pool.Query(ctx,
		`SELECT id, full_name, email, message, remote_addr, user_agent, received_at
		 FROM contact_messages
		 ORDER BY received_at DESC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	page := &ContactMessagePage{
		Messages: make([]ContactMessage, 0, limit),
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.FullName, &m.Email, &m.Message, &m.RemoteAddr, &m.UserAgent, &m.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		page.Messages = append(page.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating contact messages: %w", err)
	}
	return page, nil
}
