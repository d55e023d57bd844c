package store

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/tradedesk"
	"github.com/etnz/tradedesk/date"
	"github.com/google/uuid"
)

type journalRow struct {
	ID        string    `gorm:"primaryKey;size:36"`
	UserID    string    `gorm:"size:64;not null;index"`
	Date      date.Date `gorm:"type:date;not null;index"`
	Title     string    `gorm:"size:200;not null"`
	Body      string
	Mood      string   `gorm:"size:32"`
	Tags      []string `gorm:"serializer:json"`
	TradeID   string   `gorm:"size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (journalRow) TableName() string { return "journal_entries" }

func (r journalRow) entry() tradedesk.JournalEntry {
	return tradedesk.JournalEntry{ID: r.ID, Date: r.Date, Title: r.Title, Body: r.Body, Mood: r.Mood, Tags: r.Tags, TradeID: r.TradeID}
}

func newJournalRow(userID string, e tradedesk.JournalEntry) journalRow {
	return journalRow{ID: e.ID, UserID: userID, Date: e.Date, Title: e.Title, Body: e.Body, Mood: e.Mood, Tags: e.Tags, TradeID: e.TradeID}
}

// CreateEntry validates and inserts a journal entry, assigning its id.
func (s *Store) CreateEntry(ctx context.Context, userID string, e *tradedesk.JournalEntry) error {
	if userID == "" {
		return ErrMissingUser
	}
	if e.Date.IsZero() {
		e.Date = date.Today()
	}
	if err := e.Validate(); err != nil {
		return err
	}
	e.ID = uuid.NewString()
	row := newJournalRow(userID, *e)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create journal entry: %w", err)
	}
	return nil
}

// Entries lists the journal of userID within r, newest first. A zero range
// lists everything.
func (s *Store) Entries(ctx context.Context, userID string, r date.Range) ([]tradedesk.JournalEntry, error) {
	db, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !r.From.IsZero() {
		db = db.Where("date >= ?", r.From)
	}
	if !r.To.IsZero() {
		db = db.Where("date <= ?", r.To)
	}
	var rows []journalRow
	if err := db.Order("date DESC, created_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	out := make([]tradedesk.JournalEntry, len(rows))
	for i, r := range rows {
		out[i] = r.entry()
	}
	return out, nil
}

// UpdateEntry validates and overwrites a journal entry of userID.
func (s *Store) UpdateEntry(ctx context.Context, userID string, e *tradedesk.JournalEntry) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	if err := e.Validate(); err != nil {
		return err
	}
	row := newJournalRow(userID, *e)
	tx := db.Model(&journalRow{}).Where("id = ?", e.ID).Select("*").Omit("id", "user_id", "created_at").Updates(&row)
	return affected(tx, "journal entry "+e.ID)
}

// DeleteEntry removes a journal entry of userID.
func (s *Store) DeleteEntry(ctx context.Context, userID, id string) error {
	db, err := s.user(ctx, userID)
	if err != nil {
		return err
	}
	return affected(db.Where("id = ?", id).Delete(&journalRow{}), "journal entry "+id)
}
