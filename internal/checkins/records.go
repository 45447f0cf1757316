// Package checkins stores wellness check-ins as rows of the Checkins table
// and serves the check-in flow over HTTP.
package checkins

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jimdaga/wellness-checkin/internal/models"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
)

// Column names of the Checkins table
const (
	ColTimestamp      = "timestamp"
	ColArea           = "area"
	ColSentimentScore = "sentiment_score"
	ColTopics         = "topics"
	ColJournal        = "journal"
	ColInsight        = "insight"
	ColAction         = "action"
	ColSentimentLabel = "sentiment_label"
	ColThemes         = "themes"
	ColSummary        = "summary"
	ColPatientID      = "patient_id"
	ColCounselorID    = "counselor_id"
	ColShared         = "shared"
)

// Header is the column order of the Checkins table. Deletion is by position,
// so this order must not change.
var Header = []string{
	ColTimestamp, ColArea, ColSentimentScore, ColTopics, ColJournal,
	ColInsight, ColAction, ColSentimentLabel, ColThemes, ColSummary,
	ColPatientID, ColCounselorID, ColShared,
}

// PatientIDPosition is where patient_id sits when the header cannot be read
const PatientIDPosition = 10

// DisplayColumns are projected into history entries
var DisplayColumns = []string{ColTimestamp, ColArea, ColSentimentScore, ColSentimentLabel, ColThemes, ColSummary}

// DefaultHistoryLimit caps history queries when no limit is given
const DefaultHistoryLimit = 20

// ListSeparator joins list-valued fields into one cell
const ListSeparator = ", "

// ErrStoreUnavailable wraps any row store failure on the write path
var ErrStoreUnavailable = errors.New("check-in store unavailable")

// HistoryEntry is a check-in projected to the display columns
type HistoryEntry struct {
	Timestamp      string   `json:"timestamp"`
	Area           string   `json:"area"`
	SentimentScore string   `json:"sentiment_score"`
	SentimentLabel string   `json:"sentiment_label"`
	Themes         []string `json:"themes"`
	Summary        string   `json:"summary"`
}

// JoinList serializes a list into one cell. The transform is lossy: an item
// containing ListSeparator will not split back into the same items.
func JoinList(items []string) string {
	return strings.Join(items, ListSeparator)
}

// SplitList reverses JoinList; an empty cell is an empty list
func SplitList(cell string) []string {
	if cell == "" {
		return nil
	}
	return strings.Split(cell, ListSeparator)
}

// Manager appends, deletes and queries check-in rows
type Manager struct {
	store        rowstore.Store
	defaultLimit int
	logger       *slog.Logger
	now          func() time.Time
}

// NewManager creates a Manager. defaultLimit <= 0 selects DefaultHistoryLimit.
func NewManager(store rowstore.Store, defaultLimit int, logger *slog.Logger) *Manager {
	if defaultLimit <= 0 {
		defaultLimit = DefaultHistoryLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{store: store, defaultLimit: defaultLimit, logger: logger, now: time.Now}
}

// Append writes rec as a new row. A zero timestamp is set to now.
func (m *Manager) Append(ctx context.Context, rec *models.CheckinRecord) error {
	if rec.Timestamp.IsZero() {
		rec.Timestamp = m.now().UTC()
	}

	if err := m.store.Append(ctx, rowstore.TableCheckins, toRow(*rec)); err != nil {
		m.logger.Error("Failed to write check-in", "patient_id", rec.PatientID, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	m.logger.Info("Check-in saved", "patient_id", rec.PatientID, "area", rec.Area)
	return nil
}

// DeleteMostRecent removes the physically last row owned by ownerID.
// It reports false when nothing matched or the store failed.
func (m *Manager) DeleteMostRecent(ctx context.Context, ownerID string) bool {
	tbl, err := rowstore.Load(ctx, m.store, rowstore.TableCheckins)
	if err != nil {
		m.logger.Error("Failed to read check-ins for delete", "patient_id", ownerID, "error", err)
		return false
	}

	col, err := tbl.Column(ColPatientID)
	if err != nil {
		col = PatientIDPosition
	}

	for i := len(tbl.Rows) - 1; i >= 0; i-- {
		row := tbl.Rows[i]
		if len(row) <= col || row[col] != ownerID {
			continue
		}

		pos := tbl.StorePosition(i)
		if err := m.store.DeleteRow(ctx, rowstore.TableCheckins, pos); err != nil {
			m.logger.Error("Failed to delete check-in", "patient_id", ownerID, "row", pos, "error", err)
			return false
		}
		m.logger.Info("Check-in deleted", "patient_id", ownerID, "row", pos)
		return true
	}

	m.logger.Info("No check-in to delete", "patient_id", ownerID)
	return false
}

// ListForOwner returns ownerID's check-ins, most recent first, at most limit
// entries. A missing column fails with rowstore.ErrColumnNotFound; a store
// failure yields an empty list.
func (m *Manager) ListForOwner(ctx context.Context, ownerID string, limit int) ([]HistoryEntry, error) {
	tbl, err := rowstore.Load(ctx, m.store, rowstore.TableCheckins)
	if err != nil {
		m.logger.Error("Failed to read check-in history", "patient_id", ownerID, "error", err)
		return []HistoryEntry{}, nil
	}
	if len(tbl.Header) == 0 {
		return []HistoryEntry{}, nil
	}

	owner, err := tbl.Column(ColPatientID)
	if err != nil {
		return nil, err
	}
	cols, err := tbl.Columns(DisplayColumns...)
	if err != nil {
		return nil, err
	}

	limit = m.limit(limit)
	out := []HistoryEntry{}
	for i := len(tbl.Rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := tbl.Rows[i]
		if rowstore.Cell(row, owner) != ownerID {
			continue
		}
		out = append(out, HistoryEntry{
			Timestamp:      rowstore.Cell(row, cols[0]),
			Area:           rowstore.Cell(row, cols[1]),
			SentimentScore: rowstore.Cell(row, cols[2]),
			SentimentLabel: rowstore.Cell(row, cols[3]),
			Themes:         SplitList(rowstore.Cell(row, cols[4])),
			Summary:        rowstore.Cell(row, cols[5]),
		})
	}
	return out, nil
}

// ListShared returns the full check-ins patientID shared with counselorID,
// most recent first
func (m *Manager) ListShared(ctx context.Context, counselorID, patientID string, limit int) ([]models.CheckinRecord, error) {
	tbl, err := rowstore.Load(ctx, m.store, rowstore.TableCheckins)
	if err != nil {
		m.logger.Error("Failed to read shared check-ins", "patient_id", patientID, "error", err)
		return []models.CheckinRecord{}, nil
	}
	if len(tbl.Header) == 0 {
		return []models.CheckinRecord{}, nil
	}

	cols, err := tbl.Columns(Header...)
	if err != nil {
		return nil, err
	}
	byName := make(map[string]int, len(Header))
	for i, name := range Header {
		byName[name] = cols[i]
	}

	limit = m.limit(limit)
	out := []models.CheckinRecord{}
	for i := len(tbl.Rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := tbl.Rows[i]
		if rowstore.Cell(row, byName[ColPatientID]) != patientID ||
			rowstore.Cell(row, byName[ColCounselorID]) != counselorID ||
			!parseBool(rowstore.Cell(row, byName[ColShared])) {
			continue
		}
		out = append(out, fromRow(row, byName))
	}
	return out, nil
}

func (m *Manager) limit(limit int) int {
	if limit <= 0 {
		return m.defaultLimit
	}
	return limit
}

func toRow(rec models.CheckinRecord) []string {
	return []string{
		rec.Timestamp.Format(time.RFC3339),
		rec.Area,
		strconv.Itoa(rec.SentimentScore),
		JoinList(rec.Topics),
		rec.Journal,
		rec.Analysis.Insight,
		rec.Analysis.Action,
		rec.Analysis.SentimentLabel,
		JoinList(rec.Analysis.Themes),
		rec.Analysis.Summary,
		rec.PatientID,
		rec.CounselorID,
		formatBool(rec.Shared),
	}
}

func fromRow(row []string, col map[string]int) models.CheckinRecord {
	cell := func(name string) string { return rowstore.Cell(row, col[name]) }

	ts, _ := time.Parse(time.RFC3339, cell(ColTimestamp))
	score, _ := strconv.Atoi(cell(ColSentimentScore))

	return models.CheckinRecord{
		Timestamp:      ts,
		Area:           cell(ColArea),
		SentimentScore: score,
		Topics:         SplitList(cell(ColTopics)),
		Journal:        cell(ColJournal),
		Analysis: models.Analysis{
			Insight:        cell(ColInsight),
			Action:         cell(ColAction),
			SentimentLabel: cell(ColSentimentLabel),
			Themes:         SplitList(cell(ColThemes)),
			Summary:        cell(ColSummary),
		},
		PatientID:   cell(ColPatientID),
		CounselorID: cell(ColCounselorID),
		Shared:      parseBool(cell(ColShared)),
	}
}

func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

func parseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "TRUE")
}
