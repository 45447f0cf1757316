// Package messages keeps the counselor-to-patient message thread in the
// Recados table.
package messages

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jimdaga/wellness-checkin/internal/models"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
)

// Header is the column layout of the Recados table
var Header = []string{"timestamp", "counselor_id", "patient_id", "text"}

const (
	colTimestamp = iota
	colCounselorID
	colPatientID
	colText
)

// DefaultLimit caps listings when no limit is given
const DefaultLimit = 20

var (
	ErrEmptyMessage     = errors.New("message needs counselor, patient and text")
	ErrStoreUnavailable = errors.New("message store unavailable")
)

// Thread appends and lists messages
type Thread struct {
	store  rowstore.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewThread creates a Thread over store
func NewThread(store rowstore.Store, logger *slog.Logger) *Thread {
	if logger == nil {
		logger = slog.Default()
	}
	return &Thread{store: store, logger: logger, now: time.Now}
}

// Send appends a message from counselorID to patientID
func (t *Thread) Send(ctx context.Context, counselorID, patientID, text string) error {
	text = strings.TrimSpace(text)
	if strings.TrimSpace(counselorID) == "" || strings.TrimSpace(patientID) == "" || text == "" {
		return ErrEmptyMessage
	}

	row := []string{t.now().UTC().Format(time.RFC3339), counselorID, patientID, text}
	if err := t.store.Append(ctx, rowstore.TableMessages, row); err != nil {
		t.logger.Error("Failed to write message", "counselor_id", counselorID, "patient_id", patientID, "error", err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	t.logger.Info("Message sent", "counselor_id", counselorID, "patient_id", patientID)
	return nil
}

// ListForPatient returns patientID's messages, most recent first. Any store
// failure yields an empty list.
func (t *Thread) ListForPatient(ctx context.Context, patientID string, limit int) []models.Message {
	return t.list(ctx, limit, func(row []string) bool {
		return rowstore.Cell(row, colPatientID) == patientID
	})
}

// ListForPair returns the messages counselorID sent to patientID, most
// recent first
func (t *Thread) ListForPair(ctx context.Context, counselorID, patientID string, limit int) []models.Message {
	return t.list(ctx, limit, func(row []string) bool {
		return rowstore.Cell(row, colPatientID) == patientID && rowstore.Cell(row, colCounselorID) == counselorID
	})
}

func (t *Thread) list(ctx context.Context, limit int, match func([]string) bool) []models.Message {
	if limit <= 0 {
		limit = DefaultLimit
	}

	tbl, err := rowstore.Load(ctx, t.store, rowstore.TableMessages)
	if err != nil {
		t.logger.Error("Failed to read messages", "error", err)
		return []models.Message{}
	}

	out := []models.Message{}
	for i := len(tbl.Rows) - 1; i >= 0 && len(out) < limit; i-- {
		row := tbl.Rows[i]
		if len(row) <= colPatientID || !match(row) {
			continue
		}
		ts, _ := time.Parse(time.RFC3339, row[colTimestamp])
		out = append(out, models.Message{
			Timestamp:   ts,
			CounselorID: row[colCounselorID],
			PatientID:   row[colPatientID],
			Text:        rowstore.Cell(row, colText),
		})
	}
	return out
}
