package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/wellness-checkin/internal/checkins"
	"github.com/jimdaga/wellness-checkin/internal/directory"
	"github.com/jimdaga/wellness-checkin/internal/messages"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
)

// Development accounts created by SeedDevData
const (
	DevCounselor = "drcarla"
	DevPatient   = "ana"
	DevPassword  = "dev123"
)

// Headers maps every table to its header row
var Headers = map[string][]string{
	rowstore.TableCheckins: checkins.Header,
	rowstore.TableUsers:    directory.Header,
	rowstore.TableMessages: messages.Header,
}

// EnsureTables writes the header row of every empty table. Run it before
// the first write to a fresh store so no data row lands in row 0.
func EnsureTables(ctx context.Context, store rowstore.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	for _, table := range []string{rowstore.TableUsers, rowstore.TableCheckins, rowstore.TableMessages} {
		created, err := rowstore.EnsureHeader(ctx, store, table, Headers[table])
		if err != nil {
			return err
		}
		if created {
			logger.Info("Wrote table header", "table", table)
		}
	}
	return nil
}

// SeedDevData creates the table headers plus a development counselor and
// patient with a known password. Never run it against production data.
// Idempotent: existing accounts are skipped.
func SeedDevData(ctx context.Context, store rowstore.Store, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if err := EnsureTables(ctx, store, logger); err != nil {
		return err
	}

	dir := directory.New(store, nil, logger)

	err := dir.CreateCounselor(ctx, DevCounselor, DevPassword)
	if err != nil && !errors.Is(err, directory.ErrUserExists) {
		return fmt.Errorf("failed to seed counselor: %w", err)
	}

	err = dir.Create(ctx, DevPatient, DevPassword, DevCounselor)
	if err != nil && !errors.Is(err, directory.ErrUserExists) {
		return fmt.Errorf("failed to seed patient: %w", err)
	}

	logger.Info("Seeded dev data", "counselor", DevCounselor, "patient", DevPatient)
	return nil
}
