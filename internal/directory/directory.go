// Package directory authenticates and registers users against the Usuarios
// table. Lookups are linear scans over the full table.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/jimdaga/wellness-checkin/internal/cache"
	"github.com/jimdaga/wellness-checkin/internal/models"
	"github.com/jimdaga/wellness-checkin/internal/rowstore"
)

// Header is the column layout of the Usuarios table
var Header = []string{"username", "password", "role", "counselor"}

const (
	colUsername = iota
	colPassword
	colRole
	colCounselor
)

// MinFieldLength is the minimum length of usernames and passwords
const MinFieldLength = 3

var (
	ErrInvalidCredentials = errors.New("username and password must have at least 3 characters")
	ErrInvalidCounselor   = errors.New("linked counselor is missing or unknown")
	ErrUserExists         = errors.New("username already exists")
	ErrStoreUnavailable   = errors.New("user store unavailable")
)

// Message returns the user-facing text for an error returned by Create
func Message(err error) string {
	switch {
	case err == nil:
		return "Usuário criado com sucesso! Agora você pode fazer o login."
	case errors.Is(err, ErrInvalidCredentials):
		return "Usuário e senha devem ter pelo menos 3 caracteres."
	case errors.Is(err, ErrInvalidCounselor):
		return "Selecione uma psicóloga válida."
	case errors.Is(err, ErrUserExists):
		return "Esse nome de usuário já existe. Tente outro."
	default:
		return "Erro no servidor ao tentar criar usuário."
	}
}

// Directory is the user table plus an optional cached copy of it
type Directory struct {
	store  rowstore.Store
	cache  cache.TableCache
	logger *slog.Logger
}

// New creates a Directory. A nil cache disables caching.
func New(store rowstore.Store, c cache.TableCache, logger *slog.Logger) *Directory {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Directory{store: store, cache: c, logger: logger}
}

// Authenticate returns the first user whose username and password both match
// exactly. Store failures are logged and reported as a failed login.
func (d *Directory) Authenticate(ctx context.Context, username, password string) (models.User, bool) {
	rows, err := d.users(ctx)
	if err != nil {
		d.logger.Error("Failed to read users table", "error", err)
		return models.User{}, false
	}

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		if row[colUsername] == username && row[colPassword] == password {
			d.logger.Info("Login succeeded", "username", username)
			return toUser(row), true
		}
	}

	d.logger.Info("Login failed", "username", username)
	return models.User{}, false
}

// Create registers a new patient linked to counselor
func (d *Directory) Create(ctx context.Context, username, password, counselor string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if strings.TrimSpace(counselor) == "" {
		return ErrInvalidCounselor
	}

	rows, err := d.users(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if !hasCounselor(rows, counselor) {
		return ErrInvalidCounselor
	}

	return d.insert(ctx, rows, []string{username, password, string(models.RolePatient), counselor})
}

// CreateCounselor registers a counselor account
func (d *Directory) CreateCounselor(ctx context.Context, username, password string) error {
	if err := validateCredentials(username, password); err != nil {
		return err
	}

	rows, err := d.users(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return d.insert(ctx, rows, []string{username, password, string(models.RoleCounselor), ""})
}

// Counselors lists the usernames of every counselor, in table order
func (d *Directory) Counselors(ctx context.Context) ([]string, error) {
	rows, err := d.users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var out []string
	for _, row := range rows {
		if rowstore.Cell(row, colRole) == string(models.RoleCounselor) {
			out = append(out, row[colUsername])
		}
	}
	return out, nil
}

func (d *Directory) insert(ctx context.Context, rows [][]string, row []string) error {
	username := row[colUsername]
	for _, existing := range rows {
		if len(existing) > 0 && existing[colUsername] == username {
			d.logger.Info("Attempt to create existing user", "username", username)
			return ErrUserExists
		}
	}

	if len(rows) == 0 {
		if _, err := rowstore.EnsureHeader(ctx, d.store, rowstore.TableUsers, Header); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	if err := d.store.Append(ctx, rowstore.TableUsers, row); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	d.refreshCache(ctx, row)
	d.logger.Info("User created", "username", username, "role", row[colRole])
	return nil
}

// users returns the data rows of the table, header skipped
func (d *Directory) users(ctx context.Context) ([][]string, error) {
	all, ok := d.cache.Get(ctx, rowstore.TableUsers)
	if !ok {
		var err error
		all, err = d.store.Read(ctx, rowstore.TableUsers)
		if err != nil {
			return nil, err
		}
		if err := d.cache.Set(ctx, rowstore.TableUsers, all); err != nil {
			d.logger.Warn("Failed to cache users table", "error", err)
		}
	}

	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}

// refreshCache adds a freshly written row to the cached table so duplicate
// checks in this process see it before the cache expires
func (d *Directory) refreshCache(ctx context.Context, row []string) {
	all, ok := d.cache.Get(ctx, rowstore.TableUsers)
	if !ok {
		return
	}
	if len(all) == 0 {
		all = append(all, Header)
	}
	all = append(all, row)

	if err := d.cache.Set(ctx, rowstore.TableUsers, all); err != nil {
		d.logger.Warn("Failed to update users cache, dropping it", "error", err)
		_ = d.cache.Delete(ctx, rowstore.TableUsers)
	}
}

func validateCredentials(username, password string) error {
	if utf8.RuneCountInString(username) < MinFieldLength || utf8.RuneCountInString(password) < MinFieldLength {
		return ErrInvalidCredentials
	}
	return nil
}

func hasCounselor(rows [][]string, username string) bool {
	for _, row := range rows {
		if rowstore.Cell(row, colUsername) == username && rowstore.Cell(row, colRole) == string(models.RoleCounselor) {
			return true
		}
	}
	return false
}

func toUser(row []string) models.User {
	role := models.Role(rowstore.Cell(row, colRole))
	if role == "" {
		role = models.RolePatient
	}
	return models.User{
		Username:  row[colUsername],
		Password:  row[colPassword],
		Role:      role,
		Counselor: rowstore.Cell(row, colCounselor),
	}
}
