// Package users manages the login sheet: accounts, page access and sign-in.
package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"elem-admin/internal/service/allocator"
	"elem-admin/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrDeactivated        = errors.New("account is deactivated")
	ErrNoAccess           = errors.New("account has no page access")
	ErrMissingFields      = errors.New("name, user id, password and role are required")
	ErrDuplicateID        = errors.New("user id already exists")
	ErrProtected          = errors.New("the primary admin cannot be deactivated")
)

// The first data row holds the account that set the sheet up.
const primaryAdminRow = 2

type Store interface {
	Users(ctx context.Context) ([]storage.User, error)
	InsertUser(ctx context.Context, u storage.User) error
	UpdateUser(ctx context.Context, u storage.User) error
}

type Service struct {
	log      *slog.Logger
	store    Store
	snapshot *allocator.Snapshot[storage.User]
	cost     int
}

func New(log *slog.Logger, store Store) *Service {
	return &Service{
		log:      log,
		store:    store,
		snapshot: allocator.NewSnapshot(log, "users", store.Users),
		cost:     bcrypt.DefaultCost,
	}
}

// List returns accounts newest first.
func (s *Service) List(ctx context.Context) ([]storage.User, error) {
	const op = "service.users.List"

	rows, err := s.store.Users(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.snapshot.Seed(rows)

	out := make([]storage.User, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		out = append(out, rows[i])
	}
	return out, nil
}

func (s *Service) Create(ctx context.Context, u storage.User) (storage.User, error) {
	const op = "service.users.Create"

	u = normalize(u)
	if u.Name == "" || u.UserID == "" || u.Password == "" || u.Role == "" {
		return storage.User{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}

	rows := s.snapshot.Fresh(ctx)
	for _, r := range rows {
		if strings.EqualFold(strings.TrimSpace(r.UserID), u.UserID) {
			return storage.User{}, fmt.Errorf("%s: %q: %w", op, u.UserID, ErrDuplicateID)
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: hash password: %w", op, err)
	}
	u.Password = string(hash)
	u.SerialNo = allocator.Allocate(allocator.Keys(rows, func(r storage.User) string { return r.SerialNo }), "SN-", 3)
	if u.Status == "" {
		u.Status = storage.StatusActivated
	}
	u.RowIndex = 0

	if err := s.store.InsertUser(ctx, u); err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user created", slog.String("serial_no", u.SerialNo), slog.String("user_id", u.UserID))
	return u, nil
}

// Update rewrites an account. An empty password keeps the stored one; a new one is hashed.
func (s *Service) Update(ctx context.Context, u storage.User) (storage.User, error) {
	const op = "service.users.Update"

	current, err := s.byRow(ctx, u.RowIndex)
	if err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}

	u = normalize(u)
	if u.Name == "" || u.UserID == "" || u.Role == "" {
		return storage.User{}, fmt.Errorf("%s: %w", op, ErrMissingFields)
	}
	u.SerialNo = current.SerialNo
	if u.Status == "" {
		u.Status = current.Status
	}

	if u.Password == "" || u.Password == current.Password {
		u.Password = current.Password
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
		if err != nil {
			return storage.User{}, fmt.Errorf("%s: hash password: %w", op, err)
		}
		u.Password = string(hash)
	}

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return storage.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

func (s *Service) Deactivate(ctx context.Context, rowIndex int) error {
	const op = "service.users.Deactivate"

	current, err := s.byRow(ctx, rowIndex)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if isPrimaryAdmin(current) {
		return fmt.Errorf("%s: %w", op, ErrProtected)
	}

	current.Status = storage.StatusDeactivated
	if err := s.store.UpdateUser(ctx, current); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("user deactivated", slog.String("user_id", current.UserID))
	return nil
}

// Login checks id and password against the login sheet. Password cells may hold a bcrypt
// hash or, for accounts created before hashing, the plain text.
func (s *Service) Login(ctx context.Context, userID, password string) (storage.SessionUser, error) {
	const op = "service.users.Login"

	rows, err := s.store.Users(ctx)
	if err != nil {
		return storage.SessionUser{}, fmt.Errorf("%s: %w", op, err)
	}

	userID = strings.TrimSpace(userID)
	password = strings.TrimSpace(password)

	for _, u := range rows {
		if strings.TrimSpace(u.UserID) != userID || !passwordMatches(u.Password, password) {
			continue
		}
		if u.Status == storage.StatusDeactivated {
			return storage.SessionUser{}, ErrDeactivated
		}
		if len(u.PageAccess) == 0 {
			return storage.SessionUser{}, ErrNoAccess
		}
		return Session(u), nil
	}

	return storage.SessionUser{}, ErrInvalidCredentials
}

func Session(u storage.User) storage.SessionUser {
	return storage.SessionUser{
		ID:           u.UserID,
		EmployeeCode: u.EmployeeCode,
		Name:         u.Name,
		Role:         u.Role,
		PageAccess:   u.PageAccess,
		Status:       u.Status,
	}
}

func passwordMatches(stored, given string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" || given == "" {
		return false
	}
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored == given
}

func isPrimaryAdmin(u storage.User) bool {
	return u.RowIndex == primaryAdminRow && strings.EqualFold(u.Role, storage.RoleAdmin)
}

func (s *Service) byRow(ctx context.Context, rowIndex int) (storage.User, error) {
	rows, err := s.store.Users(ctx)
	if err != nil {
		return storage.User{}, err
	}
	for _, r := range rows {
		if r.RowIndex == rowIndex {
			return r, nil
		}
	}
	return storage.User{}, fmt.Errorf("row %d: %w", rowIndex, storage.ErrNotFound)
}

func normalize(u storage.User) storage.User {
	u.Name = strings.TrimSpace(u.Name)
	u.UserID = strings.TrimSpace(u.UserID)
	u.EmployeeCode = strings.TrimSpace(u.EmployeeCode)
	u.Password = strings.TrimSpace(u.Password)
	u.Role = strings.TrimSpace(u.Role)

	pages := make([]string, 0, len(u.PageAccess))
	for _, p := range u.PageAccess {
		if p = strings.TrimSpace(p); p != "" {
			pages = append(pages, p)
		}
	}
	u.PageAccess = pages
	return u
}
