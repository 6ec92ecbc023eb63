package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"elem-admin/internal/service/allocator"
	"elem-admin/internal/storage"
)

var (
	ErrNameRequired = errors.New("customer name is required")
	ErrNoRow        = errors.New("customer row is unknown")
)

type Store interface {
	Customers(ctx context.Context) ([]storage.Customer, error)
	InsertCustomer(ctx context.Context, c storage.Customer) error
	UpdateCustomer(ctx context.Context, c storage.Customer) error
	DeleteCustomer(ctx context.Context, rowIndex int) error
}

type Service struct {
	log      *slog.Logger
	store    Store
	snapshot *allocator.Snapshot[storage.Customer]
	now      func() time.Time
}

func New(log *slog.Logger, store Store) *Service {
	return &Service{
		log:      log,
		store:    store,
		snapshot: allocator.NewSnapshot(log, "customers", store.Customers),
		now:      time.Now,
	}
}

// List returns customers newest first. Rows without a customer id are skipped.
func (s *Service) List(ctx context.Context) ([]storage.Customer, error) {
	const op = "service.customers.List"

	rows, err := s.store.Customers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.snapshot.Seed(rows)

	out := make([]storage.Customer, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if strings.TrimSpace(rows[i].CustomerID) == "" {
			continue
		}
		out = append(out, rows[i])
	}
	return out, nil
}

// Filter keeps customers whose name, id, phone, email or address contain term.
func Filter(customers []storage.Customer, term string) []storage.Customer {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return customers
	}

	var out []storage.Customer
	for _, c := range customers {
		for _, field := range []string{c.Name, c.CustomerID, c.Phone, c.Email, c.Address} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Create allocates the serial and customer ids from a fresh read and appends the row.
func (s *Service) Create(ctx context.Context, c storage.Customer) (storage.Customer, error) {
	const op = "service.customers.Create"

	c = trim(c)
	if c.Name == "" {
		return storage.Customer{}, fmt.Errorf("%s: %w", op, ErrNameRequired)
	}

	rows := s.snapshot.Fresh(ctx)
	c.SerialNo = allocator.Allocate(allocator.Keys(rows, func(r storage.Customer) string { return r.SerialNo }), "SN-", 3)
	c.CustomerID = allocator.Allocate(allocator.Keys(rows, func(r storage.Customer) string { return r.CustomerID }), "CN-", 4)
	c.Timestamp = s.now().Format("2006-01-02 15:04:05")
	c.RowIndex = 0

	if err := s.store.InsertCustomer(ctx, c); err != nil {
		return storage.Customer{}, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("customer created", slog.String("customer_id", c.CustomerID))
	return c, nil
}

// Update rewrites the row in place. Timestamp and ids are kept from the stored row.
func (s *Service) Update(ctx context.Context, c storage.Customer) (storage.Customer, error) {
	const op = "service.customers.Update"

	c = trim(c)
	if c.Name == "" {
		return storage.Customer{}, fmt.Errorf("%s: %w", op, ErrNameRequired)
	}

	current, err := s.byRow(ctx, c.RowIndex)
	if err != nil {
		return storage.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	c.Timestamp = current.Timestamp
	c.SerialNo = current.SerialNo
	c.CustomerID = current.CustomerID

	if err := s.store.UpdateCustomer(ctx, c); err != nil {
		return storage.Customer{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, rowIndex int) error {
	const op = "service.customers.Delete"

	if rowIndex < 2 {
		return fmt.Errorf("%s: %w", op, ErrNoRow)
	}
	if err := s.store.DeleteCustomer(ctx, rowIndex); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *Service) byRow(ctx context.Context, rowIndex int) (storage.Customer, error) {
	if rowIndex < 2 {
		return storage.Customer{}, ErrNoRow
	}
	rows, err := s.store.Customers(ctx)
	if err != nil {
		return storage.Customer{}, err
	}
	for _, r := range rows {
		if r.RowIndex == rowIndex {
			return r, nil
		}
	}
	return storage.Customer{}, fmt.Errorf("row %d: %w", rowIndex, storage.ErrNotFound)
}

func trim(c storage.Customer) storage.Customer {
	c.Name = strings.TrimSpace(c.Name)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	return c
}
