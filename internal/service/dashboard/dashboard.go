package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"elem-admin/internal/storage"
)

const recentLimit = 20

type Store interface {
	QuotationRows(ctx context.Context) ([]storage.QuotationRow, error)
	Customers(ctx context.Context) ([]storage.Customer, error)
	CatalogEntries(ctx context.Context) ([]storage.CatalogEntry, error)
}

type Summary struct {
	SerialNo     string  `json:"serial_no"`
	Date         string  `json:"date"`
	EmployeeCode string  `json:"employee_code"`
	CustomerID   string  `json:"customer_id"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	ItemsCount   int     `json:"items_count"`
	TotalAmount  float64 `json:"total_amount"`
}

type Stats struct {
	TotalQuotations int       `json:"total_quotations"`
	TotalCustomers  int       `json:"total_customers"`
	TotalInventory  int       `json:"total_inventory"`
	TotalRevenue    float64   `json:"total_revenue"`
	Recent          []Summary `json:"recent"`
}

type Service struct {
	log   *slog.Logger
	store Store
}

func New(log *slog.Logger, store Store) *Service {
	return &Service{log: log, store: store}
}

// Stats reads the three sheets concurrently. Revenue sums the stored subtotals (column M)
// rather than recomputing them from qty and price.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	const op = "service.dashboard.Stats"

	var (
		rows      []storage.QuotationRow
		customers []storage.Customer
		inventory []storage.CatalogEntry
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		rows, err = s.store.QuotationRows(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.store.Customers(gctx)
		return err
	})
	g.Go(func() (err error) {
		inventory, err = s.store.CatalogEntries(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	summaries, revenue := summarize(rows)

	st := &Stats{
		TotalQuotations: len(summaries),
		TotalCustomers:  len(customers),
		TotalInventory:  len(inventory),
		TotalRevenue:    revenue,
		Recent:          summaries,
	}
	if len(st.Recent) > recentLimit {
		st.Recent = st.Recent[:recentLimit]
	}
	return st, nil
}

func summarize(rows []storage.QuotationRow) ([]Summary, float64) {
	var revenue float64
	quotations := storage.GroupQuotations(rows)

	out := make([]Summary, 0, len(quotations))
	for _, q := range quotations {
		sum := Summary{
			SerialNo:     q.SerialNo,
			Date:         q.Date,
			EmployeeCode: q.EmployeeCode,
			CustomerID:   q.Customer.ID,
			CustomerName: q.Customer.Name,
			Phone:        q.Customer.Phone,
			ItemsCount:   len(q.Items),
		}
		out = append(out, sum)
	}

	index := make(map[string]int, len(out))
	for i, sum := range out {
		index[sum.SerialNo] = i
	}
	for _, r := range rows {
		i, ok := index[strings.TrimSpace(r.SerialNo)]
		if !ok {
			continue
		}
		out[i].TotalAmount += r.Subtotal
		revenue += r.Subtotal
	}

	return out, revenue
}
