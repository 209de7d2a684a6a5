package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/billing"
)

type billingRepository struct {
	db *DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *DB) *billingRepository {
	return &billingRepository{db: db}
}

func (repo *billingRepository) CreateInvoiceWithStatus(ctx context.Context, inv billing.Invoice, status billing.PaymentStatus) (billing.Invoice, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	for _, existing := range repo.db.invoices {
		if existing.StudentID == inv.StudentID && existing.Month == inv.Month && existing.Year == inv.Year {
			return billing.Invoice{}, billing.ErrDuplicateInvoice
		}
	}

	inv.ID = uuid.New().String()
	repo.db.invoices[inv.ID] = &inv

	// get-or-create the status; the invoice uniqueness above makes a
	// pre-existing row for this key unlikely but it stays idempotent.
	for _, existing := range repo.db.statuses {
		if existing.StudentID == status.StudentID && existing.Month == status.Month && existing.Year == status.Year {
			return inv, nil
		}
	}
	status.ID = uuid.New().String()
	status.InvoiceID = inv.ID
	repo.db.statuses[status.ID] = &status
	return inv, nil
}

func (repo *billingRepository) GetInvoiceByID(ctx context.Context, id string) (billing.Invoice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if inv, ok := repo.db.invoices[id]; ok {
		return *inv, nil
	}
	return billing.Invoice{}, billing.ErrInvoiceNotFound
}

func (repo *billingRepository) FilterInvoices(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering) ([]billing.Invoice, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	invoices := make([]billing.Invoice, 0, len(repo.db.invoices))
	for _, inv := range repo.db.invoices {
		if matchInvoice(inv, filter) {
			invoices = append(invoices, *inv)
		}
	}
	sort.Slice(invoices, func(i, j int) bool { return invoices[i].Date.Before(invoices[j].Date) })
	return invoices, nil
}

func (repo *billingRepository) FilterPaymentStatuses(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering) ([]billing.PaymentStatus, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	statuses := make([]billing.PaymentStatus, 0, len(repo.db.statuses))
	for _, status := range repo.db.statuses {
		if filter != nil {
			if filter.SchoolID != "" && status.SchoolID != filter.SchoolID {
				continue
			}
			if filter.StudentID != "" && status.StudentID != filter.StudentID {
				continue
			}
			if filter.Month != 0 && int(status.Month) != filter.Month {
				continue
			}
			if filter.Year != 0 && status.Year != filter.Year {
				continue
			}
		}
		statuses = append(statuses, *status)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if statuses[i].Year != statuses[j].Year {
			return statuses[i].Year < statuses[j].Year
		}
		return statuses[i].Month < statuses[j].Month
	})
	return statuses, nil
}

func matchInvoice(inv *billing.Invoice, filter *billing.QueryFilter) bool {
	if filter == nil {
		return true
	}
	if filter.SchoolID != "" && inv.SchoolID != filter.SchoolID {
		return false
	}
	if filter.StudentID != "" && inv.StudentID != filter.StudentID {
		return false
	}
	if filter.Month != 0 && int(inv.Month) != filter.Month {
		return false
	}
	if filter.Year != 0 && inv.Year != filter.Year {
		return false
	}
	if filter.DateFrom != nil && inv.Date.Before(*filter.DateFrom) {
		return false
	}
	if filter.DateTo != nil && inv.Date.After(*filter.DateTo) {
		return false
	}
	return true
}
