package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/billing"
)

type billingRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*billingRepository)(nil) // interface compliance check

func NewBillingRepository(db *sqlx.DB) *billingRepository {
	return &billingRepository{db: db}
}

type invoiceRow struct {
	ID        string          `db:"id"`
	SchoolID  string          `db:"school_id"`
	StudentID string          `db:"student_id"`
	Amount    decimal.Decimal `db:"amount"`
	Month     int             `db:"month"`
	Year      int             `db:"year"`
	Date      time.Time       `db:"date"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (row invoiceRow) model() billing.Invoice {
	return billing.Invoice{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		StudentID: row.StudentID,
		Amount:    row.Amount,
		Month:     time.Month(row.Month),
		Year:      row.Year,
		Date:      row.Date,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

type paymentStatusRow struct {
	ID        string    `db:"id"`
	SchoolID  string    `db:"school_id"`
	StudentID string    `db:"student_id"`
	InvoiceID string    `db:"invoice_id"`
	Month     int       `db:"month"`
	Year      int       `db:"year"`
	IsPaid    bool      `db:"is_paid"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (row paymentStatusRow) model() billing.PaymentStatus {
	return billing.PaymentStatus{
		ID:        row.ID,
		SchoolID:  row.SchoolID,
		StudentID: row.StudentID,
		InvoiceID: row.InvoiceID,
		Month:     time.Month(row.Month),
		Year:      row.Year,
		IsPaid:    row.IsPaid,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

const (
	invoiceColumns       = `id, school_id, student_id, amount, month, year, date, created_at, updated_at`
	paymentStatusColumns = `id, school_id, student_id, invoice_id, month, year, is_paid, created_at, updated_at`
)

var invoiceOrderFields = map[string]bool{"date": true, "year": true, "month": true, "created_at": true}

// CreateInvoiceWithStatus persists the invoice and its payment status in
// one transaction; both are written or neither is. The unique index on
// (student_id, month, year) is the duplicate check.
func (repo *billingRepository) CreateInvoiceWithStatus(ctx context.Context, inv billing.Invoice, status billing.PaymentStatus) (billing.Invoice, error) {
	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return billing.Invoice{}, errors.Wrap(err, "starting transaction")
	}
	defer func() { _ = tx.Rollback() }()

	inv.ID = uuid.New().String()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO invoice (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inv.ID, inv.SchoolID, inv.StudentID, inv.Amount, int(inv.Month), inv.Year, inv.Date,
		inv.CreatedAt, inv.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "invoice_student_period_uix") {
			return billing.Invoice{}, billing.ErrDuplicateInvoice
		}
		return billing.Invoice{}, errors.Wrap(err, "creating invoice")
	}

	// get-or-create the status; the invoice uniqueness above makes a
	// pre-existing row for this key unlikely but it stays idempotent.
	var existing string
	err = tx.GetContext(ctx, &existing,
		`SELECT id FROM payment_status WHERE student_id = $1 AND month = $2 AND year = $3`,
		status.StudentID, int(status.Month), status.Year)
	switch errors.Cause(err) {
	case nil:
	case sql.ErrNoRows:
		status.ID = uuid.New().String()
		status.InvoiceID = inv.ID
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payment_status (`+paymentStatusColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			status.ID, status.SchoolID, status.StudentID, status.InvoiceID, int(status.Month), status.Year,
			status.IsPaid, status.CreatedAt, status.UpdatedAt,
		)
		if err != nil {
			return billing.Invoice{}, errors.Wrap(err, "creating payment status")
		}
	default:
		return billing.Invoice{}, errors.Wrap(err, "checking payment status")
	}

	if err = tx.Commit(); err != nil {
		return billing.Invoice{}, errors.Wrap(err, "committing transaction")
	}
	return inv, nil
}

func (repo *billingRepository) GetInvoiceByID(ctx context.Context, id string) (billing.Invoice, error) {
	var row invoiceRow
	err := repo.db.GetContext(ctx, &row, `SELECT `+invoiceColumns+` FROM invoice WHERE id = $1`, id)
	if err != nil {
		return billing.Invoice{}, trapNoRows(err, billing.ErrInvoiceNotFound, "getting invoice")
	}
	return row.model(), nil
}

func (repo *billingRepository) FilterInvoices(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering) ([]billing.Invoice, error) {
	cb := billingConds(filter, true /* dates */)

	var rows []invoiceRow
	query := `SELECT ` + invoiceColumns + ` FROM invoice` + cb.clause() + orderBy(ordering, invoiceOrderFields, "date")
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering invoices")
	}
	invoices := make([]billing.Invoice, len(rows))
	for i, row := range rows {
		invoices[i] = row.model()
	}
	return invoices, nil
}

func (repo *billingRepository) FilterPaymentStatuses(ctx context.Context, filter *billing.QueryFilter, ordering []core.DBOrdering) ([]billing.PaymentStatus, error) {
	cb := billingConds(filter, false /* dates */)

	var rows []paymentStatusRow
	query := `SELECT ` + paymentStatusColumns + ` FROM payment_status` + cb.clause() + ` ORDER BY year, month`
	if err := repo.db.SelectContext(ctx, &rows, query, cb.args...); err != nil {
		return nil, errors.Wrap(err, "filtering payment statuses")
	}
	statuses := make([]billing.PaymentStatus, len(rows))
	for i, row := range rows {
		statuses[i] = row.model()
	}
	return statuses, nil
}

func billingConds(filter *billing.QueryFilter, dates bool) *condBuilder {
	cb := new(condBuilder)
	if filter == nil {
		return cb
	}
	if filter.SchoolID != "" {
		cb.where(`school_id = $%d`, filter.SchoolID)
	}
	if filter.StudentID != "" {
		cb.where(`student_id = $%d`, filter.StudentID)
	}
	if filter.Month != 0 {
		cb.where(`month = $%d`, filter.Month)
	}
	if filter.Year != 0 {
		cb.where(`year = $%d`, filter.Year)
	}
	if dates {
		if filter.DateFrom != nil {
			cb.where(`date >= $%d`, *filter.DateFrom)
		}
		if filter.DateTo != nil {
			cb.where(`date <= $%d`, *filter.DateTo)
		}
	}
	return cb
}
