package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/student"
)

type reportRepository struct {
	db *sqlx.DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *sqlx.DB) *reportRepository {
	return &reportRepository{db: db}
}

type groupTallyRow struct {
	GroupID             string          `db:"group_id"`
	GroupName           string          `db:"group_name"`
	CourseName          string          `db:"course_name"`
	CoursePrice         decimal.Decimal `db:"course_price"`
	TotalStudents       int             `db:"total_students"`
	FullDiscount        int             `db:"full_discount"`
	PaidNoneCurrent     int             `db:"paid_none_current"`
	PaidDiscountCurrent int             `db:"paid_discount_current"`
}

type otherPeriodRow struct {
	GroupID           string `db:"group_id"`
	PaidNoneOther     int    `db:"paid_none_other"`
	PaidDiscountOther int    `db:"paid_discount_other"`
}

// GroupTallies scans the ledger in two passes: per-student counts joined
// with the target period's statuses, then paid rows for every other
// period. Other-period counts are payment rows, not distinct students.
func (repo *reportRepository) GroupTallies(ctx context.Context, schoolID string, period billing.Period) ([]report.GroupTally, error) {
	var tallyRows []groupTallyRow
	err := repo.db.SelectContext(ctx, &tallyRows, `
		SELECT g.id      AS group_id,
		       g.name    AS group_name,
		       c.name    AS course_name,
		       c.price   AS course_price,
		       COUNT(s.id) AS total_students,
		       COUNT(s.id) FILTER (WHERE s.discount_tier = $4) AS full_discount,
		       COUNT(s.id) FILTER (WHERE s.discount_tier = $5 AND ps.id IS NOT NULL) AS paid_none_current,
		       COUNT(s.id) FILTER (WHERE s.discount_tier = $6 AND ps.id IS NOT NULL) AS paid_discount_current
		FROM class_group g
		JOIN course c ON c.id = g.course_id
		LEFT JOIN student s ON s.group_id = g.id AND s.is_active
		LEFT JOIN payment_status ps
			ON ps.student_id = s.id AND ps.is_paid AND ps.month = $2 AND ps.year = $3
		WHERE g.school_id = $1
		GROUP BY g.id, g.name, c.name, c.price`,
		schoolID, int(period.Month), period.Year,
		student.DiscountFull, student.DiscountNone, student.DiscountPart,
	)
	if err != nil {
		return nil, errors.Wrap(err, "tallying groups")
	}

	var otherRows []otherPeriodRow
	err = repo.db.SelectContext(ctx, &otherRows, `
		SELECT s.group_id AS group_id,
		       COUNT(*) FILTER (WHERE s.discount_tier = $4) AS paid_none_other,
		       COUNT(*) FILTER (WHERE s.discount_tier = $5) AS paid_discount_other
		FROM payment_status ps
		JOIN student s ON s.id = ps.student_id
		WHERE ps.school_id = $1
		  AND ps.is_paid
		  AND NOT (ps.month = $2 AND ps.year = $3)
		  AND s.is_active
		  AND s.group_id IS NOT NULL
		GROUP BY s.group_id`,
		schoolID, int(period.Month), period.Year,
		student.DiscountNone, student.DiscountPart,
	)
	if err != nil {
		return nil, errors.Wrap(err, "tallying other periods")
	}
	others := make(map[string]otherPeriodRow, len(otherRows))
	for _, row := range otherRows {
		others[row.GroupID] = row
	}

	tallies := make([]report.GroupTally, len(tallyRows))
	for i, row := range tallyRows {
		tallies[i] = report.GroupTally{
			GroupID:             row.GroupID,
			GroupName:           row.GroupName,
			CourseName:          row.CourseName,
			CoursePrice:         row.CoursePrice,
			TotalStudents:       row.TotalStudents,
			PaidNoneCurrent:     row.PaidNoneCurrent,
			PaidDiscountCurrent: row.PaidDiscountCurrent,
			PaidNoneOther:       others[row.GroupID].PaidNoneOther,
			PaidDiscountOther:   others[row.GroupID].PaidDiscountOther,
			FullDiscount:        row.FullDiscount,
		}
	}
	return tallies, nil
}

type paymentItemRow struct {
	StudentCode string          `db:"student_code"`
	StudentName string          `db:"student_name"`
	Amount      decimal.Decimal `db:"amount"`
	Date        time.Time       `db:"date"`
	Month       int             `db:"month"`
	Year        int             `db:"year"`
}

func (repo *reportRepository) PaymentItems(ctx context.Context, schoolID string, from, to *time.Time) ([]report.PaymentItem, error) {
	cb := new(condBuilder)
	cb.where(`ps.school_id = $%d`, schoolID)
	cb.conds = append(cb.conds, `ps.is_paid`)
	if from != nil {
		cb.where(`i.date >= $%d`, *from)
	}
	if to != nil {
		cb.where(`i.date <= $%d`, *to)
	}

	var rows []paymentItemRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT s.code   AS student_code,
		       s.name   AS student_name,
		       i.amount AS amount,
		       i.date   AS date,
		       i.month  AS month,
		       i.year   AS year
		FROM payment_status ps
		JOIN invoice i ON i.id = ps.invoice_id
		JOIN student s ON s.id = ps.student_id`+cb.clause()+`
		ORDER BY i.date, s.code`,
		cb.args...,
	)
	if err != nil {
		return nil, errors.Wrap(err, "listing payment items")
	}
	items := make([]report.PaymentItem, len(rows))
	for i, row := range rows {
		items[i] = report.PaymentItem{
			StudentCode: row.StudentCode,
			StudentName: row.StudentName,
			Amount:      row.Amount,
			Date:        row.Date,
			Month:       time.Month(row.Month),
			Year:        row.Year,
		}
	}
	return items, nil
}
