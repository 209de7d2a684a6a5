package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/student"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) *reportRepository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) GroupTallies(ctx context.Context, schoolID string, period billing.Period) ([]report.GroupTally, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	tallies := make([]report.GroupTally, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		if grp.SchoolID != schoolID {
			continue
		}
		tally := report.GroupTally{
			GroupID:   grp.ID,
			GroupName: grp.Name,
		}
		if crs, ok := repo.db.courses[grp.CourseID]; ok {
			tally.CourseName = crs.Name
			tally.CoursePrice = crs.Price
		}

		for _, std := range repo.db.students {
			if std.GroupID.String != grp.ID || !std.IsActive {
				continue
			}
			tally.TotalStudents++
			if std.DiscountTier == student.DiscountFull {
				tally.FullDiscount++
				continue
			}

			var paidCurrent bool
			var paidOther int
			for _, status := range repo.db.statuses {
				if status.StudentID != std.ID || !status.IsPaid {
					continue
				}
				if status.Period() == period {
					paidCurrent = true
				} else {
					paidOther++
				}
			}
			switch std.DiscountTier {
			case student.DiscountPart:
				if paidCurrent {
					tally.PaidDiscountCurrent++
				}
				tally.PaidDiscountOther += paidOther
			default:
				if paidCurrent {
					tally.PaidNoneCurrent++
				}
				tally.PaidNoneOther += paidOther
			}
		}
		tallies = append(tallies, tally)
	}
	sort.Slice(tallies, func(i, j int) bool { return tallies[i].GroupName < tallies[j].GroupName })
	return tallies, nil
}

func (repo *reportRepository) PaymentItems(ctx context.Context, schoolID string, from, to *time.Time) ([]report.PaymentItem, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	items := make([]report.PaymentItem, 0, len(repo.db.statuses))
	for _, status := range repo.db.statuses {
		if status.SchoolID != schoolID || !status.IsPaid {
			continue
		}
		inv, ok := repo.db.invoices[status.InvoiceID]
		if !ok {
			continue
		}
		if from != nil && inv.Date.Before(*from) {
			continue
		}
		if to != nil && inv.Date.After(*to) {
			continue
		}
		item := report.PaymentItem{
			Amount: inv.Amount,
			Date:   inv.Date,
			Month:  status.Month,
			Year:   status.Year,
		}
		if std, ok := repo.db.students[status.StudentID]; ok {
			item.StudentCode = std.Code
			item.StudentName = std.Name
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Date.Before(items[j].Date) })
	return items, nil
}
