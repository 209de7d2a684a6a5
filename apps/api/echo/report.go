package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/attendance"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/student"
)

const dateParamLayout = "2006-01-02"

type reportApi struct {
	svc           report.Service
	attendanceSvc attendance.Service
	studentSvc    student.Service
	billingSvc    billing.Service
}

func registerReportAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc report.Service,
	attendanceSvc attendance.Service,
	studentSvc student.Service,
	billingSvc billing.Service,
) {
	api := reportApi{
		svc:           svc,
		attendanceSvc: attendanceSvc,
		studentSvc:    studentSvc,
		billingSvc:    billingSvc,
	}

	rg := g.Group("/reports", jwt, staffMiddleware())
	rg.GET("/groups", api.groupSummary)
	rg.GET("/payments", api.paymentSummary)
	rg.GET("/attendance-sheet", api.attendanceSheet)
}

// groupSummary rolls the payment ledger up per class group for one
// billing period; the period defaults to the current month.
func (api *reportApi) groupSummary(ctx echo.Context) error {
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	if schoolID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "school query param is required")
	}

	period := billing.PeriodOf(time.Now().UTC())
	if m := ctx.QueryParam("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		period.Month = time.Month(month)
	}
	if y := ctx.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		period.Year = year
	}

	summaries, err := api.svc.GroupSummary(ctx.Request().Context(), schoolID, period)
	if err != nil {
		return errors.Wrap(err, "summarizing groups")
	}
	if summaries == nil {
		summaries = []report.GroupSummary{}
	}
	return ctx.JSON(http.StatusOK, summaries)
}

// paymentSummary lists itemized payments, optionally restricted to
// invoices dated within [date_from, date_to].
func (api *reportApi) paymentSummary(ctx echo.Context) error {
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	if schoolID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "school query param is required")
	}

	from, err := parseDateParam(ctx, "date_from")
	if err != nil {
		return err
	}
	to, err := parseDateParam(ctx, "date_to")
	if err != nil {
		return err
	}

	items, err := api.svc.PaymentSummary(ctx.Request().Context(), schoolID, from, to)
	if err != nil {
		return errors.Wrap(err, "summarizing payments")
	}
	if items == nil {
		items = []report.PaymentItem{}
	}
	return ctx.JSON(http.StatusOK, items)
}

// attendanceSheet lists a class group's students with their presence
// status for a day; students without a record count as present.
func (api *reportApi) attendanceSheet(ctx echo.Context) error {
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	groupID := ctx.QueryParam("group")
	if groupID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "group query param is required")
	}
	date, err := parseDateParam(ctx, "date")
	if err != nil {
		return err
	}
	if date == nil {
		now := time.Now().UTC()
		date = &now
	}

	active := true
	students, err := api.studentSvc.Filter(ctx.Request().Context(), &student.QueryFilter{
		SchoolID: schoolID,
		GroupID:  groupID,
		IsActive: &active,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "querying group students")
	}

	sheet := make([]AttendanceSheetRow, len(students))
	for i, std := range students {
		present, err := api.attendanceSvc.WasPresent(ctx.Request().Context(), std.SchoolID, std.ID, *date)
		if err != nil {
			return errors.Wrap(err, "checking presence")
		}
		missing, err := api.billingSvc.MissingMonths(ctx.Request().Context(), std.ID)
		if err != nil {
			return errors.Wrap(err, "listing missing months")
		}
		sheet[i] = AttendanceSheetRow{
			StudentID:     std.ID,
			StudentCode:   std.Code,
			StudentName:   std.Name,
			Present:       present,
			MissingMonths: missing,
		}
	}
	return ctx.JSON(http.StatusOK, sheet)
}

type AttendanceSheetRow struct {
	StudentID     string   `json:"student_id"`
	StudentCode   string   `json:"student_code"`
	StudentName   string   `json:"student_name"`
	Present       bool     `json:"present"`
	MissingMonths []string `json:"missing_months"`
}

func parseDateParam(ctx echo.Context, name string) (*time.Time, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	date, err := time.Parse(dateParamLayout, val)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return &date, nil
}
