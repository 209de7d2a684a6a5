package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/report"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

func Test_reportApi_groupSummary(t *testing.T) {
	fix := setupBilling(t)

	// February: full-price student and discounted student both paid;
	// the discounted student also paid January.
	testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdNone.ID, decimal.NewFromInt(100), time.February, 2026)
	testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdPart.ID, decimal.NewFromInt(80), time.February, 2026)
	testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdPart.ID, decimal.NewFromInt(80), time.January, 2026)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin1", "admin@test.cd", "", []string{user.RoleAdmin}, "", true)
	adminToken := getToken(t, admin)

	februarySummary := report.GroupSummary{
		GroupID:     fix.group.ID,
		GroupName:   fix.group.Name,
		CourseName:  "Mathematics",
		CoursePrice: decimal.NewFromInt(100),

		TotalStudents:        3, // the unassigned student is not counted
		PaidCurrent:          1,
		DiscountPaidCurrent:  1,
		FullDiscount:         1,
		NotPaid:              0,
		PaidPrevious:         0,
		DiscountPaidPrevious: 1,

		CurrentTotal: decimal.NewFromInt(180), // 100 + 80
		OtherTotal:   decimal.NewFromInt(80),
		FinalTotal:   decimal.NewFromInt(260),
	}
	marchSummary := report.GroupSummary{
		GroupID:     fix.group.ID,
		GroupName:   fix.group.Name,
		CourseName:  "Mathematics",
		CoursePrice: decimal.NewFromInt(100),

		TotalStudents:        3,
		PaidCurrent:          0,
		DiscountPaidCurrent:  0,
		FullDiscount:         1,
		NotPaid:              2,
		PaidPrevious:         1,
		DiscountPaidPrevious: 2,

		CurrentTotal: decimal.NewFromInt(0),
		OtherTotal:   decimal.NewFromInt(260), // 100 + 2*80
		FinalTotal:   decimal.NewFromInt(260),
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/reports/groups", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin must name a school", path: "/v1/reports/groups?month=2&year=2026", token: adminToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "school query param is required"}),
		},
		{
			name: "invalid month", path: "/v1/reports/groups?month=13&year=2026", token: fix.staffToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid month"}),
		},
		{
			name: "staff gets own school", path: "/v1/reports/groups?month=2&year=2026", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, februarySummary),
		},
		{
			name: "admin picks the school", path: "/v1/reports/groups?month=2&year=2026&school=" + fix.school.ID, token: adminToken,
			wantCode: http.StatusOK, wantData: marchallList(t, februarySummary),
		},
		{
			name: "unpaid period", path: "/v1/reports/groups?month=3&year=2026", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, marchSummary),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reportApi_paymentSummary(t *testing.T) {
	fix := setupBilling(t)

	inv1 := testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdNone.ID, decimal.NewFromInt(100), time.February, 2026)
	inv2 := testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdPart.ID, decimal.NewFromInt(80), time.February, 2026)

	items := []interface{}{
		report.PaymentItem{
			StudentCode: fix.stdNone.Code,
			StudentName: fix.stdNone.Name,
			Amount:      inv1.Amount,
			Date:        inv1.Date,
			Month:       time.February,
			Year:        2026,
		},
		report.PaymentItem{
			StudentCode: fix.stdPart.Code,
			StudentName: fix.stdPart.Name,
			Amount:      inv2.Amount,
			Date:        inv2.Date,
			Month:       time.February,
			Year:        2026,
		},
	}

	tomorrow := time.Now().UTC().Add(24 * time.Hour).Format("2006-01-02")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/reports/payments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "all payments", path: "/v1/reports/payments", token: fix.staffToken, wantCode: http.StatusOK, wantData: marchallList(t, items...)},
		{
			name: "outside date range", path: "/v1/reports/payments?date_from=" + tomorrow, token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, []interface{}{}...),
		},
		{
			name: "invalid date", path: "/v1/reports/payments?date_from=lol", token: fix.staffToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "invalid date_from"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_reportApi_attendanceSheet(t *testing.T) {
	fix := setupBilling(t)

	// freeze the clock mid-February; nothing is paid yet, so January and
	// February show up as owed on the sheet
	billing.NowFunc = func() time.Time { return time.Date(2026, time.February, 15, 10, 0, 0, 0, time.UTC) }
	defer func() { billing.NowFunc = time.Now }()

	owed := []string{"2026-01", "2026-02"}
	day := time.Date(2026, time.February, 10, 0, 0, 0, 0, time.UTC)

	// mark one student absent; everyone else stays implicitly present
	body := marchallObj(t, map[string]interface{}{
		"student_id": fix.stdNone.ID,
		"group_id":   fix.group.ID,
		"date":       day.Format(time.RFC3339),
		"present":    false,
		"note":       "sick",
	})
	req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", fix.staffToken, body)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("recording attendance failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	sheet := []interface{}{
		echoapi.AttendanceSheetRow{StudentID: fix.stdNone.ID, StudentCode: fix.stdNone.Code, StudentName: fix.stdNone.Name, Present: false, MissingMonths: owed},
		echoapi.AttendanceSheetRow{StudentID: fix.stdPart.ID, StudentCode: fix.stdPart.Code, StudentName: fix.stdPart.Name, Present: true, MissingMonths: owed},
		echoapi.AttendanceSheetRow{StudentID: fix.stdFull.ID, StudentCode: fix.stdFull.Code, StudentName: fix.stdFull.Name, Present: true, MissingMonths: []string{}},
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/reports/attendance-sheet", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "group param required", path: "/v1/reports/attendance-sheet", token: fix.staffToken,
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "group query param is required"}),
		},
		{
			name: "sheet for the day", path: "/v1/reports/attendance-sheet?group=" + fix.group.ID + "&date=2026-02-10", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t, sheet...),
		},
		{
			name: "no records means all present", path: "/v1/reports/attendance-sheet?group=" + fix.group.ID + "&date=2026-02-11", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallList(t,
				echoapi.AttendanceSheetRow{StudentID: fix.stdNone.ID, StudentCode: fix.stdNone.Code, StudentName: fix.stdNone.Name, Present: true, MissingMonths: owed},
				sheet[1], sheet[2],
			),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
