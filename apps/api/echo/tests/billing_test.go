package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	echoapi "github.com/trezcool/darasa/apps/api/echo"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/student"
	"github.com/trezcool/darasa/core/user"
	testutil "github.com/trezcool/darasa/tests"
)

type billingFixture struct {
	school  school.School
	group   course.ClassGroup
	stdNone student.Student
	stdPart student.Student
	stdFull student.Student
	loose   student.Student // not assigned to any group

	staffToken string
}

// price 100, flat discount 20 -> expected 100 for tier "none", 80 for
// tier "discount".
func setupBilling(t *testing.T) billingFixture {
	db.Reset()

	sch := testutil.CreateSchool(t, schoolRepo, "Bright Future", 2026, time.January, decimal.NewFromInt(20))
	tchr := testutil.CreateTeacher(t, teacherRepo, sch.ID, "Mr. Kalala")
	crs := testutil.CreateCourse(t, courseRepo, sch.ID, "Mathematics", decimal.NewFromInt(100))
	grp := testutil.CreateClassGroup(t, courseRepo, sch.ID, "Math A", crs.ID, tchr.ID)

	staff := testutil.CreateUser(t, usrRepo, "Staff", "staffer", "staff@test.cd", "", []string{user.RoleStaff}, sch.ID, true)

	return billingFixture{
		school:     sch,
		group:      grp,
		stdNone:    testutil.CreateStudent(t, studentRepo, sch.ID, "Alice Ilunga", "10001", student.DiscountNone, grp.ID),
		stdPart:    testutil.CreateStudent(t, studentRepo, sch.ID, "Benny Mutombo", "10002", student.DiscountPart, grp.ID),
		stdFull:    testutil.CreateStudent(t, studentRepo, sch.ID, "Clara Kanku", "10003", student.DiscountFull, grp.ID),
		loose:      testutil.CreateStudent(t, studentRepo, sch.ID, "Didier Kazadi", "10004", student.DiscountNone, ""),
		staffToken: getToken(t, staff),
	}
}

func Test_billingApi_invoiceCreate(t *testing.T) {
	fix := setupBilling(t)

	newInvoice := func(code string, amount int64, month int) []byte {
		return marchallObj(t, billing.NewInvoice{
			StudentCode: code,
			Amount:      decimal.NewFromInt(amount),
			Month:       month,
			Year:        2026,
		})
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unknown student", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice("99999", 100, 2),
			wantData: marchallObj(t, map[string]string{"student_code": "student not found"}),
		},
		{
			name: "exempt student", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice(fix.stdFull.Code, 100, 2),
			wantData: marchallObj(t, httpErr{Error: "student is fully exempt and cannot be invoiced"}),
		},
		{
			name: "unassigned student", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice(fix.loose.Code, 100, 2),
			wantData: marchallObj(t, httpErr{Error: "student is not assigned to a class group"}),
		},
		{
			name: "amount mismatch", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice(fix.stdNone.Code, 50, 2),
			wantData: marchallObj(t, map[string]string{"amount": "expected 100: amount does not match the expected amount"}),
		},
		{
			name: "discounted amount mismatch", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice(fix.stdPart.Code, 100, 2),
			wantData: marchallObj(t, map[string]string{"amount": "expected 80: amount does not match the expected amount"}),
		},
		{name: "full price paid", token: fix.staffToken, wantCode: http.StatusCreated, body: newInvoice(fix.stdNone.Code, 100, 2)},
		{
			name: "duplicate period", token: fix.staffToken, wantCode: http.StatusBadRequest,
			body:     newInvoice(fix.stdNone.Code, 100, 2),
			wantData: marchallObj(t, httpErr{Error: "an invoice already exists for this student and period"}),
		},
		{name: "next period ok", token: fix.staffToken, wantCode: http.StatusCreated, body: newInvoice(fix.stdNone.Code, 100, 3)},
		{name: "discounted price paid", token: fix.staffToken, wantCode: http.StatusCreated, body: newInvoice(fix.stdPart.Code, 80, 2)},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/invoices"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var inv billing.Invoice
				if err := json.Unmarshal(rec.Body.Bytes(), &inv); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if inv.SchoolID != fix.school.ID {
					t.Errorf("failed! SchoolID = %s; want %s", inv.SchoolID, fix.school.ID)
				}
				if inv.ID == "" {
					t.Error("failed! empty invoice ID")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}

	// the payment ledger now holds one status per paid period
	req, rec := newAuthRequest(http.MethodGet, "/v1/invoices/statuses", fix.staffToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("statuses failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var statuses []billing.PaymentStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &statuses); err != nil {
		t.Fatalf("json.Unmarshal() failed! err %v", err)
	}
	if len(statuses) != 3 {
		t.Errorf("failed! len(statuses) = %d; want 3", len(statuses))
	}
	for _, status := range statuses {
		if !status.IsPaid {
			t.Errorf("failed! status %s not marked paid", status.ID)
		}
		if status.InvoiceID == "" {
			t.Errorf("failed! status %s has no invoice back-reference", status.ID)
		}
	}
}

func Test_studentApi_missingMonths(t *testing.T) {
	fix := setupBilling(t)

	// freeze the clock mid-March; subscription started in January
	billing.NowFunc = func() time.Time { return time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC) }
	defer func() { billing.NowFunc = time.Now }()

	// February is paid, January and March are not
	testutil.CreateInvoice(t, billingRepo, fix.school.ID, fix.stdNone.ID, decimal.NewFromInt(100), time.February, 2026)

	otherSch := testutil.CreateSchool(t, schoolRepo, "Other School", 2026, time.January, decimal.Zero)
	otherStd := testutil.CreateStudent(t, studentRepo, otherSch.ID, "Eve Tshala", "20001", student.DiscountNone, "")

	tests := []httpTest{
		{name: "Auth required", path: "/v1/students/" + fix.stdNone.ID + "/missing-months", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "unpaid periods listed", path: "/v1/students/" + fix.stdNone.ID + "/missing-months", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.MissingMonthsResponse{Missing: []string{"2026-01", "2026-03"}}),
		},
		{
			name: "exempt student owes nothing", path: "/v1/students/" + fix.stdFull.ID + "/missing-months", token: fix.staffToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, echoapi.MissingMonthsResponse{Missing: []string{}}),
		},
		{
			name: "cross-tenant student hidden", path: "/v1/students/" + otherStd.ID + "/missing-months", token: fix.staffToken,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "not found"}),
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
