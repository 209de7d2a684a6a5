package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/student"
)

type billingApi struct {
	svc      billing.Service
	validate *validator.Validate
}

func registerBillingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc billing.Service, validate *validator.Validate) {
	api := billingApi{
		svc:      svc,
		validate: validate,
	}

	bg := g.Group("/invoices", jwt, staffMiddleware())
	bg.POST("", api.create)
	bg.GET("", api.query)
	bg.GET("/statuses", api.queryStatuses)
	bg.GET("/:id", api.retrieve)
}

// create records a payment: the invoice and its payment status are
// written atomically, or the whole request fails.
func (api *billingApi) create(ctx echo.Context) error {
	var data billing.NewInvoice
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInvoice")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	inv, err := api.svc.CreateInvoice(ctx.Request().Context(), data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound:
			return core.NewValidationError(nil, core.FieldError{Field: "student_code", Error: "student not found"})
		case billing.ErrDuplicateInvoice, billing.ErrUnassignedStudent, billing.ErrExemptStudent:
			return core.NewValidationError(errors.Cause(err))
		case billing.ErrAmountMismatch:
			return core.NewValidationError(nil, core.FieldError{Field: "amount", Error: err.Error()})
		}
		return errors.Wrap(err, "creating invoice")
	}
	return ctx.JSON(http.StatusCreated, inv)
}

func (api *billingApi) query(ctx echo.Context) error {
	filter := new(billing.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []billing.Invoice{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	invoices, err := api.svc.FilterInvoices(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying invoices")
	}
	if invoices == nil {
		invoices = []billing.Invoice{}
	}
	return ctx.JSON(http.StatusOK, invoices)
}

func (api *billingApi) queryStatuses(ctx echo.Context) error {
	filter := new(billing.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []billing.PaymentStatus{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	statuses, err := api.svc.FilterPaymentStatuses(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying payment statuses")
	}
	if statuses == nil {
		statuses = []billing.PaymentStatus{}
	}
	return ctx.JSON(http.StatusOK, statuses)
}

func (api *billingApi) retrieve(ctx echo.Context) error {
	inv, err := api.svc.GetInvoiceByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == billing.ErrInvoiceNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting invoice")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && claims.SchoolID != inv.SchoolID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, inv)
}
