package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/billing"
	"github.com/trezcool/darasa/core/student"
)

type studentApi struct {
	svc        student.Service
	billingSvc billing.Service
	validate   *validator.Validate
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc student.Service, billingSvc billing.Service, validate *validator.Validate) {
	api := studentApi{
		svc:        svc,
		billingSvc: billingSvc,
		validate:   validate,
	}

	sg := g.Group("/students", jwt, staffMiddleware())
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.DELETE("", api.destroyMultiple, adminMiddleware())
	sg.POST("/advance-year", api.advanceYear, adminMiddleware())
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.GET("/:id/missing-months", api.missingMonths)
}

func (api *studentApi) create(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.getVisible(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	std, err := api.getVisible(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	std, err = api.svc.Update(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting students")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// missingMonths lists the billing periods the student has not paid,
// from the school's subscription start through the current month.
func (api *studentApi) missingMonths(ctx echo.Context) error {
	std, err := api.getVisible(ctx)
	if err != nil {
		return err
	}

	months, err := api.billingSvc.MissingMonths(ctx.Request().Context(), std.ID)
	if err != nil {
		return errors.Wrap(err, "listing missing months")
	}
	return ctx.JSON(http.StatusOK, MissingMonthsResponse{Missing: months})
}

// advanceYear moves all of a school's active students one academic year
// forward; at most once per day per school.
func (api *studentApi) advanceYear(ctx echo.Context) error {
	schoolID := ctx.QueryParam("school")
	if schoolID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "school query param is required")
	}

	count, err := api.svc.AdvanceAcademicYear(ctx.Request().Context(), schoolID)
	if err != nil {
		if errors.Cause(err) == student.ErrAlreadyAdvanced {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return errors.Wrap(err, "advancing academic year")
	}
	return ctx.JSON(http.StatusOK, AdvanceYearResponse{Advanced: count})
}

func (api *studentApi) getVisible(ctx echo.Context) (student.Student, error) {
	std, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && claims.SchoolID != std.SchoolID {
		return student.Student{}, errHttpNotFound
	}
	return std, nil
}

type (
	MissingMonthsResponse struct {
		Missing []string `json:"missing_months"`
	}

	AdvanceYearResponse struct {
		Advanced int `json:"students_advanced"`
	}
)
