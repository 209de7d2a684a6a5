package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/attendance"
)

type attendanceApi struct {
	svc      attendance.Service
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service, validate *validator.Validate) {
	api := attendanceApi{
		svc:      svc,
		validate: validate,
	}

	ag := g.Group("/attendance", jwt, staffMiddleware())
	ag.POST("", api.record)
	ag.POST("/group", api.recordGroup)
	ag.GET("", api.query)
	ag.DELETE("", api.destroyMultiple, adminMiddleware())
}

// record registers one student's presence for a day; recording twice for
// the same student and day updates the existing entry.
func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.NewAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAttendance")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	att, err := api.svc.Record(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusCreated, att)
}

// recordGroup registers a whole class group's attendance sheet for a day.
func (api *attendanceApi) recordGroup(ctx echo.Context) error {
	var data attendance.GroupAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to GroupAttendance")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	atts, err := api.svc.RecordGroup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "recording group attendance")
	}
	return ctx.JSON(http.StatusCreated, atts)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	filter := new(attendance.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []attendance.Attendance{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	atts, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying attendances")
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}

func (api *attendanceApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting attendances")
	}
	return ctx.NoContent(http.StatusNoContent)
}
