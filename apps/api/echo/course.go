package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/course"
)

type courseApi struct {
	svc      course.Service
	validate *validator.Validate
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.Service, validate *validator.Validate) {
	api := courseApi{
		svc:      svc,
		validate: validate,
	}

	cg := g.Group("/courses", jwt, staffMiddleware())
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.DELETE("", api.destroyMultiple, adminMiddleware())
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)

	gg := g.Group("/class-groups", jwt, staffMiddleware())
	gg.POST("", api.createGroup)
	gg.GET("", api.queryGroups)
	gg.DELETE("", api.destroyGroups, adminMiddleware())
	gg.GET("/:id", api.retrieveGroup)
	gg.PUT("/:id", api.updateGroup)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) query(ctx echo.Context) error {
	filter := new(course.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.Course{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	courses, err := api.svc.Filter(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.getVisible(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	crs, err := api.getVisible(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	crs, err = api.svc.Update(ctx.Request().Context(), crs.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) getVisible(ctx echo.Context) (course.Course, error) {
	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return course.Course{}, errHttpNotFound
		}
		return course.Course{}, errors.Wrap(err, "getting course")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && claims.SchoolID != crs.SchoolID {
		return course.Course{}, errHttpNotFound
	}
	return crs, nil
}

// Class Groups

func (api *courseApi) createGroup(ctx echo.Context) error {
	var data course.NewClassGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClassGroup")
	}
	if err := enforceSchoolID(ctx, &data.SchoolID); err != nil {
		return err
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	grp, err := api.svc.CreateGroup(ctx.Request().Context(), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "creating class group")
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *courseApi) queryGroups(ctx echo.Context) error {
	filter := new(course.GroupQueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []course.ClassGroup{})
	}
	schoolID, err := resolveSchoolID(ctx)
	if err != nil {
		return err
	}
	filter.SchoolID = schoolID
	ordering := new(Ordering)
	ordering.Bind(ctx)

	groups, err := api.svc.FilterGroups(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying class groups")
	}
	if groups == nil {
		groups = []course.ClassGroup{}
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *courseApi) retrieveGroup(ctx echo.Context) error {
	grp, err := api.getVisibleGroup(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *courseApi) updateGroup(ctx echo.Context) error {
	grp, err := api.getVisibleGroup(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateClassGroup
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClassGroup")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	grp, err = api.svc.UpdateGroup(ctx.Request().Context(), grp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating class group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *courseApi) destroyGroups(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.DeleteGroups(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting class groups")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) getVisibleGroup(ctx echo.Context) (course.ClassGroup, error) {
	grp, err := api.svc.GetGroupByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrGroupNotFound {
			return course.ClassGroup{}, errHttpNotFound
		}
		return course.ClassGroup{}, errors.Wrap(err, "getting class group")
	}
	claims, err := getContextClaims(ctx)
	if err != nil {
		return course.ClassGroup{}, errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin && claims.SchoolID != grp.SchoolID {
		return course.ClassGroup{}, errHttpNotFound
	}
	return grp, nil
}
