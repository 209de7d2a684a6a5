package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func adminMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin && contextHasAnyRole(ctx, roles) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// staffMiddleware lets staff and admins through.
func staffMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin || claims.IsStaff {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// resolveSchoolID returns the tenant a request operates on: staff are
// locked to their own school, admins pick one with the `school` query
// param (empty means all schools for list endpoints).
func resolveSchoolID(ctx echo.Context) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if claims.IsAdmin {
		return ctx.QueryParam("school"), nil
	}
	if claims.SchoolID == "" {
		return "", errHttpForbidden
	}
	return claims.SchoolID, nil
}

// enforceSchoolID pins a payload's school to the caller's tenant. Staff
// always write to their own school; admins must name one explicitly.
func enforceSchoolID(ctx echo.Context, schoolID *string) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.IsAdmin {
		if claims.SchoolID == "" {
			return errHttpForbidden
		}
		*schoolID = claims.SchoolID
	}
	return nil
}
