package echoapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
	"github.com/rawadhq/rawad/core/admin"
	"github.com/rawadhq/rawad/core/registration"
)

type adminApi struct {
	svc      *admin.Service
	regSvc   *registration.Service
	validate *validator.Validate
}

func registerAdminAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *admin.Service,
	regSvc *registration.Service,
	validate *validator.Validate,
) {
	api := adminApi{svc: svc, regSvc: regSvc, validate: validate}

	ag := g.Group("/admin")

	// un-authed endpoint
	// TODO: rate limit `/login`
	ag.POST("/login", api.login)

	// authed endpoints
	authed := ag.Group("", jwt, adminMiddleware())
	authed.PUT("/password", api.changePassword)
	authed.GET("/registrations", api.query)
	authed.GET("/registrations/live", api.live)
	authed.GET("/registrations/:id", api.retrieve)
	authed.DELETE("/registrations", api.destroyMultiple)
	authed.GET("/analytics", api.analytics)
	authed.GET("/reports/csv", api.exportCSV)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.Authenticate(ctx.Request().Context(), data.Password); err != nil {
		switch errors.Cause(err) {
		case admin.ErrInvalidPassword, admin.ErrNotFound:
			// an unseeded credential is indistinguishable from a wrong password
			return core.NewValidationError(nil, core.FieldError{Field: "password", Error: msgInvalidPassword})
		case admin.ErrAccountLocked:
			return errAccountLocked
		}
		return errors.Wrap(err, "authenticating")
	}

	token, err := GenerateToken(GetAdminClaims())
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *adminApi) changePassword(ctx echo.Context) error {
	var data admin.ChangePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChangePassword")
	}

	if err := api.svc.ChangePassword(ctx.Request().Context(), data); err != nil {
		switch errors.Cause(err) {
		case admin.ErrInvalidPassword:
			return core.NewValidationError(nil, core.FieldError{Field: "current_password", Error: msgInvalidPassword})
		case admin.ErrAccountLocked:
			return errAccountLocked
		}
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "تم تغيير كلمة المرور بنجاح"})
}

func (api *adminApi) query(ctx echo.Context) error {
	filter := new(registration.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		// a malformed filter lists everything rather than failing the table
		*filter = registration.QueryFilter{}
	}

	regs, err := api.regSvc.Query(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *adminApi) retrieve(ctx echo.Context) error {
	reg, err := api.regSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == registration.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding registration by ID")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *adminApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.regSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting registrations")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// live streams the full newest-first registration list: one snapshot frame on
// connect, then one frame per change, until the client disconnects.
func (api *adminApi) live(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	updates := make(chan []registration.Registration, 1)
	unsubscribe := api.regSvc.Subscribe(func(regs []registration.Registration) {
		// drop the stale frame if the client is slow, the next one supersedes it
		select {
		case updates <- regs:
		default:
			select {
			case <-updates:
			default:
			}
			updates <- regs
		}
	})
	defer unsubscribe()

	regs, err := api.regSvc.Query(reqCtx, registration.QueryFilter{})
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}

	res := openEventStream(ctx)
	if err := writeEvent(res, regs); err != nil {
		return nil
	}
	for {
		select {
		case <-reqCtx.Done():
			return nil
		case regs := <-updates:
			if err := writeEvent(res, regs); err != nil {
				return nil
			}
		}
	}
}

func (api *adminApi) analytics(ctx echo.Context) error {
	summary, err := api.regSvc.Analytics(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "aggregating analytics")
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (api *adminApi) exportCSV(ctx echo.Context) error {
	filter := new(registration.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		*filter = registration.QueryFilter{}
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv; charset=utf-8")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="registrations_%s.csv"`, time.Now().UTC().Format("2006-01-02")))
	res.WriteHeader(http.StatusOK)

	return api.regSvc.WriteReportCSV(ctx.Request().Context(), *filter, res)
}

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errUnauthorized
		}
	}
}

type (
	LoginRequest struct {
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(lr)
}
