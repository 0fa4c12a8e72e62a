package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core/registration"
)

type registrationApi struct {
	svc *registration.Service
}

func registerRegistrationAPI(g *echo.Group, svc *registration.Service) {
	api := registrationApi{svc: svc}

	// un-authed endpoint
	// TODO: rate limit `/registrations`
	g.POST("/registrations", api.submit)
}

// Handlers

// submit runs a submission through the pipeline, streaming every state
// transition to the client as SSE frames. The stream always ends with a
// terminal event (rejected, succeeded or failed); validation problems are
// frames, not HTTP errors.
func (api *registrationApi) submit(ctx echo.Context) error {
	draft, err := bindDraft(ctx)
	if err != nil {
		return errors.Wrap(err, "binding to Draft")
	}

	res := openEventStream(ctx)
	events := api.svc.Submit(ctx.Request().Context(), draft)
	for evt := range events {
		if err := writeEvent(res, evt); err != nil {
			// client went away; keep draining so the pipeline can finish
			ctx.Logger().Warnf("dropping submission events: %v", err)
			for range events {
			}
			break
		}
	}
	return nil
}

// bindDraft reads the multipart form. The CV part is optional at binding time;
// its absence is a validation concern, not a binding error.
func bindDraft(ctx echo.Context) (registration.Draft, error) {
	hrExp, _ := strconv.ParseBool(ctx.FormValue("hr_experience"))
	draft := registration.Draft{
		Role:              ctx.FormValue("role"),
		FullName:          ctx.FormValue("full_name"),
		Email:             ctx.FormValue("email"),
		Phone:             ctx.FormValue("phone"),
		YearsOfExperience: ctx.FormValue("years_of_experience"),
		Specializations:   ctx.FormValue("specializations"),
		Bio:               ctx.FormValue("bio"),
		HRExperience:      hrExp,
		CurrentField:      ctx.FormValue("current_field"),
		Reason:            ctx.FormValue("reason"),
		AdditionalNotes:   ctx.FormValue("additional_notes"),
	}

	fh, err := ctx.FormFile("cv")
	if err != nil {
		return draft, nil
	}
	file, err := fh.Open()
	if err != nil {
		return registration.Draft{}, errors.Wrap(err, "opening CV part")
	}
	draft.CV = &registration.CVFile{
		Name:        fh.Filename,
		Size:        fh.Size,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Content:     file,
	}
	return draft, nil
}
