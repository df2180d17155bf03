package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"vlogvalidator/core/auth"
	"vlogvalidator/core/submission"
)

type submissionApi struct {
	svc      *submission.Service
	intake   *submission.Intake
	authSvc  *auth.Service
	validate *validator.Validate
}

func registerSubmissionAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *submission.Service,
	intake *submission.Intake,
	authSvc *auth.Service,
	validate *validator.Validate,
) {
	api := submissionApi{
		svc:      svc,
		intake:   intake,
		authSvc:  authSvc,
		validate: validate,
	}

	sg := g.Group("/submissions")

	// un-authed endpoint: the student form posts here
	sg.POST("", api.create)

	// authed endpoints: teacher dashboard
	ag := sg.Group("", jwt)
	ag.GET("", api.query)
	ag.GET("/stream", api.stream)
	ag.GET("/rankings", api.rankings)
	ag.GET("/export", api.export)
	ag.PUT("/:id/grade", api.grade)
	ag.PUT("/:id/student", api.updateStudent)
	ag.DELETE("/:id", api.destroy)
	ag.DELETE("", api.destroyAll)
}

// Handlers

// create drives one student submission through the intake pipeline. The
// pipeline is reset afterwards so the next request finds it idle; a request
// arriving while one is in flight is rejected.
func (api *submissionApi) create(ctx echo.Context) error {
	var data submission.IntakeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to IntakeInput")
	}

	summary, err := api.intake.Run(ctx.Request().Context(), data)
	if err != nil {
		if err != submission.ErrIntakeBusy {
			_ = api.intake.Reset()
		}
		return err
	}
	_ = api.intake.Reset()

	return ctx.JSON(http.StatusCreated, summary)
}

func (api *submissionApi) query(ctx echo.Context) error {
	filter := submission.QueryFilter{
		Search: ctx.QueryParam("search"),
		Class:  ctx.QueryParam("class"),
		SortBy: submission.SortOption(ctx.QueryParam("sort")),
	}

	subs, err := api.svc.Filter(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}
	if subs == nil {
		subs = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

// stream pushes the full submission snapshot as a server-sent event on every
// change. The stream ends when the client disconnects or the teacher signs
// out.
func (api *submissionApi) stream(ctx echo.Context) error {
	sub, err := api.svc.Subscribe(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "subscribing to submissions")
	}
	defer sub.Cancel()

	watcher := api.authSvc.Watch()
	defer watcher.Cancel()

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	for {
		select {
		case snapshot := <-sub.C:
			if err = writeSSE(res, "snapshot", snapshot); err != nil {
				return nil // client gone
			}
		case err = <-sub.Errs:
			// surface the failure and clear the dashboard, keep listening
			if werr := writeSSE(res, "error", echo.Map{"error": err.Error()}); werr != nil {
				return nil
			}
		case sess := <-watcher.C:
			if sess == nil {
				return nil
			}
		case <-ctx.Request().Context().Done():
			return nil
		}
	}
}

func writeSSE(res *echo.Response, event string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err = fmt.Fprintf(res, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	res.Flush()
	return nil
}

func (api *submissionApi) rankings(ctx echo.Context) error {
	subs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	ranked, stats := submission.Rank(subs, ctx.QueryParam("class"))
	if ranked == nil {
		ranked = []submission.Submission{}
	}
	return ctx.JSON(http.StatusOK, RankingsResponse{Rankings: ranked, Stats: stats})
}

// export downloads the full submission set as a CSV recap.
func (api *submissionApi) export(ctx echo.Context) error {
	subs, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying submissions")
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", submission.ExportFilename(time.Now())))
	res.WriteHeader(http.StatusOK)

	return submission.WriteCSV(res, subs)
}

func (api *submissionApi) grade(ctx echo.Context) error {
	var data submission.Grade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Grade")
	}
	if err := api.svc.UpdateGrade(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Grade saved."})
}

func (api *submissionApi) updateStudent(ctx echo.Context) error {
	var data submission.StudentUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StudentUpdate")
	}
	if err := api.svc.UpdateStudent(ctx.Request().Context(), ctx.Param("id"), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Student details saved."})
}

func (api *submissionApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

// destroyAll wipes every submission in one batch. Destructive; the dashboard
// double-confirms before calling it.
func (api *submissionApi) destroyAll(ctx echo.Context) error {
	if err := api.svc.DeleteAll(ctx.Request().Context()); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
