package echoapi

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/school"
	"github.com/pogorelof/ai-exam/core/user"
)

type schoolApi struct {
	svc      *school.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *school.Service, usrSvc *user.Service, validate *validator.Validate) {
	api := schoolApi{svc: svc, usrSvc: usrSvc, validate: validate}

	cg := g.Group("/classes", jwt)
	cg.POST("", api.create, teacherMiddleware())
	cg.GET("", api.query)

	// detail endpoints
	dg := cg.Group("/:id")
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/requests", api.request)
	dg.GET("/requests", api.queryRequests)
	dg.POST("/respond", api.respond)
	dg.GET("/members", api.queryMembers)
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}

// Handlers

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewClass
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	class, err := api.svc.CreateClass(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *schoolApi) query(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *schoolApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.UpdateClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateClass")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	class, err := api.svc.UpdateClass(ctx.Request().Context(), usr, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(ctx.Request().Context(), usr, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) request(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	status, err := api.svc.RequestEnrollment(ctx.Request().Context(), usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StatusResponse{Status: status})
}

func (api *schoolApi) respond(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data school.Respond
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Respond")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	status, err := api.svc.Respond(ctx.Request().Context(), usr, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, StatusResponse{Status: status})
}

func (api *schoolApi) queryRequests(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	students, err := api.svc.QueryRequests(ctx.Request().Context(), usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *schoolApi) queryMembers(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	students, err := api.svc.QueryMembers(ctx.Request().Context(), usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, students)
}
