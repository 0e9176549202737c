package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/quiz"
	"github.com/pogorelof/ai-exam/core/user"
)

type quizApi struct {
	svc      *quiz.Service
	usrSvc   *user.Service
	validate *validator.Validate
}

func registerQuizAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *quiz.Service, usrSvc *user.Service, validate *validator.Validate) {
	api := quizApi{svc: svc, usrSvc: usrSvc, validate: validate}

	tg := g.Group("/themes", jwt)
	tg.POST("", api.create, teacherMiddleware())
	tg.GET("/:id", api.get)

	g.GET("/classes/:id/themes", api.queryByClass, jwt)
}

// Handlers

func (api *quizApi) create(ctx echo.Context) error {
	var data quiz.NewTheme
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTheme")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	theme, err := api.svc.CreateTheme(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ThemeCreatedResponse{ThemeID: theme.ID})
}

func (api *quizApi) get(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	theme, err := api.svc.GetTheme(ctx.Request().Context(), usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, theme)
}

func (api *quizApi) queryByClass(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	themes, err := api.svc.QueryThemes(ctx.Request().Context(), usr, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, themes)
}
