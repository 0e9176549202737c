package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/pogorelof/ai-exam/core/user"
)

type userApi struct {
	svc      *user.Service
	validate *validator.Validate
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *user.Service, validate *validator.Validate) {
	api := userApi{svc: svc, validate: validate}

	// un-authed endpoints
	ag := g.Group("/auth")
	ag.POST("/register", api.register)
	ag.POST("/token", api.login)

	// authed endpoints
	g.GET("/me", api.me, jwt)
	tg := g.Group("/ai/token", jwt)
	tg.GET("", api.retrieveAIToken)
	tg.POST("", api.saveAIToken)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	if _, err := api.svc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating user")
	}
	return ctx.JSON(http.StatusCreated, MessageResponse{Message: "Success!"})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Username, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{AccessToken: token, TokenType: "bearer"})
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) retrieveAIToken(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	token, err := api.svc.GetAPIToken(ctx.Request().Context(), usr.ID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AITokenResponse{Token: token})
}

func (api *userApi) saveAIToken(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return err
	}
	var data AITokenRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AITokenRequest")
	}
	if err = data.Validate(api.validate); err != nil {
		return err
	}
	if err = api.svc.SetAPIToken(ctx.Request().Context(), usr, data.Token); err != nil {
		return errors.Wrap(err, "saving AI token")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Token has been saved"})
}
