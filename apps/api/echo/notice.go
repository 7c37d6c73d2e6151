package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core/notice"
)

type noticeApi struct {
	srv *server
}

func registerNoticeAPI(g *echo.Group, srv *server) {
	api := noticeApi{srv: srv}

	ng := g.Group("/notices")
	ng.GET("", api.list) // public
	ng.POST("", api.create, srv.adminAuth)
	ng.PUT("/:id", api.update, srv.adminAuth)
	ng.DELETE("/:id", api.remove, srv.adminAuth)
}

func (api *noticeApi) list(ctx echo.Context) error {
	notices, err := api.srv.noticeSvc.Query(ctx.Request().Context(), notice.Category(ctx.QueryParam("category")))
	if err != nil {
		return errors.Wrap(err, "querying notices")
	}
	return ctx.JSON(http.StatusOK, notices)
}

func (api *noticeApi) create(ctx echo.Context) error {
	var nn notice.NewNotice
	if err := ctx.Bind(&nn); err != nil {
		return err
	}
	if err := nn.Validate(api.srv.validate); err != nil {
		return err
	}

	n, err := api.srv.noticeSvc.Create(ctx.Request().Context(), nn)
	if err != nil {
		return errors.Wrap(err, "creating notice")
	}
	return ctx.JSON(http.StatusCreated, n)
}

func (api *noticeApi) update(ctx echo.Context) error {
	orig, err := api.srv.noticeSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return errors.Wrap(err, "getting notice")
	}

	var un notice.UpdateNotice
	if err = ctx.Bind(&un); err != nil {
		return err
	}
	if err = un.Validate(orig, api.srv.validate); err != nil {
		return err
	}

	n, err := api.srv.noticeSvc.Update(ctx.Request().Context(), orig.ID, un)
	if err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return errors.Wrap(err, "updating notice")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noticeApi) remove(ctx echo.Context) error {
	if err := api.srv.noticeSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == notice.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "Notice not found")
		}
		return errors.Wrap(err, "deleting notice")
	}
	return ctx.JSON(http.StatusOK, messageResponse{Message: "Notice deleted successfully"})
}
