package app

import (
	"net/http"

	"github.com/felixbrock/flightprice/internal/components"
)

type errCtx struct {
	Code  int
	Title string
	Msg   string
}

func get404() errCtx {
	return errCtx{
		Code:  http.StatusNotFound,
		Title: "Page not found",
		Msg:   "Sorry, we couldn't find the page you were looking for.",
	}
}

func get405() errCtx {
	return errCtx{
		Code:  http.StatusMethodNotAllowed,
		Title: "Method not allowed",
		Msg:   "Sorry, this page can't be reached that way.",
	}
}

func get500() errCtx {
	return errCtx{
		Code:  http.StatusInternalServerError,
		Title: "Internal server error",
		Msg:   "Sorry, there was an internal server error.",
	}
}

func (e errCtx) page(err error) *ComponentResponse {
	return &ComponentResponse{
		Error:     err,
		Message:   e.Title,
		Code:      e.Code,
		Component: components.Document(e.Title, components.ErrorPage(e.Code, e.Title, e.Msg)),
	}
}
