package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Component is anything the app handlers can render.
type Component interface {
	Render(ctx context.Context, w io.Writer) error
}

var _ Component = templ.Component(nil)

// htmlWriter keeps the first write error so templates can emit markup
// without checking every call.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (hw *htmlWriter) raw(s string) {
	if hw.err != nil {
		return
	}
	_, hw.err = io.WriteString(hw.w, s)
}

func (hw *htmlWriter) text(s string) {
	hw.raw(templ.EscapeString(s))
}
