package components

import (
	"context"
	"io"
	"strconv"

	"github.com/a-h/templ"
)

const (
	Title       = "Flight Price Prediction"
	Description = "Use the form below to predict flight ticket prices"
	// FormPath is served as its own document; the shell only points at it.
	FormPath   = "/index.html"
	FrameTitle = "Flight Price Prediction Form"
	frameStyle = "width: 100%; height: 100vh; border: none"
)

// PageShell renders the header and the frame hosting the prediction form.
// It takes no input and reads nothing from ctx, so every render is identical.
func PageShell() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div class="App"><header class="App-header"><h1>`)
		hw.text(Title)
		hw.raw(`</h1><p>`)
		hw.text(Description)
		hw.raw(`</p></header><main><iframe src="`)
		hw.text(FormPath)
		hw.raw(`" style="`)
		hw.text(frameStyle)
		hw.raw(`" title="`)
		hw.text(FrameTitle)
		hw.raw(`"></iframe></main></div>`)
		return hw.err
	})
}

// Document wraps body in a full HTML page.
func Document(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>`)
		hw.text(title)
		hw.raw(`</title><link rel="stylesheet" href="/static/app.css"></head><body>`)
		if hw.err != nil {
			return hw.err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		hw.raw(`</body></html>`)
		return hw.err
	})
}

func ErrorPage(code int, title string, msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		hw := &htmlWriter{w: w}
		hw.raw(`<div class="App"><header class="App-header"><p class="error-code">`)
		hw.text(strconv.Itoa(code))
		hw.raw(`</p><h1>`)
		hw.text(title)
		hw.raw(`</h1><p>`)
		hw.text(msg)
		hw.raw(`</p><a href="/">Back to the prediction form</a></header></div>`)
		return hw.err
	})
}
