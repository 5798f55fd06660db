package ui

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// NavItems are the header links, in display order.
var NavItems = []LinkProps{
	{Href: "/", ActiveClassName: "active"},
	{Href: "/posts", ActiveClassName: "active"},
}

var navLabels = map[string]string{
	"/":      "Home",
	"/posts": "Posts",
}

// Text renders s escaped.
func Text(s string) templ.Component {
	return templ.Raw(templ.EscapeString(s))
}

// Header renders the site navigation with the current page highlighted.
func Header() templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<header><nav>`); err != nil {
			return err
		}
		for _, item := range NavItems {
			if err := ActiveLink(item, Text(navLabels[item.Href])).Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</nav></header>`)
		return err
	})
}

// Page wraps body in a minimal HTML document with the header.
func Page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>`+
			templ.EscapeString(title)+`</title></head><body>`); err != nil {
			return err
		}
		if err := Header().Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<main>`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}
