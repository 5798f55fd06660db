package ui

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// LinkProps configures ActiveLink.
type LinkProps struct {
	Href string
	// ActiveClassName is applied when the current path equals Href.
	ActiveClassName string
	// Class is always applied.
	Class string
}

// ActiveLink renders an anchor around children. The anchor gets
// ActiveClassName when the path in ctx matches Href exactly.
func ActiveLink(props LinkProps, children templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<a href="`)
		b.WriteString(templ.EscapeString(string(templ.URL(props.Href))))
		b.WriteByte('"')

		if class := linkClass(props, CurrentPath(ctx)); class != "" {
			b.WriteString(` class="`)
			b.WriteString(templ.EscapeString(class))
			b.WriteByte('"')
		}
		b.WriteByte('>')

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		if children != nil {
			if err := children.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</a>")
		return err
	})
}

// IsActive reports whether a link to href should be highlighted for currentPath.
func IsActive(href, currentPath string) bool {
	return href != "" && href == currentPath
}

func linkClass(props LinkProps, currentPath string) string {
	classes := make([]string, 0, 2)
	if props.Class != "" {
		classes = append(classes, props.Class)
	}
	if props.ActiveClassName != "" && IsActive(props.Href, currentPath) {
		classes = append(classes, props.ActiveClassName)
	}
	return strings.Join(classes, " ")
}
