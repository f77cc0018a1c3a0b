package ui

import (
	"net/http"
	"strings"

	. "maragu.dev/gomponents"
	. "maragu.dev/gomponents/html"

	"github.com/platinummonkey/cadmdt/pkg/navigation"
)

// PageData is everything the shell needs around a page body
type PageData struct {
	Title      string
	ServerName string
	ServerSlug string
	UserName   string
	// ActivePath is the request path, used to highlight the current link
	ActivePath string
	// Groups is the already-filtered sidebar
	Groups []navigation.Group
}

// Page renders the server layout: sidebar, topbar and body
func Page(data PageData, body ...Node) Node {
	userName := data.UserName
	if userName == "" {
		userName = "unknown"
	}

	return Doctype(HTML(
		Lang("en"),
		head(data.Title+" | "+data.ServerName),
		Body(
			Main(Class("app-shell"),
				Aside(
					Class("app-sidebar"),
					Div(
						Class("brand"),
						Strong(Text(data.ServerName)),
						P(Class("color-fg-muted text-small mb-0"), Text("CAD / MDT")),
					),
					Sidebar(data.Groups, data.ActivePath),
				),
				Section(
					Class("app-main"),
					Div(
						Class("topbar"),
						H1(Class("page-title"), Text(data.Title)),
						P(Class("color-fg-muted text-small mb-2"), Text("Signed in as "+userName)),
					),
					Div(Class("content"), Group(body)),
				),
			),
			Script(Raw("if (window.lucide) { window.lucide.createIcons(); }")),
		),
	))
}

func head(title string) Node {
	return Head(
		Meta(Charset("utf-8")),
		Meta(Name("viewport"), Content("width=device-width, initial-scale=1")),
		TitleEl(Text(title)),
		Link(Rel("icon"), Href("data:,")),
		Link(Rel("stylesheet"), Href("/static/app.css")),
		Script(Src("https://unpkg.com/lucide@latest/dist/umd/lucide.min.js")),
	)
}

// Sidebar renders navigation groups. Links are expected to carry resolved hrefs.
func Sidebar(groups []navigation.Group, activePath string) Node {
	sections := make([]Node, 0, len(groups))
	for _, group := range groups {
		links := make([]Node, 0, len(group.Links))
		for _, link := range group.Links {
			className := "app-nav-link Link--secondary d-flex flex-items-center"
			if isActive(link.Href, activePath) {
				className += " active"
			}
			links = append(links, A(
				Href(link.Href),
				Class(className),
				If(link.Icon != "",
					I(Class("nav-icon"), Attr("data-lucide", link.Icon), Attr("aria-hidden", "true")),
				),
				Span(Text(link.Label)),
			))
		}
		sections = append(sections, Div(
			Class("app-nav-group"),
			H2(Class("app-nav-heading text-small color-fg-muted"), Text(group.Name)),
			Group(links),
		))
	}
	return Nav(Class("app-nav"), Group(sections))
}

func isActive(href, path string) bool {
	path = strings.TrimSuffix(path, "/")
	return path == href || strings.HasPrefix(path, href+"/")
}

// Unauthorized is the in-page panel shown when the layout guard denies a path
func Unauthorized(path string) Node {
	return Div(
		Class("Box unauthorized-panel"),
		Attr("role", "alert"),
		Attr("data-status", "401"),
		Div(Class("Box-header"), H2(Class("Box-title"), Text("Unauthorized"))),
		Div(
			Class("Box-body"),
			P(Text("You do not have permission to view this page.")),
			P(Class("color-fg-muted text-small"), Code(Text(path))),
			P(Class("color-fg-muted text-small"), Text("Ask a server administrator to grant your role access.")),
		),
	)
}

// PagePlaceholder stands in for the CAD page body, which is rendered by the page's own component
func PagePlaceholder(title, path string) Node {
	return Div(
		Class("Box"),
		Attr("data-page", path),
		Div(Class("Box-body"), P(Text(title))),
	)
}

// ErrorPage is a bare page without the server shell
func ErrorPage(title, message string) Node {
	return Doctype(HTML(
		Lang("en"),
		head(title),
		Body(
			Main(
				Class("layout"),
				H1(Class("page-title"), Text(title)),
				P(Text(message)),
			),
		),
	))
}

// RenderHTML writes node with the given status
func RenderHTML(w http.ResponseWriter, status int, node Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = node.Render(w)
}
