package web

import "html/template"

// pageTemplates holds every embedded page, parsed once at startup. Pages are
// executed by base filename; shared fragments live in layout.html.
var pageTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))
