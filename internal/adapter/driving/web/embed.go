package web

import "embed"

// StaticFS holds the embedded static assets.
//
//go:embed static/*
var StaticFS embed.FS

//go:embed templates/*.html
var templatesFS embed.FS

// helpMarkdown is the usage help shown on the form page.
//
//go:embed help.md
var helpMarkdown string
