// Package web embeds the HTML pages served by cmd/api.
package web

import (
	"embed"
	"io/fs"
)

// Page names within FS.
const (
	EntryPage     = "app.html"
	RecordsPage   = "records.html"
	DashboardPage = "dashboard.html"
)

//go:embed *.html
var files embed.FS

// FS holds every page. The pages load their data from the JSON API, so they
// are served as-is rather than templated.
var FS fs.FS = files
