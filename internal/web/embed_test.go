package web

import (
	"io/fs"
	"strings"
	"testing"
)

func TestPagesEmbedded(t *testing.T) {
	for _, page := range []string{EntryPage, RecordsPage, DashboardPage} {
		data, err := fs.ReadFile(FS, page)
		if err != nil {
			t.Fatalf("%s: %v", page, err)
		}
		if !strings.Contains(strings.ToLower(string(data)), "<!doctype html>") {
			t.Errorf("%s does not look like an HTML page", page)
		}
	}
}
