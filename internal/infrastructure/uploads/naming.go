// Package uploads stores payslip files on local disk or in Firebase Storage.
package uploads

import (
	"context"
	"errors"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// ErrNotFound is returned by Open for unknown keys.
var ErrNotFound = errors.New("upload not found")

// ErrInvalidKey is returned for keys that are not plain file names.
var ErrInvalidKey = errors.New("invalid upload key")

// Opener serves stored files back by key.
type Opener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// SecureFilename reduces an uploaded name to ASCII letters, digits, dots,
// dashes and underscores so it is safe as a single path element.
func SecureFilename(name string) string {
	name = norm.NFKD.String(name)
	name = strings.Map(func(r rune) rune {
		if r > 127 {
			return -1
		}
		if r == '/' || r == '\\' {
			return ' '
		}
		return r
	}, name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// ObjectName derives the stored key for an upload. The timestamp keeps keys
// sortable and the uuid fragment keeps same-second uploads apart.
func ObjectName(now time.Time, original string) string {
	name := SecureFilename(original)
	if name == "" {
		name = "payslip"
	}
	return now.Format("20060102150405") + "_" + uuid.NewString()[:8] + "_" + name
}

// validKey accepts only single path elements ObjectName could have produced.
func validKey(key string) bool {
	return key != "" && key == SecureFilename(key)
}
