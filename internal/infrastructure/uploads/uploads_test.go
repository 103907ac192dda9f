package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecureFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"payslip.pdf", "payslip.pdf"},
		{"My Payslip March.pdf", "My_Payslip_March.pdf"},
		{"../../etc/passwd", "etc_passwd"},
		{`C:\Users\me\slip.png`, "C_Users_me_slip.png"},
		{"résumé.pdf", "resume.pdf"},
		{"...", ""},
		{"₹₹₹", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SecureFilename(tt.in), tt.in)
	}
}

func TestObjectName(t *testing.T) {
	now := time.Date(2024, time.March, 2, 9, 5, 7, 0, time.UTC)

	name := ObjectName(now, "march slip.pdf")
	assert.Regexp(t, regexp.MustCompile(`^20240302090507_[0-9a-f]{8}_march_slip\.pdf$`), name)

	assert.True(t, strings.HasSuffix(ObjectName(now, "???"), "_payslip"))
	assert.NotEqual(t, ObjectName(now, "a.pdf"), ObjectName(now, "a.pdf"))
}

func TestLocalStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewLocalStore(filepath.Join(dir, "uploads"), func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)

	key, err := store.Save(ctx, "slip.pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(key, "20240101000000_"))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(body))

	require.NoError(t, store.Remove(ctx, key))
	_, err = os.Stat(filepath.Join(dir, "uploads", key))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, store.Remove(ctx, key), "removing twice is fine")
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir(), nil)
	require.NoError(t, err)

	for _, key := range []string{"", "../secret", "a/b.pdf", ".hidden"} {
		_, err := store.Open(ctx, key)
		assert.ErrorIs(t, err, ErrInvalidKey, key)
		assert.ErrorIs(t, store.Remove(ctx, key), ErrInvalidKey, key)
	}
}
