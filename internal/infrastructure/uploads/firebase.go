package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"time"

	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// FirebaseStore keeps uploads in the project's Firebase Storage bucket under
// a fixed prefix.
type FirebaseStore struct {
	bucket *storage.BucketHandle
	prefix string
	now    func() time.Time
}

// NewFirebaseStore initializes a Firebase app for bucket. An empty bucket
// name means the project's default bucket as configured on the app.
func NewFirebaseStore(ctx context.Context, credentialsFile, bucket string, now func() time.Time) (*FirebaseStore, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Storage(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase storage client: %w", err)
	}

	handle, err := client.DefaultBucket()
	if err != nil {
		return nil, fmt.Errorf("failed to open storage bucket: %w", err)
	}

	if now == nil {
		now = time.Now
	}
	return &FirebaseStore{bucket: handle, prefix: "payslips/", now: now}, nil
}

func (s *FirebaseStore) object(key string) *storage.ObjectHandle {
	return s.bucket.Object(s.prefix + key)
}

func (s *FirebaseStore) Save(ctx context.Context, filename string, r io.Reader) (string, error) {
	key := ObjectName(s.now(), filename)

	w := s.object(key).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	w.ContentType = mime.TypeByExtension(path.Ext(key))
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to upload payslip: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize payslip upload: %w", err)
	}
	return key, nil
}

func (s *FirebaseStore) Remove(ctx context.Context, key string) error {
	if !validKey(key) {
		return ErrInvalidKey
	}
	err := s.object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("failed to delete payslip: %w", err)
	}
	return nil
}

func (s *FirebaseStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrInvalidKey
	}
	rc, err := s.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payslip: %w", err)
	}
	return rc, nil
}
