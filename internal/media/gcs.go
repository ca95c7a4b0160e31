package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tair/storefront/pkg/logger"
)

const publicHost = "https://storage.googleapis.com/"

var tracer = otel.Tracer("media-store")

// GCSStore keeps product images in a Google Cloud Storage bucket
type GCSStore struct {
	client *storage.Client
	bucket string
}

// NewGCSStore stores objects in bucket
func NewGCSStore(client *storage.Client, bucket string) *GCSStore {
	return &GCSStore{client: client, bucket: bucket}
}

func (s *GCSStore) Validate(f File) Validation {
	return Validate(f)
}

func (s *GCSStore) Store(ctx context.Context, f File, folder string) (Stored, error) {
	if v := Validate(f); !v.Valid {
		return Stored{}, errors.New(v.Error)
	}

	key := path.Join(folder, uuid.NewString()+f.Extension())

	ctx, span := tracer.Start(ctx, "media.Store",
		trace.WithAttributes(
			attribute.String("media.bucket", s.bucket),
			attribute.String("media.key", key),
			attribute.Int64("media.size", int64(len(f.Data))),
		),
	)
	defer span.End()

	w := s.client.Bucket(s.bucket).Object(key).NewWriter(ctx)
	w.ContentType = f.Type()
	w.CacheControl = "public, max-age=31536000"

	if _, err := w.Write(f.Data); err != nil {
		_ = w.Close()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stored{}, fmt.Errorf("failed to upload image: %w", err)
	}
	if err := w.Close(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Stored{}, fmt.Errorf("failed to finalize image upload: %w", err)
	}

	logger.Info(ctx).
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("Image uploaded")

	return Stored{URL: s.publicURL(key), Key: key}, nil
}

func (s *GCSStore) Delete(ctx context.Context, urlOrKey string) error {
	key, err := s.keyFor(urlOrKey)
	if err != nil {
		return err
	}

	ctx, span := tracer.Start(ctx, "media.Delete",
		trace.WithAttributes(attribute.String("media.key", key)),
	)
	defer span.End()

	err = s.client.Bucket(s.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}

func (s *GCSStore) publicURL(key string) string {
	return publicHost + s.bucket + "/" + key
}

// keyFor accepts an object key or a public URL of this bucket
func (s *GCSStore) keyFor(urlOrKey string) (string, error) {
	v := strings.TrimSpace(urlOrKey)
	if v == "" {
		return "", ErrForeignObject
	}
	if !strings.Contains(v, "://") {
		return strings.TrimPrefix(v, "/"), nil
	}

	prefix := publicHost + s.bucket + "/"
	if !strings.HasPrefix(v, prefix) {
		return "", ErrForeignObject
	}
	key := strings.TrimPrefix(v, prefix)
	if i := strings.IndexAny(key, "?#"); i >= 0 {
		key = key[:i]
	}
	if key == "" {
		return "", ErrForeignObject
	}
	return key, nil
}
