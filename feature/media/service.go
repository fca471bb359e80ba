package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"vehicle-sync/core/metrics"
	"vehicle-sync/core/storage"
	"vehicle-sync/core/syscara"
)

// ErrInvalidID is returned for ids that cannot be a media id.
var ErrInvalidID = errors.New("media: invalid id")

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// Upstream resolves and downloads media files.
type Upstream interface {
	LookupMedia(ctx context.Context, id string) (syscara.MediaInfo, error)
	OpenMedia(ctx context.Context, info syscara.MediaInfo) (*syscara.MediaStream, error)
}

// Object is a media file ready to be streamed. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	// Size is -1 when unknown.
	Size   int64
	Cached bool
}

// Service serves media files with an optional object storage cache.
type Service struct {
	upstream Upstream
	client   storage.Client
	bucket   string
	cfg      Config
	logger   *zap.Logger
}

// NewService creates a media service. client may be nil to disable caching.
func NewService(upstream Upstream, client storage.Client, bucket string, cfg Config, logger *zap.Logger) *Service {
	if cfg.CachePrefix == "" {
		cfg.CachePrefix = "media/"
	}
	return &Service{upstream: upstream, client: client, bucket: bucket, cfg: cfg, logger: logger}
}

// Info resolves a media id without downloading it.
func (s *Service) Info(ctx context.Context, id string) (syscara.MediaInfo, error) {
	if !validID.MatchString(id) {
		return syscara.MediaInfo{}, ErrInvalidID
	}
	return s.upstream.LookupMedia(ctx, id)
}

// Open returns the media file of id, from the cache when possible.
func (s *Service) Open(ctx context.Context, id string) (*Object, error) {
	if !validID.MatchString(id) {
		return nil, ErrInvalidID
	}

	if s.client == nil {
		metrics.MediaCache.WithLabelValues("bypass").Inc()
		return s.fetch(ctx, id)
	}

	key := s.cfg.CachePrefix + id
	if obj, ok := s.cached(ctx, key); ok {
		metrics.MediaCache.WithLabelValues("hit").Inc()
		return obj, nil
	}
	metrics.MediaCache.WithLabelValues("miss").Inc()

	obj, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if obj.Size > s.cfg.MaxCacheBytes && s.cfg.MaxCacheBytes > 0 {
		return obj, nil
	}
	return s.store(ctx, key, obj)
}

func (s *Service) cached(ctx context.Context, key string) (*Object, bool) {
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, false
	}
	body, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		s.logger.Warn("Cached media unreadable", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return &Object{Body: body, ContentType: contentType, Size: info.Size, Cached: true}, true
}

func (s *Service) fetch(ctx context.Context, id string) (*Object, error) {
	info, err := s.upstream.LookupMedia(ctx, id)
	if err != nil {
		return nil, err
	}
	stream, err := s.upstream.OpenMedia(ctx, info)
	if err != nil {
		return nil, err
	}
	return &Object{Body: stream.Body, ContentType: stream.ContentType, Size: stream.Size}, nil
}

// store buffers the upstream file, writes it to the bucket and serves the buffer.
// Files over MaxCacheBytes are passed through uncached.
func (s *Service) store(ctx context.Context, key string, obj *Object) (*Object, error) {
	limit := s.cfg.MaxCacheBytes
	var data []byte
	var err error
	if limit > 0 {
		data, err = io.ReadAll(io.LimitReader(obj.Body, limit+1))
	} else {
		data, err = io.ReadAll(obj.Body)
	}
	if err != nil {
		obj.Body.Close()
		return nil, fmt.Errorf("failed to download media: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return &Object{
			Body:        readCloser{Reader: io.MultiReader(bytes.NewReader(data), obj.Body), Closer: obj.Body},
			ContentType: obj.ContentType,
			Size:        obj.Size,
		}, nil
	}
	obj.Body.Close()

	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: obj.ContentType})
	if err != nil {
		s.logger.Warn("Failed to cache media", zap.String("key", key), zap.Error(err))
	}
	return &Object{Body: io.NopCloser(bytes.NewReader(data)), ContentType: obj.ContentType, Size: int64(len(data))}, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}
