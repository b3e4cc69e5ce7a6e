package artifacts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lobstat/pkg/contracts/domain"
)

// S3Config configures an S3-compatible bucket.
type S3Config struct {
	Endpoint       string
	Region         string
	Bucket         string
	Prefix         string
	AccessKey      string
	SecretKey      string
	ForcePathStyle bool
}

// S3Store keeps artifacts in a bucket under Prefix, with the same layout
// as FileStore.
type S3Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	downloader *manager.Downloader
	bucket     string
	prefix   string
}

// NewS3Store connects to the bucket described by cfg. Static credentials
// are used when AccessKey is set; otherwise the default AWS chain applies.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 store: bucket name is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 store: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(normaliseEndpoint(cfg.Endpoint))
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return &S3Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		downloader: manager.NewDownloader(client),
		bucket:     cfg.Bucket,
		prefix:     strings.Trim(cfg.Prefix, "/"),
	}, nil
}

// ObjectKey returns the object key of the table of key.
func (s *S3Store) ObjectKey(key domain.ArtifactKey) string {
	return path.Join(s.prefix, key.Path()) + tableExt
}

// Health checks that the bucket is reachable.
func (s *S3Store) Health(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err != nil {
		return fmt.Errorf("s3 store: head bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put implements Store
func (s *S3Store) Put(ctx context.Context, a *Artifact) error {
	if err := checkKey(a.Meta.Key); err != nil {
		return err
	}
	table, meta, err := encode(a)
	if err != nil {
		return fmt.Errorf("encode %s: %w", a.Meta.Key, err)
	}

	key := s.ObjectKey(a.Meta.Key)
	if _, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(table),
		ContentType: aws.String("text/csv"),
	}); err != nil {
		return fmt.Errorf("s3 store: upload %s: %w", key, err)
	}
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(sidecar(key)),
		Body:        bytes.NewReader(meta),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("s3 store: put %s: %w", sidecar(key), err)
	}
	return nil
}

// Get implements Store
func (s *S3Store) Get(ctx context.Context, key domain.ArtifactKey) (*Artifact, bool, error) {
	objKey := s.ObjectKey(key)

	meta, found, err := s.read(ctx, sidecar(objKey))
	if err != nil || !found {
		return nil, false, err
	}
	table, found, err := s.download(ctx, objKey)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, fmt.Errorf("s3 store: %s has metadata but no table: %w", objKey, ErrCorrupt)
	}

	a, err := decode(table, meta)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", objKey, err)
	}
	return a, true, nil
}

// Close implements Store
func (s *S3Store) Close() error {
	return nil
}

// download fetches a table with the concurrent ranged downloader.
func (s *S3Store) download(ctx context.Context, key string) ([]byte, bool, error) {
	buf := manager.NewWriteAtBuffer(nil)
	if _, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 store: download %s: %w", key, err)
	}
	return buf.Bytes(), true, nil
}

func (s *S3Store) read(ctx context.Context, key string) ([]byte, bool, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("s3 store: get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("s3 store: read %s: %w", key, err)
	}
	return data, true, nil
}

func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}
	var httpErr interface{ HTTPStatusCode() int }
	return errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == 404
}

// normaliseEndpoint defaults a bare "host[:port]" endpoint to https.
func normaliseEndpoint(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.Scheme != "" && u.Host != "" {
		return endpoint
	}
	return "https://" + endpoint
}
