package artifact

import (
	"bytes"
	"context"
	"io"
	"mime"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/xerrors"
)

var _ Store = (*S3)(nil)

// objectAPI is the subset of the S3 client used by the store.
type objectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3 stores files as objects below a key prefix of a bucket. Each file is
// buffered in memory and uploaded when its writer is closed.
type S3 struct {
	client objectAPI
	bucket string
	prefix string
}

// NewS3 builds a store for an s3://bucket/prefix URI. The client is
// configured from the default AWS config chain; AWS_REGION, AWS_ENDPOINT,
// AWS_ACCESS_KEY and AWS_SECRET_KEY override it when set, which allows
// S3-compatible object stores.
func NewS3(ctx context.Context, uri string) (*S3, error) {
	bucket, prefix, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	var opts []func(*config.LoadOptions) error
	if region := os.Getenv("AWS_REGION"); region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	endpoint := os.Getenv("AWS_ENDPOINT")
	if endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	if accessKey, secretKey := os.Getenv("AWS_ACCESS_KEY"), os.Getenv("AWS_SECRET_KEY"); accessKey != "" && secretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, xerrors.Errorf("load AWS config: %w", err)
	}
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = endpoint != ""
	})
	return newS3WithClient(client, bucket, prefix), nil
}

func newS3WithClient(client objectAPI, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) Create(ctx context.Context, name string) (io.WriteCloser, error) {
	return &s3Object{ctx: ctx, store: s, key: path.Join(s.prefix, name)}, nil
}

// Remove deletes the object for name. S3 does not report missing keys.
func (s *S3) Remove(ctx context.Context, name string) error {
	key := path.Join(s.prefix, name)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return xerrors.Errorf("delete s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3) Sub(name string) Store {
	return &S3{client: s.client, bucket: s.bucket, prefix: path.Join(s.prefix, name)}
}

func (s *S3) String() string {
	return "s3://" + path.Join(s.bucket, s.prefix)
}

type s3Object struct {
	ctx   context.Context
	store *S3
	key   string
	buf   bytes.Buffer
}

func (o *s3Object) Write(p []byte) (int, error) { return o.buf.Write(p) }

func (o *s3Object) Close() error {
	contentType := mime.TypeByExtension(path.Ext(o.key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := o.store.client.PutObject(o.ctx, &s3.PutObjectInput{
		Bucket:      aws.String(o.store.bucket),
		Key:         aws.String(o.key),
		Body:        bytes.NewReader(o.buf.Bytes()),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return xerrors.Errorf("upload s3://%s/%s: %w", o.store.bucket, o.key, err)
	}
	return nil
}

func parseS3URI(uri string) (bucket, prefix string, err error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", "", xerrors.Errorf("parse artifact location: %w", err)
	}
	if u.Scheme != "s3" || u.Host == "" {
		return "", "", xerrors.Errorf("invalid S3 location %q: expected s3://bucket/prefix", uri)
	}
	return u.Host, strings.Trim(u.Path, "/"), nil
}
