package filesvc

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"

	"github.com/rawadhq/rawad/core"
)

type s3Service struct {
	client        *s3.Client
	bucket        string
	region        string
	publicBaseURL string
}

var _ core.FileStorage = (*s3Service)(nil)

// NewS3Service connects to the bucket in core.Conf.Storage. A non-empty
// Endpoint targets an S3-compatible store (e.g. Cloudflare R2) instead of AWS.
func NewS3Service(ctx context.Context) (*s3Service, error) {
	conf := core.Conf.Storage

	awsConf, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(conf.AccessKey, conf.SecretKey, "")),
		config.WithRegion(conf.Region),
	)
	if err != nil {
		return nil, errors.Wrap(err, "loading storage config")
	}

	client := s3.NewFromConfig(awsConf, func(o *s3.Options) {
		if conf.Endpoint != "" {
			o.BaseEndpoint = aws.String(conf.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Service{
		client:        client,
		bucket:        conf.Bucket,
		region:        conf.Region,
		publicBaseURL: strings.TrimRight(conf.PublicBaseURL, "/"),
	}, nil
}

func (svc *s3Service) Upload(ctx context.Context, r io.Reader, size int64, contentType, key string, onProgress core.ProgressFunc) (string, error) {
	body := io.Reader(r)
	if onProgress != nil && size > 0 {
		body = &progressReader{r: r, total: size, onProgress: onProgress}
	}

	_, err := svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(svc.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", &core.UploadError{Err: errors.Wrap(err, "putting object"), Key: key}
	}

	if onProgress != nil {
		onProgress(100)
	}
	return svc.PublicURL(key), nil
}

func (svc *s3Service) PublicURL(key string) string {
	if svc.publicBaseURL != "" {
		return svc.publicBaseURL + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", svc.bucket, svc.region, key)
}

// progressReader reports the percentage of total consumed on every read.
type progressReader struct {
	r          io.Reader
	total      int64
	read       int64
	onProgress core.ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.read += int64(n)
		pct := int(pr.read * 100 / pr.total)
		if pct > 100 {
			pct = 100
		}
		pr.onProgress(pct)
	}
	return n, err
}
