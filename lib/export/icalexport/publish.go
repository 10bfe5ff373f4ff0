package icalexport

import (
	"context"
	"log/slog"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type PublishOptions struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type Publisher struct {
	client *minio.Client
	bucket string
}

func NewPublisher(opts PublishOptions) (*Publisher, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, bucket: opts.Bucket}, nil
}

// Publish uploads a rendered calendar under the given object name.
func (p *Publisher) Publish(ctx context.Context, objectName, calendar string) error {
	reader := strings.NewReader(calendar)
	_, err := p.client.PutObject(
		ctx, p.bucket, objectName,
		reader, int64(reader.Len()),
		minio.PutObjectOptions{ContentType: "text/calendar"},
	)
	if err != nil {
		return err
	}
	slog.InfoContext(ctx, "published calendar", "bucket", p.bucket, "object", objectName)
	return nil
}
