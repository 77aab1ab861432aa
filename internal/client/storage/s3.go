package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/dmitrijs2005/vehiclereg/internal/netx"
)

// S3API is the subset of *s3.Client used by S3Uploader.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config describes an S3-compatible bucket (AWS or MinIO).
type S3Config struct {
	Endpoint      string
	Region        string
	Bucket        string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
}

// S3Uploader writes photos to a bucket with PutObject.
type S3Uploader struct {
	client        S3API
	bucket        string
	publicBaseURL string
}

// NewS3Uploader builds an S3 client from cfg. Path-style addressing is used
// so MinIO endpoints work unchanged.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
		// a failed slot is reported to the caller, which decides on a retry
		o.Retryer = aws.NopRetryer{}
	})

	return NewS3UploaderWithClient(client, cfg.Bucket, publicBaseURL(cfg)), nil
}

// NewS3UploaderWithClient wires an existing client.
func NewS3UploaderWithClient(client S3API, bucket, publicBaseURL string) *S3Uploader {
	return &S3Uploader{client: client, bucket: bucket, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}
}

func publicBaseURL(cfg S3Config) string {
	if cfg.PublicBaseURL != "" {
		return cfg.PublicBaseURL
	}
	if cfg.Endpoint != "" {
		return strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
}

func (u *S3Uploader) Upload(ctx context.Context, obj Object) (string, error) {
	size := int64(len(obj.Data))
	body := netx.NewProgressReader(bytes.NewReader(obj.Data), size, obj.Progress)

	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(obj.Key),
		Body:          body,
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(http.DetectContentType(obj.Data)),
	})
	if err != nil {
		return "", mapS3Error(obj.Key, err)
	}
	return u.publicBaseURL + "/" + obj.Key, nil
}

// mapS3Error turns service-side refusals into *RejectedError and leaves
// transport failures wrapped as they are.
func mapS3Error(key string, err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	rejected := &RejectedError{Code: apiErr.ErrorCode(), Message: apiErr.ErrorMessage()}
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		rejected.StatusCode = respErr.HTTPStatusCode()
	}
	return rejected
}
