package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if in.Body != nil {
		f.body, _ = io.ReadAll(in.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Success(t *testing.T) {
	f := &fakeS3{}
	u := NewS3UploaderWithClient(f, "vehicle-photos", "http://minio:9000/vehicle-photos/")

	var done, total int64
	url, err := u.Upload(context.Background(), Object{
		Key:      "registrations/X/front-aa.jpg",
		Data:     []byte("hello"),
		Progress: func(d, tt int64) { done, total = d, tt },
	})
	require.NoError(t, err)
	assert.Equal(t, "http://minio:9000/vehicle-photos/registrations/X/front-aa.jpg", url)
	assert.Equal(t, "vehicle-photos", *f.in.Bucket)
	assert.Equal(t, "registrations/X/front-aa.jpg", *f.in.Key)
	assert.Equal(t, int64(5), *f.in.ContentLength)
	assert.Equal(t, []byte("hello"), f.body)
	assert.Equal(t, int64(5), done)
	assert.Equal(t, int64(5), total)
}

func TestS3Uploader_APIErrorIsRejected(t *testing.T) {
	apiErr := &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied."}
	wrapped := &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: http.StatusForbidden}},
			Err:      apiErr,
		},
	}
	u := NewS3UploaderWithClient(&fakeS3{err: wrapped}, "b", "http://x")

	_, err := u.Upload(context.Background(), Object{Key: "k", Data: []byte("x")})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "AccessDenied", rej.Code)
	assert.Equal(t, "Access Denied.", rej.Message)
	assert.Equal(t, http.StatusForbidden, rej.StatusCode)
}

func TestS3Uploader_TransportErrorNotRejected(t *testing.T) {
	u := NewS3UploaderWithClient(&fakeS3{err: io.ErrUnexpectedEOF}, "b", "http://x")

	_, err := u.Upload(context.Background(), Object{Key: "k", Data: []byte("x")})
	require.Error(t, err)
	var rej *RejectedError
	assert.False(t, errors.As(err, &rej))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestPublicBaseURL(t *testing.T) {
	assert.Equal(t, "https://cdn", publicBaseURL(S3Config{PublicBaseURL: "https://cdn", Endpoint: "http://m"}))
	assert.Equal(t, "http://m:9000/b", publicBaseURL(S3Config{Endpoint: "http://m:9000/", Bucket: "b"}))
	assert.Equal(t, "https://b.s3.eu-west-1.amazonaws.com", publicBaseURL(S3Config{Bucket: "b", Region: "eu-west-1"}))
}

func TestS3Uploader_StorageErrorIsNotRetried(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		if requests.Add(1) <= 2 {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>`+
				`<Error><Code>SlowDown</Code><Message>Please reduce your request rate.</Message></Error>`)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	u, err := NewS3Uploader(context.Background(), S3Config{
		Endpoint:  srv.URL,
		Region:    "us-east-1",
		Bucket:    "vehicle-photos",
		AccessKey: "minio",
		SecretKey: "minio123",
	})
	require.NoError(t, err)

	_, err = u.Upload(context.Background(), Object{Key: "registrations/X/rear-bb.jpg", Data: []byte("rear")})
	var rej *RejectedError
	require.ErrorAs(t, err, &rej)
	assert.Equal(t, "SlowDown", rej.Code)
	assert.Equal(t, http.StatusServiceUnavailable, rej.StatusCode)
	assert.Equal(t, int32(1), requests.Load())
}
