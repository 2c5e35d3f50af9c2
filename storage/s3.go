package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"

	"github.com/surveyintake/envelope-ingest-backend/interfaces"
)

// S3Sink implements a record sink writing each appended record as a JSON
// object to Amazon S3 or a compatible service. Records land under
// <prefix>/records/ and error records under <prefix>/failures/, keyed by
// receive time plus a random suffix so concurrent appends never collide.
type S3Sink struct {
	client      *s3.S3
	bucketName  string
	prefix      string
	log         *slog.Logger
	locationURI string
}

// NewS3Sink creates an S3 record sink. Credentials are required for writing;
// when absent the client falls back to the default credential chain
// (environment, instance profile).
func NewS3Sink(bucketName, prefix, region, endpoint, accessKey, secretKey string, log *slog.Logger) (*S3Sink, error) {
	uri := fmt.Sprintf("s3://%s/%s?region=%s", bucketName, prefix, region)
	if endpoint != "" {
		uri += fmt.Sprintf("&endpoint=%s", endpoint)
	}

	cfg := aws.Config{
		Region: aws.String(region),
	}
	if endpoint != "" {
		cfg.Endpoint = aws.String(endpoint)
		// Compatible services (MinIO, localstack) require path-style addressing.
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	if accessKey != "" && secretKey != "" {
		cfg.Credentials = credentials.NewStaticCredentials(accessKey, secretKey, "")
	}

	sess, err := session.NewSession(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &S3Sink{
		client:      s3.New(sess),
		bucketName:  bucketName,
		prefix:      strings.TrimSuffix(prefix, "/"),
		log:         log,
		locationURI: uri,
	}, nil
}

// AppendRecord writes the record row as a JSON object under records/.
func (s *S3Sink) AppendRecord(ctx context.Context, rec interfaces.PlaintextRecord, receivedAt time.Time) error {
	row := newRecordRow(rec, receivedAt)
	return s.putJSON(ctx, "records", receivedAt, row)
}

// AppendFailure writes an error record as a JSON object under failures/.
func (s *S3Sink) AppendFailure(ctx context.Context, receivedAt time.Time, message string) error {
	return s.putJSON(ctx, "failures", receivedAt, map[string]string{
		"receivedAt": receivedAt.UTC().Format(time.RFC3339Nano),
		"error":      message,
	})
}

func (s *S3Sink) putJSON(ctx context.Context, kind string, receivedAt time.Time, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", kind, err)
	}

	key := s.objectKey(kind, receivedAt)
	_, err = s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("%w: %v", interfaces.ErrSinkUnavailable, err)
	}

	s.log.Debug("Stored object in S3 sink",
		slog.String("bucket", s.bucketName),
		slog.String("key", key),
		slog.Int("size", len(data)))
	return nil
}

func (s *S3Sink) objectKey(kind string, receivedAt time.Time) string {
	name := fmt.Sprintf("%s-%s.json",
		receivedAt.UTC().Format("20060102T150405.000000000Z"),
		uuid.NewString()[:8])
	return path.Join(s.prefix, kind, name)
}

// Available checks bucket accessibility with a HEAD request.
func (s *S3Sink) Available(ctx context.Context) bool {
	_, err := s.client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucketName),
	})
	if err != nil {
		s.log.Debug("S3 sink unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this sink.
func (s *S3Sink) Name() string {
	return fmt.Sprintf("s3-%s", s.bucketName)
}

// LocationURI returns the URI that identifies this sink.
func (s *S3Sink) LocationURI() string {
	return s.locationURI
}
