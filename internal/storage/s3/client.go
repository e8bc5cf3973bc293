package s3

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"download-service/internal/config"
)

const (
	emptyAWSSessionToken              = ""
	contentDispositionAttachmentFmt   = "attachment; filename=%q"
	errFailedCreateAWSSessionFmt      = "failed to create AWS session: %w"
	errFailedPresignDownloadURLFmt    = "failed to generate presigned download URL: %w"
	errFailedHeadBucketFmt            = "failed to reach bucket %s: %w"
	errPresignExpiryMustBePositiveFmt = "presign expiry must be positive, got %s"
	errPresignBucketAndKeyRequiredFmt = "bucket and key are required"
)

// Client presigns object retrievals. Signing happens locally; no request is
// sent to S3 to produce a URL.
type Client struct {
	svc *s3.S3
	cfg config.AWSConfig
}

func NewClient(cfg *config.AWSConfig) (*Client, error) {
	awsCfg := &aws.Config{
		Region: aws.String(cfg.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			emptyAWSSessionToken,
		),
		S3ForcePathStyle: aws.Bool(cfg.ForcePathStyle),
	}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateAWSSessionFmt, err)
	}

	return &Client{
		svc: s3.New(sess),
		cfg: *cfg,
	}, nil
}

// PhysicalBucket maps a logical bucket (uploads, thumbnails, avatars) to the
// S3 bucket that stores it.
func (c *Client) PhysicalBucket(logical string) string {
	return c.cfg.PhysicalBucket(logical)
}

// PresignGetURL returns a URL that retrieves bucket/key until ttl elapses.
// bucket is the logical name. The response is served as an attachment named
// after the last key segment.
func (c *Client) PresignGetURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf(errPresignBucketAndKeyRequiredFmt)
	}
	if ttl <= 0 {
		return "", fmt.Errorf(errPresignExpiryMustBePositiveFmt, ttl)
	}

	req, _ := c.svc.GetObjectRequest(&s3.GetObjectInput{
		Bucket:                     aws.String(c.PhysicalBucket(bucket)),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(fmt.Sprintf(contentDispositionAttachmentFmt, path.Base(key))),
	})
	req.SetContext(ctx)

	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf(errFailedPresignDownloadURLFmt, err)
	}

	return url, nil
}

// Ping checks that the logical bucket is reachable with the configured
// credentials.
func (c *Client) Ping(ctx context.Context, bucket string) error {
	physical := c.PhysicalBucket(bucket)
	if _, err := c.svc.HeadBucketWithContext(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(physical),
	}); err != nil {
		return fmt.Errorf(errFailedHeadBucketFmt, physical, err)
	}
	return nil
}
