package vault

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"gt-go/internal/config"
	"gt-go/internal/gt"
)

const s3Timeout = 2 * time.Minute

// s3API is the subset of the S3 client the vault uses.
type s3API interface {
	manager.UploadAPIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Vault stores snapshots as objects under
// <prefix>/<profileID>/<snapshotID>.snap in a single bucket.
type S3Vault struct {
	name     string
	bucket   string
	prefix   string
	client   s3API
	uploader *manager.Uploader
}

// NewS3Vault builds an S3 client from the vault config. Static
// credentials are used when both keys are set, otherwise the default AWS
// credential chain applies. A custom endpoint switches to path-style
// addressing for S3-compatible stores.
func NewS3Vault(ctx context.Context, cfg config.VaultConfig) (*S3Vault, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" && cfg.S3SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Vault(cfg.Name, cfg.S3Bucket, cfg.S3Prefix, client), nil
}

func newS3Vault(name, bucket, prefix string, client s3API) *S3Vault {
	return &S3Vault{
		name:     name,
		bucket:   bucket,
		prefix:   strings.Trim(prefix, "/"),
		client:   client,
		uploader: manager.NewUploader(client),
	}
}

// PutSnapshot uploads a snapshot blob, splitting it into a multipart upload
// when it is large.
func (v *S3Vault) PutSnapshot(profileID, snapshotID string, r io.Reader, size int64) error {
	key, err := v.objectKey(profileID, snapshotID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	counter := &countingReader{r: r}
	_, err = v.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(v.bucket),
		Key:         aws.String(key),
		Body:        counter,
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", key, err)
	}
	if counter.n != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counter.n)
	}
	return nil
}

// GetSnapshot downloads a snapshot blob and writes it to w.
func (v *S3Vault) GetSnapshot(profileID, snapshotID string, w io.Writer) error {
	key, err := v.objectKey(profileID, snapshotID)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	out, err := v.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(v.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("snapshot %q not found for profile: %s", snapshotID, profileID)
		}
		return fmt.Errorf("downloading %s: %w", key, err)
	}
	defer out.Body.Close()

	if _, err := io.Copy(w, out.Body); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// ListSnapshots returns the snapshot IDs stored for a profile in sorted order.
func (v *S3Vault) ListSnapshots(profileID string) ([]string, error) {
	if err := checkName(profileID); err != nil {
		return nil, fmt.Errorf("profile id: %w", err)
	}
	prefix := v.join(profileID) + "/"

	ctx, cancel := context.WithTimeout(context.Background(), s3Timeout)
	defer cancel()

	ids := []string{}
	pages := s3.NewListObjectsV2Paginator(v.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(v.bucket),
		Prefix: aws.String(prefix),
	})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", prefix, err)
		}
		for _, obj := range page.Contents {
			name := strings.TrimPrefix(aws.ToString(obj.Key), prefix)
			if strings.Contains(name, "/") || !strings.HasSuffix(name, snapshotExt) {
				continue
			}
			ids = append(ids, strings.TrimSuffix(name, snapshotExt))
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ValidateSetup checks that the bucket exists and is reachable with the
// configured credentials.
func (v *S3Vault) ValidateSetup() error {
	if v.bucket == "" {
		return fmt.Errorf("s3 vault %q has no bucket", v.name)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := v.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(v.bucket)}); err != nil {
		return fmt.Errorf("s3 bucket %s not accessible: %w", v.bucket, err)
	}
	return nil
}

func (v *S3Vault) objectKey(profileID, snapshotID string) (string, error) {
	if err := checkName(profileID); err != nil {
		return "", fmt.Errorf("profile id: %w", err)
	}
	if err := checkName(snapshotID); err != nil {
		return "", fmt.Errorf("snapshot id: %w", err)
	}
	return v.join(profileID, snapshotID+snapshotExt), nil
}

func (v *S3Vault) join(parts ...string) string {
	if v.prefix == "" {
		return path.Join(parts...)
	}
	return path.Join(append([]string{v.prefix}, parts...)...)
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Compile-time check that S3Vault implements gt.Vault interface
var _ gt.Vault = (*S3Vault)(nil)
