package s3

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/chainguard-dev/clog"
)

var (
	ErrBucketCreate  = fmt.Errorf("failed to create bucket")
	ErrWebsiteConfig = fmt.Errorf("failed to configure bucket website")
	ErrBucketPolicy  = fmt.Errorf("failed to apply bucket policy")
	ErrObjectUpload  = fmt.Errorf("failed to upload object")
)

// Provisioner creates buckets and publishes static site content into them.
type Provisioner struct {
	api    API
	region string
}

func NewProvisioner(api API, region string) *Provisioner {
	return &Provisioner{api: api, region: region}
}

// Create creates a bucket under a collision-suffixed name derived from
// 'base' and returns the chosen name. us-east-1 must not send a location
// constraint; every other region must.
func (p *Provisioner) Create(ctx context.Context, base string) (string, error) {
	name := UniqueBucketName(base)
	input := &s3.CreateBucketInput{
		Bucket: aws.String(name),
	}
	if p.region != "" && p.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(p.region),
		}
	}
	if _, err := p.api.CreateBucket(ctx, input); err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "BucketAlreadyExists" {
			// The random suffix collided with a bucket in another account.
			return "", fmt.Errorf("%w: name %q already taken globally: %w", ErrBucketCreate, name, err)
		}
		return "", fmt.Errorf("%w: %q: %w", ErrBucketCreate, name, err)
	}
	clog.FromContext(ctx).Info("created bucket", "name", name)
	return name, nil
}

// EnableWebsite configures the bucket as a static website and opens it to
// public reads: account-level public access blocks are lifted for the bucket,
// then a public-read policy is applied.
func (p *Provisioner) EnableWebsite(ctx context.Context, bucket string) error {
	log := clog.FromContext(ctx).With("bucket", bucket)

	_, err := p.api.PutBucketWebsite(ctx, &s3.PutBucketWebsiteInput{
		Bucket: aws.String(bucket),
		WebsiteConfiguration: &types.WebsiteConfiguration{
			IndexDocument: &types.IndexDocument{Suffix: aws.String("index.html")},
			ErrorDocument: &types.ErrorDocument{Key: aws.String("error.html")},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWebsiteConfig, err)
	}
	log.Info("configured bucket website")

	_, err = p.api.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBucketPolicy, err)
	}

	_, err = p.api.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(publicReadPolicy(bucket)),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBucketPolicy, err)
	}
	log.Info("applied public-read policy")
	return nil
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{
  "Version": "2012-10-17",
  "Statement": [{
    "Sid": "PublicReadGetObject",
    "Effect": "Allow",
    "Principal": "*",
    "Action": "s3:GetObject",
    "Resource": "arn:aws:s3:::%s/*"
  }]
}`, bucket)
}

// UploadFile puts a single local file into the bucket under 'key', with a
// content type inferred from the extension.
func (p *Provisioner) UploadFile(ctx context.Context, bucket, key, localPath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrObjectUpload, err)
	}
	defer file.Close()

	input := &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}
	if contentType := mime.TypeByExtension(path.Ext(key)); contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := p.api.PutObject(ctx, input); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrObjectUpload, key, err)
	}
	clog.FromContext(ctx).Debug("uploaded object", "bucket", bucket, "key", key)
	return nil
}

// PublishDir walks 'dir' and uploads every regular file, keyed by its
// path relative to 'dir'.
func (p *Provisioner) PublishDir(ctx context.Context, bucket, dir string) (int, error) {
	uploaded := 0
	err := filepath.WalkDir(dir, func(localPath string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, localPath)
		if err != nil {
			return err
		}
		if err := p.UploadFile(ctx, bucket, filepath.ToSlash(rel), localPath); err != nil {
			return err
		}
		uploaded++
		return nil
	})
	if err != nil {
		return uploaded, fmt.Errorf("publishing %q: %w", dir, err)
	}
	clog.FromContext(ctx).Info("published site", "bucket", bucket, "objects", uploaded)
	return uploaded, nil
}

// WebsiteURL is the regional S3 static-site endpoint for the bucket.
func (p *Provisioner) WebsiteURL(bucket string) string {
	region := p.region
	if region == "" {
		region = "us-east-1"
	}
	return fmt.Sprintf("http://%s.s3-website-%s.amazonaws.com", bucket, region)
}
