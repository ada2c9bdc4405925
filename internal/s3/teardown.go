package s3

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBucketList   = fmt.Errorf("failed to list buckets")
	ErrBucketEmpty  = fmt.Errorf("failed to empty bucket")
	ErrBucketDelete = fmt.Errorf("failed to delete bucket")
)

// deleteConcurrency bounds the object-delete fan-out per bucket.
const deleteConcurrency = 8

// Bucket is the subset of bucket state the CLI reports.
type Bucket struct {
	Name      string
	CreatedAt time.Time
}

// List returns all buckets owned by the account.
func List(ctx context.Context, api API) ([]Bucket, error) {
	result, err := api.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBucketList, err)
	}
	buckets := make([]Bucket, 0, len(result.Buckets))
	for _, b := range result.Buckets {
		listed := Bucket{Name: aws.ToString(b.Name)}
		if b.CreationDate != nil {
			listed.CreatedAt = *b.CreationDate
		}
		buckets = append(buckets, listed)
	}
	return buckets, nil
}

// Empty deletes every object in the bucket, fanning the deletes out across a
// bounded worker group. Paginates until the listing is exhausted.
func Empty(ctx context.Context, api API, bucket string) error {
	log := clog.FromContext(ctx).With("bucket", bucket)

	var continuation *string
	deleted := 0
	for {
		page, err := api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			ContinuationToken: continuation,
		})
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrBucketEmpty, bucket, err)
		}

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(deleteConcurrency)
		for _, object := range page.Contents {
			key := aws.ToString(object.Key)
			eg.Go(func() error {
				_, err := api.DeleteObject(egCtx, &s3.DeleteObjectInput{
					Bucket: aws.String(bucket),
					Key:    aws.String(key),
				})
				return err
			})
		}
		if err := eg.Wait(); err != nil {
			return fmt.Errorf("%w: %q: %w", ErrBucketEmpty, bucket, err)
		}
		deleted += len(page.Contents)

		if !aws.ToBool(page.IsTruncated) {
			break
		}
		continuation = page.NextContinuationToken
	}
	log.Info("emptied bucket", "objects", deleted)
	return nil
}

// Delete empties then deletes the bucket.
func Delete(ctx context.Context, api API, bucket string) error {
	if err := Empty(ctx, api, bucket); err != nil {
		return err
	}
	if _, err := api.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrBucketDelete, bucket, err)
	}
	clog.FromContext(ctx).Info("deleted bucket", "name", bucket)
	return nil
}

// DeleteAll deletes every bucket in the account, continuing past individual
// failures and reporting them joined at the end.
func DeleteAll(ctx context.Context, api API) ([]string, error) {
	log := clog.FromContext(ctx)
	buckets, err := List(ctx, api)
	if err != nil {
		return nil, err
	}

	var deleted []string
	var errs error
	for _, bucket := range buckets {
		if err := Delete(ctx, api, bucket.Name); err != nil {
			log.Error("failed to delete bucket, continuing", "name", bucket.Name, "error", err)
			errs = errors.Join(errs, err)
			continue
		}
		deleted = append(deleted, bucket.Name)
	}
	return deleted, errs
}
