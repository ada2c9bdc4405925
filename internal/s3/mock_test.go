package s3

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const (
	opCreateBucket         = "CreateBucket"
	opPutBucketWebsite     = "PutBucketWebsite"
	opPutPublicAccessBlock = "PutPublicAccessBlock"
	opPutBucketPolicy      = "PutBucketPolicy"
	opPutObject            = "PutObject"
	opListBuckets          = "ListBuckets"
	opListObjectsV2        = "ListObjectsV2"
	opDeleteObject         = "DeleteObject"
	opDeleteBucket         = "DeleteBucket"
)

// mockAPI is a func-field mock of the S3 API surface this package consumes.
type mockAPI struct {
	createBucketFunc         func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	putBucketWebsiteFunc     func(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error)
	putPublicAccessBlockFunc func(ctx context.Context, params *s3.PutPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
	putBucketPolicyFunc      func(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	putObjectFunc            func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	listBucketsFunc          func(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error)
	listObjectsV2Func        func(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	deleteObjectFunc         func(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	deleteBucketFunc         func(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)

	// Track operations for testing. Object deletes fan out across goroutines,
	// so recording takes the lock.
	mu         sync.Mutex
	operations []string
}

var _ API = (*mockAPI)(nil)

func (m *mockAPI) record(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations = append(m.operations, op)
}

func (m *mockAPI) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.operations...)
}

func (m *mockAPI) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	m.record(opCreateBucket)
	if m.createBucketFunc != nil {
		return m.createBucketFunc(ctx, params, optFns...)
	}
	return &s3.CreateBucketOutput{}, nil
}

func (m *mockAPI) PutBucketWebsite(ctx context.Context, params *s3.PutBucketWebsiteInput, optFns ...func(*s3.Options)) (*s3.PutBucketWebsiteOutput, error) {
	m.record(opPutBucketWebsite)
	if m.putBucketWebsiteFunc != nil {
		return m.putBucketWebsiteFunc(ctx, params, optFns...)
	}
	return &s3.PutBucketWebsiteOutput{}, nil
}

func (m *mockAPI) PutPublicAccessBlock(ctx context.Context, params *s3.PutPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	m.record(opPutPublicAccessBlock)
	if m.putPublicAccessBlockFunc != nil {
		return m.putPublicAccessBlockFunc(ctx, params, optFns...)
	}
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (m *mockAPI) PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	m.record(opPutBucketPolicy)
	if m.putBucketPolicyFunc != nil {
		return m.putBucketPolicyFunc(ctx, params, optFns...)
	}
	return &s3.PutBucketPolicyOutput{}, nil
}

func (m *mockAPI) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.record(opPutObject)
	if m.putObjectFunc != nil {
		return m.putObjectFunc(ctx, params, optFns...)
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockAPI) ListBuckets(ctx context.Context, params *s3.ListBucketsInput, optFns ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	m.record(opListBuckets)
	if m.listBucketsFunc != nil {
		return m.listBucketsFunc(ctx, params, optFns...)
	}
	return &s3.ListBucketsOutput{}, nil
}

func (m *mockAPI) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.record(opListObjectsV2)
	if m.listObjectsV2Func != nil {
		return m.listObjectsV2Func(ctx, params, optFns...)
	}
	return &s3.ListObjectsV2Output{}, nil
}

func (m *mockAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.record(opDeleteObject)
	if m.deleteObjectFunc != nil {
		return m.deleteObjectFunc(ctx, params, optFns...)
	}
	return &s3.DeleteObjectOutput{}, nil
}

func (m *mockAPI) DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	m.record(opDeleteBucket)
	if m.deleteBucketFunc != nil {
		return m.deleteBucketFunc(ctx, params, optFns...)
	}
	return &s3.DeleteBucketOutput{}, nil
}
