package cloudwatch

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
)

// API is the slice of the CloudWatch API this package consumes.
type API interface {
	GetMetricStatistics(ctx context.Context, params *cloudwatch.GetMetricStatisticsInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.GetMetricStatisticsOutput, error)
	PutMetricAlarm(ctx context.Context, params *cloudwatch.PutMetricAlarmInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricAlarmOutput, error)
}

var _ API = (*cloudwatch.Client)(nil)

var ErrAWSConfigLoad = fmt.Errorf("failed to load AWS configuration")

// NewClient builds a CloudWatch client from the ambient AWS credential chain,
// pinned to 'region'.
func NewClient(ctx context.Context, region string) (*cloudwatch.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrAWSConfigLoad, err)
	}
	return cloudwatch.NewFromConfig(cfg), nil
}
