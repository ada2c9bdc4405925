package cloudwatch

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/chainguard-dev/clog"
)

var ErrMetricsFetch = fmt.Errorf("failed to fetch CloudWatch metrics")

// instanceMetrics are the basic EC2 metrics summarized per instance.
var instanceMetrics = []string{
	"CPUUtilization",
	"DiskReadOps",
	"DiskWriteOps",
}

const (
	metricNamespace = "AWS/EC2"
	metricWindow    = time.Hour
	metricPeriod    = 300
)

// Datapoint is the latest averaged sample for one metric. HasData is false
// when CloudWatch returned no datapoints inside the window, which for a
// freshly launched or idle instance is normal, not an error.
type Datapoint struct {
	Metric    string
	Average   float64
	Unit      string
	Timestamp time.Time
	HasData   bool
}

// InstanceSummary fetches the trailing-hour average for each basic metric of
// 'instanceID' and reports the most recent datapoint per metric.
func InstanceSummary(ctx context.Context, api API, instanceID string) ([]Datapoint, error) {
	log := clog.FromContext(ctx).With("instance_id", instanceID)
	now := time.Now().UTC()

	summary := make([]Datapoint, 0, len(instanceMetrics))
	for _, metric := range instanceMetrics {
		result, err := api.GetMetricStatistics(ctx, &cloudwatch.GetMetricStatisticsInput{
			Namespace:  aws.String(metricNamespace),
			MetricName: aws.String(metric),
			Dimensions: []types.Dimension{{
				Name:  aws.String("InstanceId"),
				Value: aws.String(instanceID),
			}},
			StartTime:  aws.Time(now.Add(-metricWindow)),
			EndTime:    aws.Time(now),
			Period:     aws.Int32(metricPeriod),
			Statistics: []types.Statistic{types.StatisticAverage},
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMetricsFetch, metric, err)
		}

		point := Datapoint{Metric: metric}
		if len(result.Datapoints) > 0 {
			datapoints := result.Datapoints
			sort.Slice(datapoints, func(i, j int) bool {
				return aws.ToTime(datapoints[i].Timestamp).After(aws.ToTime(datapoints[j].Timestamp))
			})
			latest := datapoints[0]
			point.Average = aws.ToFloat64(latest.Average)
			point.Unit = string(latest.Unit)
			point.Timestamp = aws.ToTime(latest.Timestamp)
			point.HasData = true
		} else {
			log.Warn("no datapoints in window", "metric", metric)
		}
		summary = append(summary, point)
	}
	return summary, nil
}
