package cloudwatch

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/chainguard-dev/clog"
)

var ErrAlarmCreate = fmt.Errorf("failed to create CloudWatch alarm")

// CPUAlarmConfig configures a high-CPU alarm on one instance.
type CPUAlarmConfig struct {
	InstanceID string

	// Threshold is the CPUUtilization percentage that trips the alarm.
	// default: 80
	Threshold float64

	// EvaluationPeriods of 5 minutes each must breach before the alarm fires.
	// default: 2
	EvaluationPeriods int32
}

func (c *CPUAlarmConfig) applyDefaults() {
	if c.Threshold == 0 {
		c.Threshold = 80
	}
	if c.EvaluationPeriods == 0 {
		c.EvaluationPeriods = 2
	}
}

// CreateCPUAlarm creates (or updates, PutMetricAlarm is an upsert) a high-CPU
// alarm for the instance and returns the alarm name.
func CreateCPUAlarm(ctx context.Context, api API, cfg CPUAlarmConfig) (string, error) {
	cfg.applyDefaults()
	name := fmt.Sprintf("sitelift-cpu-high-%s", cfg.InstanceID)

	_, err := api.PutMetricAlarm(ctx, &cloudwatch.PutMetricAlarmInput{
		AlarmName:        aws.String(name),
		AlarmDescription: aws.String(fmt.Sprintf("CPUUtilization above %.0f%% on %s", cfg.Threshold, cfg.InstanceID)),
		Namespace:        aws.String(metricNamespace),
		MetricName:       aws.String("CPUUtilization"),
		Statistic:        types.StatisticAverage,
		Dimensions: []types.Dimension{{
			Name:  aws.String("InstanceId"),
			Value: aws.String(cfg.InstanceID),
		}},
		Period:             aws.Int32(metricPeriod),
		EvaluationPeriods:  aws.Int32(cfg.EvaluationPeriods),
		Threshold:          aws.Float64(cfg.Threshold),
		ComparisonOperator: types.ComparisonOperatorGreaterThanOrEqualToThreshold,
		TreatMissingData:   aws.String("notBreaching"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAlarmCreate, err)
	}
	clog.FromContext(ctx).Info("created CPU alarm", "name", name, "threshold", cfg.Threshold)
	return name, nil
}
