package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitelift/sitelift/internal/cloudwatch"
)

var (
	alarmThreshold float64
	alarmPeriods   int32
)

var metricsCmd = &cobra.Command{
	Use:   "metrics <instance-id>",
	Short: "Show basic CloudWatch metrics for an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := cloudwatch.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}
		points, err := cloudwatch.InstanceSummary(ctx, api, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("CloudWatch metrics for instance: %s\n", args[0])
		for _, point := range points {
			if !point.HasData {
				cmd.Printf("%s: No data available\n", point.Metric)
				continue
			}
			cmd.Printf("%s: Average %.2f %s (last hour)\n", point.Metric, point.Average, point.Unit)
		}
		return nil
	},
}

var alarmCmd = &cobra.Command{
	Use:   "alarm <instance-id>",
	Short: "Create a high-CPU alarm on an instance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := cloudwatch.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}
		name, err := cloudwatch.CreateCPUAlarm(ctx, api, cloudwatch.CPUAlarmConfig{
			InstanceID:        args[0],
			Threshold:         alarmThreshold,
			EvaluationPeriods: alarmPeriods,
		})
		if err != nil {
			return err
		}
		cmd.Printf("Alarm %s created.\n", name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd, alarmCmd)

	alarmCmd.Flags().Float64Var(&alarmThreshold, "threshold", 80, "CPUUtilization percentage that trips the alarm")
	alarmCmd.Flags().Int32Var(&alarmPeriods, "periods", 2, "consecutive 5-minute periods that must breach")
}
