package cmd

import (
	"github.com/spf13/cobra"

	"github.com/sitelift/sitelift/internal/ec2"
)

var instancesCmd = &cobra.Command{
	Use:   "instances",
	Short: "List running instances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		api, err := ec2.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}
		instances, err := ec2.ListRunning(ctx, api)
		if err != nil {
			return err
		}
		if len(instances) == 0 {
			cmd.Println("No running instances.")
			return nil
		}
		for _, inst := range instances {
			cmd.Printf("Instance ID: %s, Public IP: %s, State: %s, Launched: %s\n",
				inst.ID, inst.PublicIP, inst.State, inst.LaunchedAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(instancesCmd)
}
