package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitelift/sitelift/internal/ec2"
)

var downAll bool

var downCmd = &cobra.Command{
	Use:   "down [instance-id...]",
	Short: "Terminate instances",
	Long:  `down terminates the named instances, or every running instance with --all.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if downAll == (len(args) > 0) {
			return fmt.Errorf("provide instance IDs or --all, not both or neither")
		}

		ctx := cmd.Context()
		api, err := ec2.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}

		ids := args
		if downAll {
			ids, err = ec2.TerminateAllRunning(ctx, api)
			if err != nil {
				return err
			}
		} else if err := ec2.Terminate(ctx, api, ids...); err != nil {
			return err
		}

		if len(ids) == 0 {
			cmd.Println("Nothing to terminate.")
			return nil
		}
		for _, id := range ids {
			cmd.Printf("Terminating instance %s...\n", id)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downCmd)
	downCmd.Flags().BoolVar(&downAll, "all", false, "terminate every running instance")
}
