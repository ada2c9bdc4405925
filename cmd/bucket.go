package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sitelift/sitelift/internal/s3"
)

var (
	bucketWebsite bool
	bucketPublish string
	bucketRmAll   bool
)

var bucketCmd = &cobra.Command{
	Use:   "bucket",
	Short: "Manage S3 buckets",
}

var bucketCreateCmd = &cobra.Command{
	Use:   "create <base-name>",
	Short: "Create a uniquely named bucket",
	Long: `create makes a bucket named after <base-name> with a random suffix so
repeated runs never collide. With --website the bucket is configured for
static hosting and made publicly readable; --publish uploads a local
directory into it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		api, err := s3.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}
		provisioner := s3.NewProvisioner(api, awsRegion())

		bucket, err := provisioner.Create(ctx, args[0])
		if err != nil {
			return err
		}
		cmd.Printf("Bucket %s created successfully.\n", bucket)

		if bucketWebsite {
			if err := provisioner.EnableWebsite(ctx, bucket); err != nil {
				return err
			}
		}
		if bucketPublish != "" {
			if !bucketWebsite {
				return fmt.Errorf("--publish requires --website")
			}
			count, err := provisioner.PublishDir(ctx, bucket, bucketPublish)
			if err != nil {
				return err
			}
			cmd.Printf("Published %d objects.\n", count)
		}
		if bucketWebsite {
			cmd.Printf("Website URL: %s\n", provisioner.WebsiteURL(bucket))
		}
		return nil
	},
}

var bucketLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List buckets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		api, err := s3.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}
		buckets, err := s3.List(ctx, api)
		if err != nil {
			return err
		}
		for _, bucket := range buckets {
			cmd.Printf("Bucket: %s, Created: %s\n", bucket.Name, bucket.CreatedAt.Format("2006-01-02 15:04:05 MST"))
		}
		return nil
	},
}

var bucketRmCmd = &cobra.Command{
	Use:   "rm [bucket...]",
	Short: "Delete buckets, emptying them first",
	RunE: func(cmd *cobra.Command, args []string) error {
		if bucketRmAll == (len(args) > 0) {
			return fmt.Errorf("provide bucket names or --all, not both or neither")
		}

		ctx := cmd.Context()
		api, err := s3.NewClient(ctx, awsRegion())
		if err != nil {
			return err
		}

		if bucketRmAll {
			deleted, err := s3.DeleteAll(ctx, api)
			for _, bucket := range deleted {
				cmd.Printf("Deleted bucket: %s\n", bucket)
			}
			return err
		}
		for _, bucket := range args {
			if err := s3.Delete(ctx, api, bucket); err != nil {
				return err
			}
			cmd.Printf("Deleted bucket: %s\n", bucket)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(bucketCmd)
	bucketCmd.AddCommand(bucketCreateCmd, bucketLsCmd, bucketRmCmd)

	bucketCreateCmd.Flags().BoolVar(&bucketWebsite, "website", false, "configure the bucket for static website hosting")
	bucketCreateCmd.Flags().StringVar(&bucketPublish, "publish", "", "local directory to upload into the bucket")
	bucketRmCmd.Flags().BoolVar(&bucketRmAll, "all", false, "delete every bucket")
}
