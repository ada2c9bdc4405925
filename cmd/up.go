package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitelift/sitelift/internal/ec2"
)

var (
	upName         string
	upHeading      string
	upOpen         bool
	upReadyTimeout time.Duration
)

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Provision a security group and launch a web-serving instance",
	Long: `up resolves a security group allowing HTTP and SSH in the default VPC
(reusing a matching one when possible), picks the latest Amazon Linux AMI
unless one is configured, launches an instance whose boot script installs a
web server, and waits until the site answers.`,
	Args: cobra.NoArgs,
	RunE: runUp,
}

func init() {
	rootCmd.AddCommand(upCmd)

	upCmd.Flags().StringVar(&upName, "name", "sitelift-web", "Name tag for the instance")
	upCmd.Flags().StringVar(&upHeading, "heading", "", "heading for the served index page")
	upCmd.Flags().BoolVar(&upOpen, "open", false, "open the site in a browser once it answers")
	upCmd.Flags().DurationVar(&upReadyTimeout, "ready-timeout", 5*time.Minute, "how long to wait for the web server to answer")
}

func runUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	log := clog.FromContext(ctx)

	api, err := ec2.NewClient(ctx, awsRegion())
	if err != nil {
		return err
	}

	groupID := viper.GetString("ec2.security_group")
	if groupID == "" {
		resolver := ec2.NewResolver(api, ec2.ResolverConfig{
			Tags: []ec2types.Tag{ec2.RunIDTag(runID)},
		})
		groupID, err = resolver.Resolve(ctx)
		if err != nil {
			return err
		}
	} else {
		log.Info("using configured security group", "id", groupID)
	}

	amiID := viper.GetString("ec2.ami_id")
	if amiID == "" {
		amiID, err = ec2.LatestAmazonLinuxAMI(ctx, api)
		if err != nil {
			return err
		}
	}

	userData, err := ec2.UserData{Heading: upHeading}.Render()
	if err != nil {
		return err
	}

	instance, err := ec2.NewLauncher(api, runID).Launch(ctx, ec2.LaunchConfig{
		Name:            upName,
		AMI:             amiID,
		InstanceType:    viper.GetString("ec2.instance_type"),
		KeyName:         viper.GetString("aws.key_name"),
		SecurityGroupID: groupID,
		UserData:        userData,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("http://%s", instance.PublicIP)
	log.Info("waiting for web server to be ready", "url", url)
	waitCtx, cancel := context.WithTimeout(ctx, upReadyTimeout)
	defer cancel()
	if err := ec2.WaitHTTP(waitCtx, url, 5*time.Second); err != nil {
		return fmt.Errorf("web server never became ready: %w", err)
	}

	cmd.Printf("Instance %s is serving at %s\n", instance.ID, url)
	if upOpen {
		if err := openBrowser(ctx, url); err != nil {
			log.Warn("failed to open browser", "error", err)
		}
	}
	return nil
}

func openBrowser(ctx context.Context, url string) error {
	bin := "xdg-open"
	if runtime.GOOS == "darwin" {
		bin = "open"
	}
	return exec.CommandContext(ctx, bin, url).Start()
}
