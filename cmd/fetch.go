package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sitelift/sitelift/internal/fetch"
)

var fetchTimeout time.Duration

var fetchCmd = &cobra.Command{
	Use:   "fetch [url] <path>",
	Short: "Download a site asset to a local file",
	Long: `fetch downloads an asset over HTTP for later publishing. With one
argument the URL comes from the s3.image_url config value.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := viper.GetString("s3.image_url")
		path := args[0]
		if len(args) == 2 {
			url = args[0]
			path = args[1]
		}
		if url == "" {
			return cmd.Help()
		}

		written, err := fetch.Download(cmd.Context(), url, path, fetchTimeout)
		if err != nil {
			return err
		}
		cmd.Printf("Downloaded %d bytes to %s.\n", written, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "download timeout")
}
