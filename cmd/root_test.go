package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestAWSRegionPrecedence(t *testing.T) {
	t.Cleanup(func() {
		region = ""
		viper.Reset()
	})

	require.Equal(t, "us-east-1", awsRegion())

	viper.Set("aws.region", "eu-west-1")
	require.Equal(t, "eu-west-1", awsRegion())

	// Flag wins over config.
	region = "ap-southeast-2"
	require.Equal(t, "ap-southeast-2", awsRegion())
}

func TestLoadConfigINI(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	path := filepath.Join(t.TempDir(), "sitelift.ini")
	contents := "[AWS]\nkey_name = deploy\n\n[EC2]\ninstance_type = t3.micro\n\n[S3]\nimage_url = https://example.com/logo.png\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	cfgFile = path
	require.NoError(t, loadConfig())
	require.Equal(t, "deploy", viper.GetString("aws.key_name"))
	require.Equal(t, "t3.micro", viper.GetString("ec2.instance_type"))
	require.Equal(t, "https://example.com/logo.png", viper.GetString("s3.image_url"))
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	t.Cleanup(func() {
		cfgFile = ""
		viper.Reset()
	})

	cfgFile = filepath.Join(t.TempDir(), "missing.ini")
	require.ErrorIs(t, loadConfig(), ErrConfigLoad)
}
