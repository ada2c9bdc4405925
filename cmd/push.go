package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitelift/sitelift/internal/ec2"
	"github.com/sitelift/sitelift/internal/ssh"
)

var (
	pushKeyPath     string
	pushUser        string
	pushPort        uint16
	pushWaitTimeout time.Duration
)

var pushCmd = &cobra.Command{
	Use:   "push <host> <local-path> <remote-path>",
	Short: "Copy a file onto an instance over SSH",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		host, localPath, remotePath := args[0], args[1], args[2]

		key, err := os.ReadFile(pushKeyPath)
		if err != nil {
			return fmt.Errorf("reading private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return err
		}

		// A freshly launched instance can pass the running state before sshd
		// answers; wait for the port first.
		waitCtx, cancel := context.WithTimeout(cmd.Context(), pushWaitTimeout)
		defer cancel()
		if err := ec2.WaitTCP(waitCtx, host, pushPort); err != nil {
			return fmt.Errorf("SSH port never became reachable: %w", err)
		}

		client, err := ssh.Connect(host, pushPort, pushUser, signer)
		if err != nil {
			return err
		}
		defer client.Close()

		if err := ssh.Upload(client, localPath, remotePath); err != nil {
			return err
		}
		cmd.Printf("Copied %s to %s:%s.\n", localPath, host, remotePath)
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen <path>",
	Short: "Generate an ED25519 keypair for instance access",
	Long: `keygen writes a PEM private key to <path> and the matching OpenSSH
public key to <path>.pub, ready for push and for importing as an EC2 key pair.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]

		pair, err := ssh.NewKeyPair()
		if err != nil {
			return err
		}
		private, err := pair.PrivatePEM("sitelift")
		if err != nil {
			return err
		}
		public, err := pair.PublicOpenSSH()
		if err != nil {
			return err
		}

		if err := os.WriteFile(path, private, 0o600); err != nil {
			return fmt.Errorf("writing private key: %w", err)
		}
		if err := os.WriteFile(path+".pub", public, 0o644); err != nil {
			return fmt.Errorf("writing public key: %w", err)
		}
		cmd.Printf("Wrote %s and %s.pub.\n", path, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pushCmd, keygenCmd)

	pushCmd.Flags().StringVar(&pushKeyPath, "key", "", "path to the PEM private key")
	pushCmd.Flags().StringVar(&pushUser, "user", "ec2-user", "SSH user")
	pushCmd.Flags().Uint16Var(&pushPort, "port", 22, "SSH port")
	pushCmd.Flags().DurationVar(&pushWaitTimeout, "wait-timeout", time.Minute, "how long to wait for the SSH port")
	_ = pushCmd.MarkFlagRequired("key")
}
