package ssh

// ssh.go implements a facade over 'x/crypto/ssh' for the handful of remote
// operations sitelift performs against a freshly launched instance:
// connecting, running provisioning commands, and uploading site files.

import (
	"bytes"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

const dialTimeout = 3 * time.Second

var (
	ErrDial           = fmt.Errorf("failed to establish SSH connection")
	ErrHostKeyInvalid = fmt.Errorf("target's host key is invalid")
	ErrSessionInit    = fmt.Errorf("failed to begin SSH session")
	ErrExec           = fmt.Errorf("failed to execute remote command")
)

// Connect establishes an SSH connection to 'host' on TCP port 'port',
// authenticating as 'user' with 'signer'.
//
// Any values provided to 'hostKeys' are compared against the host key offered
// by 'host'. With no 'hostKeys', all host keys are accepted - acceptable for
// an instance this tool created seconds ago, whose host key nothing else has
// ever seen.
func Connect(host string, port uint16, user string, signer ssh.Signer, hostKeys ...ssh.PublicKey) (*ssh.Client, error) {
	if port == 0 {
		port = 22
	}
	config := &ssh.ClientConfig{
		User: user,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: func(hostname string, remote net.Addr, key ssh.PublicKey) error {
			if len(hostKeys) == 0 {
				return nil
			}
			for _, hostKey := range hostKeys {
				if bytes.Equal(hostKey.Marshal(), key.Marshal()) {
					return nil
				}
			}
			return ErrHostKeyInvalid
		},
		Timeout: dialTimeout,
	}

	target := net.JoinHostPort(host, strconv.Itoa(int(port)))
	client, err := ssh.Dial("tcp", target, config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDial, target, err)
	}
	return client, nil
}

// Exec runs a single remote command, returning captured stdout and stderr.
func Exec(client *ssh.Client, cmd string) (string, string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrSessionInit, err)
	}
	defer session.Close()

	stdout := new(bytes.Buffer)
	session.Stdout = stdout
	stderr := new(bytes.Buffer)
	session.Stderr = stderr

	if err := session.Run(cmd); err != nil {
		return stdout.String(), stderr.String(), fmt.Errorf("%w: %q: %w", ErrExec, cmd, err)
	}
	return stdout.String(), stderr.String(), nil
}
