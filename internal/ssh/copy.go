package ssh

// copy.go implements a minimal file upload over a plain SSH session: the
// local file is streamed to a remote 'cat' redirected into the target path.
// It avoids the SCP protocol entirely, which this tool does not need.

import (
	"fmt"
	"os"
	"path"

	"github.com/kballard/go-shellquote"
	"golang.org/x/crypto/ssh"
)

var ErrUpload = fmt.Errorf("failed to upload file")

// Upload copies the local file at 'localPath' to 'remotePath' on the
// connected host. Parent directories are created first. Remote paths pass
// through shell quoting, so spaces and metacharacters in 'remotePath' are
// safe.
func Upload(client *ssh.Client, localPath, remotePath string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	defer file.Close()

	if dir := path.Dir(remotePath); dir != "." && dir != "/" {
		if _, stderr, err := Exec(client, mkdirCommand(dir)); err != nil {
			return fmt.Errorf("%w: stderr: %s", err, stderr)
		}
	}

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSessionInit, err)
	}
	defer session.Close()

	session.Stdin = file
	if err := session.Run(uploadCommand(remotePath)); err != nil {
		return fmt.Errorf("%w: %q: %w", ErrUpload, remotePath, err)
	}
	return nil
}

func uploadCommand(remotePath string) string {
	return "cat > " + shellquote.Join(remotePath)
}

func mkdirCommand(dir string) string {
	return "mkdir -p " + shellquote.Join(dir)
}
