package ssh

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shipway/shipway/internal/security"
)

// UploadFile uploads a local file to the remote server over the SSH
// session using the SCP sink protocol. No scp binary is required on
// the local side; the remote side needs scp on PATH.
func (c *Client) UploadFile(ctx context.Context, localPath, remotePath string) error {
	localFile, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open local file: %w", err)
	}
	defer localFile.Close()

	fileInfo, err := localFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat local file: %w", err)
	}

	remoteDir := filepath.Dir(remotePath)
	if _, err := c.Exec(ctx, fmt.Sprintf("mkdir -p %s", security.ShellEscape(remoteDir))); err != nil {
		return fmt.Errorf("failed to create remote directory: %w", err)
	}

	session, err := c.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	defer session.Close()

	stdin, err := session.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	filename := filepath.Base(remotePath)
	go func() {
		defer stdin.Close()
		// SCP protocol: C<mode> <size> <filename>\n<data>\0
		fmt.Fprintf(stdin, "C0644 %d %s\n", fileInfo.Size(), filename)
		_, _ = io.Copy(stdin, localFile)
		fmt.Fprint(stdin, "\x00")
	}()

	if err := session.Run(fmt.Sprintf("scp -t %s", security.ShellEscape(remotePath))); err != nil {
		return fmt.Errorf("scp failed: %w", err)
	}

	return nil
}

// UploadContent writes content to a remote file, optionally through
// sudo for root-owned destinations.
// SECURITY: the content travels base64-encoded so no shell
// interpretation can apply to it.
func (c *Client) UploadContent(ctx context.Context, content, remotePath string, sudo bool) error {
	encoded := base64.StdEncoding.EncodeToString([]byte(content))

	tee := "tee"
	if sudo {
		tee = "sudo tee"
	}
	cmd := fmt.Sprintf("echo '%s' | base64 -d | %s %s > /dev/null",
		encoded, tee, security.ShellEscape(remotePath))

	result, err := c.Exec(ctx, cmd)
	if err != nil {
		return fmt.Errorf("failed to upload content: %w", err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("failed to write file: %s", result.Stderr)
	}

	return nil
}
