package ssh

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Client holds an SSH connection to the deployment target. A new
// session is opened per command; the underlying TCP connection is
// reused sequentially for the whole run.
type Client struct {
	Host    string
	User    string
	Port    int
	KeyPath string
	client  *ssh.Client
}

// NewClient creates an SSH client for user@host using the given
// private key file.
func NewClient(host, user string, port int, keyPath string) *Client {
	if port == 0 {
		port = 22
	}
	return &Client{
		Host:    host,
		User:    user,
		Port:    port,
		KeyPath: keyPath,
	}
}

// Connect establishes the SSH connection.
func (c *Client) Connect() error {
	signer, err := c.loadPrivateKey()
	if err != nil {
		return fmt.Errorf("failed to load private key: %w", err)
	}

	hostKeyCallback, err := c.hostKeyCallback()
	if err != nil {
		return fmt.Errorf("host key verification failed: %w", err)
	}

	config := &ssh.ClientConfig{
		User: c.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", c.Host, c.Port)
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", addr, err)
	}

	c.client = client
	return nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// NewSession creates a new SSH session.
func (c *Client) NewSession() (*ssh.Session, error) {
	if c.client == nil {
		return nil, fmt.Errorf("not connected")
	}
	return c.client.NewSession()
}

// loadPrivateKey loads the SSH private key from KeyPath, expanding a
// leading ~/.
func (c *Client) loadPrivateKey() (ssh.Signer, error) {
	keyPath := c.KeyPath
	if len(keyPath) >= 2 && keyPath[:2] == "~/" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		keyPath = filepath.Join(homeDir, keyPath[2:])
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return signer, nil
}

// hostKeyCallback returns the host key callback. Host-key checking is
// off by default: the tool targets freshly provisioned hosts that are
// not yet in known_hosts. Set SHIPWAY_STRICT_HOST_KEY=true to verify
// against ~/.ssh/known_hosts instead.
func (c *Client) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if os.Getenv("SHIPWAY_STRICT_HOST_KEY") != "true" {
		return ssh.InsecureIgnoreHostKey(), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot determine home directory: %w", err)
	}

	knownHostsPath := filepath.Join(homeDir, ".ssh", "known_hosts")
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("SSH known_hosts file not found at %s. "+
			"Connect to the server manually first with: ssh %s@%s -p %d, "+
			"or unset SHIPWAY_STRICT_HOST_KEY",
			knownHostsPath, c.User, c.Host, c.Port)
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read known_hosts: %w", err)
	}

	return callback, nil
}
