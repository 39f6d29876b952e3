package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/crypto/ssh"
)

// writeTestKey generates an ed25519 private key file and returns its path.
func writeTestKey(t *testing.T) string {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "")
	if err != nil {
		t.Fatalf("failed to marshal key: %v", err)
	}
	path := filepath.Join(t.TempDir(), "id_ed25519")
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("failed to write key: %v", err)
	}
	return path
}

func TestNewClient_DefaultPort(t *testing.T) {
	c := NewClient("203.0.113.10", "deploy", 0, "/tmp/key")
	if c.Port != 22 {
		t.Errorf("expected default port 22, got %d", c.Port)
	}
}

func TestLoadPrivateKey(t *testing.T) {
	keyPath := writeTestKey(t)
	c := NewClient("203.0.113.10", "deploy", 22, keyPath)

	signer, err := c.loadPrivateKey()
	if err != nil {
		t.Fatalf("loadPrivateKey failed: %v", err)
	}
	if signer.PublicKey().Type() != "ssh-ed25519" {
		t.Errorf("unexpected key type: %s", signer.PublicKey().Type())
	}
}

func TestLoadPrivateKey_MissingFile(t *testing.T) {
	c := NewClient("203.0.113.10", "deploy", 22, "/nonexistent/key")
	if _, err := c.loadPrivateKey(); err == nil {
		t.Fatal("expected error for missing key file")
	}
}

func TestLoadPrivateKey_GarbageKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad_key")
	if err := os.WriteFile(path, []byte("not a key"), 0600); err != nil {
		t.Fatal(err)
	}
	c := NewClient("203.0.113.10", "deploy", 22, path)
	if _, err := c.loadPrivateKey(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestHostKeyCallback_InsecureByDefault(t *testing.T) {
	t.Setenv("SHIPWAY_STRICT_HOST_KEY", "")
	c := NewClient("203.0.113.10", "deploy", 22, "")

	callback, err := c.hostKeyCallback()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if callback == nil {
		t.Fatal("expected a callback")
	}
}

func TestExec_NotConnected(t *testing.T) {
	c := NewClient("203.0.113.10", "deploy", 22, "")
	if _, err := c.NewSession(); err == nil {
		t.Fatal("expected error when not connected")
	}
}
