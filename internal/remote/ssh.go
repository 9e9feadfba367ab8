package remote

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Options configures an SSH inspector connection. Authentication is
// key-based only; there is no password fallback.
type Options struct {
	// Host is the management address, with or without a port (default 22).
	Host string
	User string
	// KeyFile is an optional private key path. The SSH agent (if running)
	// is always tried as well.
	KeyFile string
	// KnownHostsFile defaults to ~/.ssh/known_hosts.
	KnownHostsFile string
	// InsecureSkipHostKeyVerify disables host-key verification. Strict
	// verification is the default; enabling this is logged loudly.
	InsecureSkipHostKeyVerify bool
	// Timeout bounds the dial. Defaults to 30s. Connections are never
	// retried; a failed dial is terminal for the audit run.
	Timeout time.Duration
	Logger  *log.Logger
}

// SSHInspector implements Inspector over an SSH connection, using SFTP for
// file access.
type SSHInspector struct {
	client *ssh.Client
	sftp   *sftp.Client
}

// Dial opens an SSH connection and SFTP session to the device.
func Dial(opts Options) (*SSHInspector, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Host == "" || opts.User == "" {
		return nil, fmt.Errorf("remote: host and user are required")
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	hostKeyCallback, err := hostKeyPolicy(opts, logger)
	if err != nil {
		return nil, err
	}
	auth, err := authMethods(opts.KeyFile)
	if err != nil {
		return nil, err
	}

	addr := opts.Host
	if _, _, splitErr := net.SplitHostPort(addr); splitErr != nil {
		addr = net.JoinHostPort(addr, "22")
	}

	cfg := &ssh.ClientConfig{
		User:            opts.User,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         timeout,
	}

	logger.Printf("connecting to %s as %s", addr, opts.User)
	client, err := ssh.Dial("tcp", addr, cfg)
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", addr, err)
	}

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("open sftp session: %w", err)
	}

	return &SSHInspector{client: client, sftp: sftpClient}, nil
}

func hostKeyPolicy(opts Options, logger *log.Logger) (ssh.HostKeyCallback, error) {
	if opts.InsecureSkipHostKeyVerify {
		logger.Printf("warning: SSH host key verification disabled for %s; vulnerable to MITM", opts.Host)
		return ssh.InsecureIgnoreHostKey(), nil
	}
	path := opts.KnownHostsFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve known_hosts: %w", err)
		}
		path = filepath.Join(home, ".ssh", "known_hosts")
	}
	cb, err := knownhosts.New(path)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %s: %w", path, err)
	}
	return cb, nil
}

// authMethods builds the key-based auth chain: explicit key file first, then
// the SSH agent. Password authentication is deliberately absent.
func authMethods(keyFile string) ([]ssh.AuthMethod, error) {
	var methods []ssh.AuthMethod

	if keyFile != "" {
		pem, err := os.ReadFile(keyFile)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(pem)
		if err != nil {
			return nil, fmt.Errorf("parse key file: %w", err)
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	if len(methods) == 0 {
		return nil, fmt.Errorf("no SSH key available: set a key file or start an agent")
	}
	return methods, nil
}

// ReadFile reads a remote file over SFTP. A missing file returns ("", nil).
func (s *SSHInspector) ReadFile(path string) (string, error) {
	f, err := s.sftp.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// FileExists stats the remote path over SFTP.
func (s *SSHInspector) FileExists(path string) (bool, error) {
	_, err := s.sftp.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("stat %s: %w", path, err)
}

// Close tears down the SFTP session and SSH connection.
func (s *SSHInspector) Close() error {
	var firstErr error
	if s.sftp != nil {
		if err := s.sftp.Close(); err != nil {
			firstErr = err
		}
		s.sftp = nil
	}
	if s.client != nil {
		if err := s.client.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		s.client = nil
	}
	return firstErr
}
