package ssh

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/craftd/craftd/internal/util/retry"
)

const (
	defaultPort        = "22"
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 3
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Runner executes commands on the remote host. It is satisfied by
// [Client] and mocked in tests of the packages built on top of it.
type Runner interface {
	// Run executes command on the remote host and returns its stdout.
	// A non-zero exit returns an error carrying the captured stderr.
	Run(ctx context.Context, command string) (string, error)
}

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       string
	User       string
	PrivateKey []byte

	// KnownHostsPath is the trust store used to verify the host key.
	// The container image seeds it with ssh-keyscan at build time.
	KnownHostsPath string

	// InsecureHostKey disables host key verification. Only for
	// development boxes without a provisioned known_hosts file.
	InsecureHostKey bool

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, a default is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of dial retry attempts.
	// If zero, a default is used.
	MaxRetries int

	// RetryDelay is the initial delay between dial retries.
	// If zero, a default is used.
	RetryDelay time.Duration
}

// Client executes commands on the Minecraft host via SSH. The private
// key is parsed once during construction; connections are created
// on demand per Run call.
type Client struct {
	config   *Config
	signer   ssh.Signer
	hostKeys ssh.HostKeyCallback
}

// NewClient validates the configuration, parses the private key, and
// resolves the host key verification policy.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating the caller's struct.
	configCopy := *cfg
	if configCopy.Port == "" {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	hostKeys, err := hostKeyCallback(&configCopy)
	if err != nil {
		return nil, err
	}

	return &Client{
		config:   &configCopy,
		signer:   signer,
		hostKeys: hostKeys,
	}, nil
}

func hostKeyCallback(cfg *Config) (ssh.HostKeyCallback, error) {
	if cfg.InsecureHostKey {
		return ssh.InsecureIgnoreHostKey(), nil //nolint:gosec // Explicit opt-in for development hosts
	}
	if cfg.KnownHostsPath == "" {
		return nil, fmt.Errorf("known_hosts path required unless insecure host keys are enabled")
	}
	cb, err := knownhosts.New(cfg.KnownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load known_hosts %s: %w", cfg.KnownHostsPath, err)
	}
	return cb, nil
}

// Addr returns the host:port the client dials.
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, c.config.Port)
}

// Run executes a command on the remote host. The dial is retried with
// backoff; host key mismatches are fatal and abort the retry loop.
// Returns the command's stdout; on a non-zero exit the error includes
// the exit status and captured stderr.
func (c *Client) Run(ctx context.Context, command string) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, command)
}

// connect establishes the SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.hostKeys,
		Timeout:         c.config.DialTimeout,
	}

	addr := c.Addr()
	var client *ssh.Client

	err := retry.Do(ctx, func() error {
		var dialErr error
		client, dialErr = ssh.Dial("tcp", addr, config)
		if dialErr != nil && isHostKeyMismatch(dialErr) {
			// A changed host key never fixes itself; surface it now.
			return retry.Fatal(dialErr)
		}
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
	)

	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	return client, nil
}

// runCommand executes a command on an established connection, keeping
// stdout and stderr separate. The session is torn down if ctx expires
// mid-command.
func (c *Client) runCommand(ctx context.Context, client *ssh.Client, command string) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	done := make(chan error, 1)
	go func() {
		done <- session.Run(command)
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		<-done
		return "", fmt.Errorf("command cancelled on %s: %w", c.config.Host, ctx.Err())
	case err = <-done:
	}

	if err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), fmt.Errorf("command exited %d on %s: %w\nstderr: %s",
				exitErr.ExitStatus(), c.config.Host, err, strings.TrimSpace(stderr.String()))
		}
		return stdout.String(), fmt.Errorf("command failed on %s: %w\nstderr: %s",
			c.config.Host, err, strings.TrimSpace(stderr.String()))
	}

	return stdout.String(), nil
}

func isHostKeyMismatch(err error) bool {
	var keyErr *knownhosts.KeyError
	return errors.As(err, &keyErr)
}
