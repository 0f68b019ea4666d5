package gitsnip

import (
	"fmt"
	"os"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// SSHKeyOption configures SSH key authentication.
type SSHKeyOption func(*sshKeyOptions)

type sshKeyOptions struct {
	password string
}

// WithSSHPassword supplies the passphrase for an encrypted private key.
func WithSSHPassword(password string) SSHKeyOption {
	return func(opts *sshKeyOptions) {
		opts.password = password
	}
}

// SSHKeyAuth builds SSH authentication from PEM-encoded private key bytes.
// Encrypted keys need their passphrase via WithSSHPassword; parsing fails
// otherwise.
//
// Example:
//
//	keyBytes, _ := os.ReadFile("/home/user/.ssh/id_rsa")
//	auth, err := gitsnip.SSHKeyAuth("git", keyBytes)
func SSHKeyAuth(user string, pemBytes []byte, opts ...SSHKeyOption) (Auth, error) {
	options := &sshKeyOptions{}
	for _, opt := range opts {
		opt(options)
	}

	publicKeys, err := ssh.NewPublicKeys(user, pemBytes, options.password)
	if err != nil {
		return nil, fmt.Errorf("failed to parse SSH key: %w", err)
	}

	return publicKeys, nil
}

// SSHKeyFile builds SSH authentication by reading the private key from a
// file, then delegates to SSHKeyAuth.
//
// Example:
//
//	auth, err := gitsnip.SSHKeyFile("git", "/home/user/.ssh/id_rsa",
//	    gitsnip.WithSSHPassword("mypassphrase"))
func SSHKeyFile(user string, keyPath string, opts ...SSHKeyOption) (Auth, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read SSH key file %q: %w", keyPath, err)
	}

	return SSHKeyAuth(user, pemBytes, opts...)
}

// BasicAuth builds HTTP basic authentication for HTTPS remotes. Forges
// accepting personal access tokens take the token as the password.
//
// Example:
//
//	auth := gitsnip.BasicAuth("myuser", "ghp_mytoken")
func BasicAuth(username, password string) Auth {
	return &http.BasicAuth{
		Username: username,
		Password: password,
	}
}

// authMethod converts the Auth marker to go-git's transport type. A nil Auth
// means anonymous access; any non-nil Auth that is not a transport.AuthMethod
// is rejected.
func authMethod(auth Auth) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}

	method, ok := auth.(transport.AuthMethod)
	if !ok {
		return nil, fmt.Errorf("invalid auth type %T", auth)
	}

	return method, nil
}

var _ Auth = (transport.AuthMethod)(nil)
