package writerbackends

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net"
	"path"
	"time"

	"pixbatch/logger"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// SFTPWriter uploads artifacts into a directory on a remote server over one SSH session.
type SFTPWriter struct {
	addr      string
	remoteDir string
	ssh       *ssh.Client
	client    *sftp.Client
}

// NewSFTP dials the server and ensures remoteDir exists.
// accessInfo must contain host, user, remoteDir and either password or privateKey
// (base64 or raw PEM). port defaults to 22.
func NewSFTP(ctx context.Context, accessInfo map[string]string) (*SFTPWriter, error) {
	host := accessInfo["host"]
	port := accessInfo["port"]
	if port == "" {
		port = "22"
	}
	user := accessInfo["user"]
	remoteDir := accessInfo["remoteDir"]

	if host == "" || user == "" || remoteDir == "" {
		return nil, errors.New("missing required accessInfo keys: host, user, remoteDir")
	}

	auths, err := sshAuth(accessInfo["password"], accessInfo["privateKey"])
	if err != nil {
		return nil, err
	}

	config := &ssh.ClientConfig{
		User:            user,
		Auth:            auths,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(host, port)

	d := net.Dialer{Timeout: config.Timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial tcp %s: %w", addr, err)
	}

	clientConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ssh handshake with %s: %w", addr, err)
	}
	sshClient := ssh.NewClient(clientConn, chans, reqs)

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, fmt.Errorf("create sftp client: %w", err)
	}

	if err := sftpClient.MkdirAll(remoteDir); err != nil {
		sftpClient.Close()
		sshClient.Close()
		return nil, fmt.Errorf("ensure remote dir %s: %w", remoteDir, err)
	}

	return &SFTPWriter{addr: addr, remoteDir: remoteDir, ssh: sshClient, client: sftpClient}, nil
}

func sshAuth(password, privateKey string) ([]ssh.AuthMethod, error) {
	if privateKey != "" {
		// try to decode as base64, fall back to raw
		keyBytes, err := base64.StdEncoding.DecodeString(privateKey)
		if err != nil {
			keyBytes = []byte(privateKey)
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			return nil, fmt.Errorf("parse private key: %w", err)
		}
		return []ssh.AuthMethod{ssh.PublicKeys(signer)}, nil
	}
	if password != "" {
		return []ssh.AuthMethod{ssh.Password(password)}, nil
	}
	return nil, errors.New("no auth method provided; set password or privateKey")
}

func (w *SFTPWriter) Write(ctx context.Context, name string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	remotePath := path.Join(w.remoteDir, name)

	f, err := w.client.Create(remotePath)
	if err != nil {
		return fmt.Errorf("create remote file %s: %w", remotePath, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("copy to remote file %s: %w", remotePath, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close remote file %s: %w", remotePath, err)
	}

	logger.Debugf("uploaded '%s' to %s", remotePath, w.addr)
	return nil
}

func (w *SFTPWriter) Describe() string {
	return fmt.Sprintf("sftp://%s%s", w.addr, path.Clean("/"+w.remoteDir))
}

func (w *SFTPWriter) Close() error {
	return errors.Join(w.client.Close(), w.ssh.Close())
}
