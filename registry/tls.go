package registry

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// TLSConfig holds certificate paths for mutual TLS toward etcd.
// All three files are required when Enabled is true.
type TLSConfig struct {
	// Enabled turns TLS on. When false the other fields are ignored.
	Enabled bool `json:"enabled"`

	// CertFile is the client certificate, PEM format.
	CertFile string `json:"cert_file"`

	// KeyFile is the client private key, PEM format.
	KeyFile string `json:"key_file"`

	// CAFile is the certificate authority used to verify the etcd
	// server, PEM format.
	CAFile string `json:"ca_file"`
}

// clientConfig builds the tls.Config for the etcd client connection.
func (c *TLSConfig) clientConfig() (*tls.Config, error) {
	if c.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file is required when TLS is enabled")
	}
	if c.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file is required when TLS is enabled")
	}
	if c.CAFile == "" {
		return nil, fmt.Errorf("TLS CA file is required when TLS is enabled")
	}

	cert, err := tls.LoadX509KeyPair(c.CertFile, c.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	caData, err := os.ReadFile(c.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}
	caPool := x509.NewCertPool()
	if !caPool.AppendCertsFromPEM(caData) {
		return nil, fmt.Errorf("failed to parse CA certificate")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}
