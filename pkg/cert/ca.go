// Package cert generates throwaway certificate authorities and server
// certificates for development servers and tests.
package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"time"
)

// CA is an in-memory certificate authority.
type CA struct {
	key  *ecdsa.PrivateKey
	cert *x509.Certificate
	pem  []byte
}

// NewCA generates a new self-signed certificate authority.
func NewCA() (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: "modelmill development CA"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().AddDate(1, 0, 0),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	parsed, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, err
	}

	return &CA{
		key:  key,
		cert: parsed,
		pem:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
	}, nil
}

// PEM is the CA certificate, PEM encoded. Clients trust certificates
// this CA signs by pooling it.
func (ca *CA) PEM() []byte {
	return ca.pem
}

// CertOption adds identities to a certificate under issue.
type CertOption func(*x509.Certificate)

// DNSName marks DNS names the certificate is valid for.
func DNSName(names ...string) CertOption {
	return func(c *x509.Certificate) {
		c.DNSNames = append(c.DNSNames, names...)
	}
}

// IPAddress marks IP addresses the certificate is valid for.
func IPAddress(ips ...net.IP) CertOption {
	return func(c *x509.Certificate) {
		c.IPAddresses = append(c.IPAddresses, ips...)
	}
}

// Cert is a server certificate signed by a CA.
type Cert struct {
	pem    []byte
	keyPEM []byte
}

// Certificate issues a server certificate signed by this CA.
func (ca *CA) Certificate(opts ...CertOption) (*Cert, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, err
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, err
	}

	tmpl := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "modelmill"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	for _, opt := range opts {
		opt(tmpl)
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca.cert, &key.PublicKey, ca.key)
	if err != nil {
		return nil, err
	}

	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, err
	}

	return &Cert{
		pem:    pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}),
		keyPEM: pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}),
	}, nil
}

// PEM is the certificate, PEM encoded.
func (c *Cert) PEM() []byte {
	return c.pem
}

// KeyPEM is the certificate's private key, PEM encoded.
func (c *Cert) KeyPEM() []byte {
	return c.keyPEM
}

// TLSCert pairs the certificate with its key for a TLS listener.
func (c *Cert) TLSCert() (*tls.Certificate, error) {
	pair, err := tls.X509KeyPair(c.pem, c.keyPEM)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}
