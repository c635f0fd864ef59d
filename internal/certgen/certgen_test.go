package certgen

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCert(t *testing.T, certPEM []byte) *x509.Certificate {
	t.Helper()
	block, _ := pem.Decode(certPEM)
	require.NotNil(t, block)
	cert, err := x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return cert
}

func TestGenerateCA(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("Test CA")
	require.NoError(t, err)

	caCert, caKey, err := ParseCA(certPEM, keyPEM)
	require.NoError(t, err)
	assert.NotNil(t, caKey)
	assert.True(t, caCert.IsCA)
	assert.True(t, caCert.BasicConstraintsValid)
	assert.Equal(t, "Test CA", caCert.Subject.CommonName)
	assert.NotZero(t, caCert.KeyUsage&x509.KeyUsageCertSign)
	if d := caCert.NotAfter.Sub(caCert.NotBefore); d < 9*365*24*time.Hour {
		t.Errorf("CA validity too short: %v", d)
	}
}

func TestParseCA_Invalid(t *testing.T) {
	certPEM, keyPEM, err := GenerateCA("Test CA")
	require.NoError(t, err)

	_, _, err = ParseCA([]byte("garbage"), keyPEM)
	assert.ErrorContains(t, err, "invalid CA cert PEM")

	_, _, err = ParseCA(certPEM, []byte("garbage"))
	assert.ErrorContains(t, err, "invalid CA key PEM")

	other := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1}})
	_, _, err = ParseCA(certPEM, other)
	assert.ErrorContains(t, err, "unsupported key type")
}

func TestGenerateServerCertificate(t *testing.T) {
	caPEM, caKeyPEM, err := GenerateCA("Test CA")
	require.NoError(t, err)
	caCert, caKey, err := ParseCA(caPEM, caKeyPEM)
	require.NoError(t, err)

	certPEM, keyPEM, err := GenerateServerCertificate([]string{"localhost", "127.0.0.1"}, caCert, caKey)
	require.NoError(t, err)

	_, err = tls.X509KeyPair(certPEM, keyPEM)
	require.NoError(t, err, "cert and key should form a pair")

	cert := parseCert(t, certPEM)
	assert.Equal(t, []string{"localhost"}, cert.DNSNames)
	require.Len(t, cert.IPAddresses, 1)
	assert.True(t, cert.IPAddresses[0].Equal(net.ParseIP("127.0.0.1")))

	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	for _, name := range []string{"localhost", "127.0.0.1"} {
		_, err := cert.Verify(x509.VerifyOptions{
			DNSName:   name,
			Roots:     pool,
			KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		})
		assert.NoError(t, err, "verify for %s", name)
	}
}

func TestGenerateServerCertificate_NoHosts(t *testing.T) {
	caPEM, caKeyPEM, err := GenerateCA("Test CA")
	require.NoError(t, err)
	caCert, caKey, err := ParseCA(caPEM, caKeyPEM)
	require.NoError(t, err)

	_, _, err = GenerateServerCertificate(nil, caCert, caKey)
	assert.Error(t, err)
}

func TestWriteDevPKI(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "certs")
	require.NoError(t, WriteDevPKI(dir, []string{"localhost"}))

	for _, name := range []string{CACertFile, CAKeyFile, ServerCertFile, ServerKeyFile} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotZero(t, info.Size(), name)
	}
	info, err := os.Stat(filepath.Join(dir, ServerKeyFile))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	caCert, _, err := LoadCACredentials(filepath.Join(dir, CACertFile), filepath.Join(dir, CAKeyFile))
	require.NoError(t, err)
	_, err = tls.LoadX509KeyPair(filepath.Join(dir, ServerCertFile), filepath.Join(dir, ServerKeyFile))
	require.NoError(t, err)

	srvPEM, err := os.ReadFile(filepath.Join(dir, ServerCertFile))
	require.NoError(t, err)
	pool := x509.NewCertPool()
	pool.AddCert(caCert)
	_, err = parseCert(t, srvPEM).Verify(x509.VerifyOptions{DNSName: "localhost", Roots: pool})
	assert.NoError(t, err)
}

func TestLoadCACredentials_MissingFiles(t *testing.T) {
	_, _, err := LoadCACredentials("does-not-exist.crt", "does-not-exist.key")
	assert.ErrorContains(t, err, "read ca cert")
}
