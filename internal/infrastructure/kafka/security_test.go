package kafka

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/stretchr/testify/require"
)

// writeTestCerts writes a CA and a client key pair signed by it and returns their paths.
func writeTestCerts(t *testing.T) (caFile, certFile, keyFile string) {
	t.Helper()
	dir := t.TempDir()

	caKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	caTemplate := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{Organization: []string{"Test CA"}},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(24 * time.Hour),
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTemplate, caTemplate, &caKey.PublicKey, caKey)
	require.NoError(t, err)

	clientKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	clientTemplate := &x509.Certificate{
		SerialNumber: big.NewInt(2),
		Subject:      pkix.Name{Organization: []string{"Test Client"}},
		NotBefore:    time.Now(),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	clientDER, err := x509.CreateCertificate(rand.Reader, clientTemplate, caTemplate, &clientKey.PublicKey, caKey)
	require.NoError(t, err)

	write := func(name, typ string, der []byte) string {
		p := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(p, pem.EncodeToMemory(&pem.Block{Type: typ, Bytes: der}), 0600))
		return p
	}
	caFile = write("ca.pem", "CERTIFICATE", caDER)
	certFile = write("client.pem", "CERTIFICATE", clientDER)
	keyFile = write("client-key.pem", "RSA PRIVATE KEY", x509.MarshalPKCS1PrivateKey(clientKey))
	return caFile, certFile, keyFile
}

func TestLoadTLS(t *testing.T) {
	caFile, certFile, keyFile := writeTestCerts(t)

	t.Run("ca and client certificate", func(t *testing.T) {
		tc, err := loadTLS(&config.TLSConfig{Enabled: true, CAFile: caFile, CertFile: certFile, KeyFile: keyFile})
		require.NoError(t, err)
		require.NotNil(t, tc.RootCAs)
		require.Len(t, tc.Certificates, 1)
		require.False(t, tc.InsecureSkipVerify)
	})

	t.Run("insecure without files", func(t *testing.T) {
		tc, err := loadTLS(&config.TLSConfig{Enabled: true, InsecureSkipVerify: true})
		require.NoError(t, err)
		require.True(t, tc.InsecureSkipVerify)
		require.Nil(t, tc.RootCAs)
		require.Empty(t, tc.Certificates)
	})

	t.Run("missing ca file", func(t *testing.T) {
		_, err := loadTLS(&config.TLSConfig{Enabled: true, CAFile: filepath.Join(t.TempDir(), "nope.pem")})
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("ca file without certificates", func(t *testing.T) {
		empty := filepath.Join(t.TempDir(), "empty.pem")
		require.NoError(t, os.WriteFile(empty, []byte("not a certificate"), 0o600))
		_, err := loadTLS(&config.TLSConfig{Enabled: true, CAFile: empty})
		require.ErrorContains(t, err, "no certificates found")
	})

	t.Run("mismatched key pair", func(t *testing.T) {
		_, err := loadTLS(&config.TLSConfig{Enabled: true, CertFile: certFile, KeyFile: caFile})
		require.ErrorContains(t, err, "load client certificate")
	})

	t.Run("certificate without key", func(t *testing.T) {
		_, err := loadTLS(&config.TLSConfig{Enabled: true, CertFile: certFile})
		require.Error(t, err)
	})
}

func TestSASLFor(t *testing.T) {
	tests := []struct {
		mechanism string
		want      string
	}{
		{"PLAIN", "PLAIN"},
		{"plain", "PLAIN"},
		{"SCRAM-SHA-256", "SCRAM-SHA-256"},
		{"scram-sha-256", "SCRAM-SHA-256"},
		{"SCRAM-SHA-512", "SCRAM-SHA-512"},
		{"SCRAM-SHA512", "SCRAM-SHA-512"},
		{"Scram-Sha-512", "SCRAM-SHA-512"},
	}
	for _, tt := range tests {
		t.Run(tt.mechanism, func(t *testing.T) {
			mech, err := saslFor(&config.SASLConfig{Mechanism: tt.mechanism, Username: "u", Password: "p"})
			require.NoError(t, err)
			require.Equal(t, tt.want, mech.Name())
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		_, err := saslFor(&config.SASLConfig{Mechanism: "GSSAPI"})
		require.ErrorContains(t, err, "GSSAPI")
	})
}

func TestEnvOr(t *testing.T) {
	t.Setenv("POLYGLOT_TEST_KAFKA_USER", "env-user")
	t.Setenv("POLYGLOT_TEST_KAFKA_EMPTY", "")

	require.Equal(t, "env-user", envOr("POLYGLOT_TEST_KAFKA_USER", "file-user"))
	require.Equal(t, "file-user", envOr("POLYGLOT_TEST_KAFKA_EMPTY", "file-user"))
	require.Equal(t, "file-user", envOr("", "file-user"))
}

func TestMSKIAM(t *testing.T) {
	t.Run("default env variables", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
		mech := mskIAM(&config.AWSConfig{IAM: true, Region: "us-east-1"})
		require.NotNil(t, mech)
		require.Equal(t, "AWS_MSK_IAM", mech.Name())
	})

	t.Run("custom env variables", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		t.Setenv("CUSTOM_ACCESS", "custom-access")
		t.Setenv("CUSTOM_SECRET", "custom-secret")
		mech := mskIAM(&config.AWSConfig{IAM: true, AccessKeyEnv: "CUSTOM_ACCESS", SecretKeyEnv: "CUSTOM_SECRET"})
		require.NotNil(t, mech)
	})

	t.Run("without credentials", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		require.Nil(t, mskIAM(&config.AWSConfig{IAM: true}))
	})
}

func TestClientOpts(t *testing.T) {
	t.Run("plaintext", func(t *testing.T) {
		opts, err := clientOpts(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t", ClientID: "c"})
		require.NoError(t, err)
		require.Len(t, opts, 3)
	})

	t.Run("tls error surfaces", func(t *testing.T) {
		_, err := clientOpts(config.KafkaConfig{TLS: &config.TLSConfig{Enabled: true, CAFile: filepath.Join(t.TempDir(), "ca.pem")}})
		require.ErrorContains(t, err, "kafka tls")
	})

	t.Run("sasl error surfaces", func(t *testing.T) {
		_, err := clientOpts(config.KafkaConfig{SASL: &config.SASLConfig{Mechanism: "OAUTHBEARER"}})
		require.ErrorContains(t, err, "kafka sasl")
	})

	t.Run("sasl and aws share one option", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "test-access")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "test-secret")
		opts, err := clientOpts(config.KafkaConfig{
			SASL: &config.SASLConfig{Mechanism: "PLAIN", Username: "u", Password: "p"},
			AWS:  &config.AWSConfig{IAM: true},
		})
		require.NoError(t, err)
		require.Len(t, opts, 1)
	})

	t.Run("aws without credentials adds nothing", func(t *testing.T) {
		t.Setenv("AWS_ACCESS_KEY_ID", "")
		t.Setenv("AWS_SECRET_ACCESS_KEY", "")
		opts, err := clientOpts(config.KafkaConfig{AWS: &config.AWSConfig{IAM: true}})
		require.NoError(t, err)
		require.Empty(t, opts)
	})
}
