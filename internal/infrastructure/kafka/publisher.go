// Package kafka announces catalog reloads on a Kafka topic using franz-go.
package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/OliveiraNt/polyglot/internal/config"
	"github.com/OliveiraNt/polyglot/internal/domain"
	"github.com/OliveiraNt/polyglot/internal/utils"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/twmb/franz-go/pkg/sasl"
	"github.com/twmb/franz-go/pkg/sasl/aws"
	"github.com/twmb/franz-go/pkg/sasl/plain"
	"github.com/twmb/franz-go/pkg/sasl/scram"
)

const (
	produceTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// saslMechanisms maps a normalised mechanism name (upper case, no dashes) to
// its constructor.
var saslMechanisms = map[string]func(user, pass string) sasl.Mechanism{
	"PLAIN": func(user, pass string) sasl.Mechanism {
		return plain.Auth{User: user, Pass: pass}.AsMechanism()
	},
	"SCRAMSHA256": func(user, pass string) sasl.Mechanism {
		return scram.Auth{User: user, Pass: pass}.AsSha256Mechanism()
	},
	"SCRAMSHA512": func(user, pass string) sasl.Mechanism {
		return scram.Auth{User: user, Pass: pass}.AsSha512Mechanism()
	},
}

// Publisher implements domain.EventPublisher on top of a kgo.Client.
type Publisher struct {
	client *kgo.Client
	admin  *Admin
	config config.KafkaConfig
}

// NewPublisher creates a publisher from configuration. It does not contact
// the brokers until the first request.
func NewPublisher(cfg config.KafkaConfig) (*Publisher, error) {
	opts, err := clientOpts(cfg)
	if err != nil {
		return nil, err
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		client: client,
		admin:  NewAdmin(kadm.NewClient(client)),
		config: cfg,
	}, nil
}

// IsHealthy reports whether broker metadata can be fetched.
func (p *Publisher) IsHealthy(ctx context.Context) bool {
	if p == nil || p.admin == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	_, err := p.admin.BrokerMetadata(ctx)
	return err == nil
}

// EnsureTopic creates the configured topic if needed.
func (p *Publisher) EnsureTopic(ctx context.Context) error {
	if p == nil || p.admin == nil {
		return nil
	}
	partitions := p.config.Partitions
	if partitions <= 0 {
		partitions = 1
	}
	rf := p.config.ReplicationFactor
	if rf <= 0 {
		rf = 1
	}
	if err := p.admin.EnsureTopic(ctx, p.config.Topic, partitions, rf); err != nil {
		return fmt.Errorf("ensure topic %s: %w", p.config.Topic, err)
	}
	return nil
}

// Publish sends ev synchronously, keyed by the default language code.
func (p *Publisher) Publish(ctx context.Context, ev domain.ReloadEvent) error {
	if p == nil || p.client == nil {
		return nil
	}
	rec, err := newRecord(p.config.Topic, ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, produceTimeout)
	defer cancel()
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("publish reload %s: %w", ev.ID, err)
	}
	utils.Logger.Debug("reload event published", "topic", rec.Topic, "id", ev.ID)
	return nil
}

// Close releases resources
func (p *Publisher) Close() {
	if p != nil && p.client != nil {
		p.client.Close()
	}
}

func newRecord(topic string, ev domain.ReloadEvent) (*kgo.Record, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode reload event: %w", err)
	}
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(ev.Default),
		Value: value,
		Headers: []kgo.RecordHeader{
			{Key: "content-type", Value: []byte("application/json")},
		},
		Timestamp: ev.LoadedAt,
	}, nil
}

// clientOpts builds the franz-go options for cfg: seeds, identity, produce
// topic and whatever TLS or SASL the config asks for.
func clientOpts(cfg config.KafkaConfig) ([]kgo.Opt, error) {
	var opts []kgo.Opt
	if len(cfg.Brokers) > 0 {
		opts = append(opts, kgo.SeedBrokers(cfg.Brokers...))
	}
	if cfg.ClientID != "" {
		opts = append(opts, kgo.ClientID(cfg.ClientID))
	}
	if cfg.Topic != "" {
		opts = append(opts, kgo.DefaultProduceTopic(cfg.Topic))
	}

	if t := cfg.TLS; t != nil && t.Enabled {
		tc, err := loadTLS(t)
		if err != nil {
			return nil, fmt.Errorf("kafka tls: %w", err)
		}
		opts = append(opts, kgo.DialTLSConfig(tc))
	}

	var mechs []sasl.Mechanism
	if s := cfg.SASL; s != nil && s.Mechanism != "" {
		m, err := saslFor(s)
		if err != nil {
			return nil, fmt.Errorf("kafka sasl: %w", err)
		}
		mechs = append(mechs, m)
	}
	if a := cfg.AWS; a != nil && a.IAM {
		if m := mskIAM(a); m != nil {
			mechs = append(mechs, m)
		} else {
			utils.Logger.Warn("aws iam enabled but no credentials found in the environment")
		}
	}
	if len(mechs) > 0 {
		opts = append(opts, kgo.SASL(mechs...))
	}
	return opts, nil
}

func loadTLS(t *config.TLSConfig) (*tls.Config, error) {
	tc := &tls.Config{InsecureSkipVerify: t.InsecureSkipVerify}

	if t.CAFile != "" {
		pem, err := os.ReadFile(t.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read ca %s: %w", t.CAFile, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", t.CAFile)
		}
		tc.RootCAs = pool
	}

	if t.CertFile != "" || t.KeyFile != "" {
		pair, err := tls.LoadX509KeyPair(t.CertFile, t.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tc.Certificates = append(tc.Certificates, pair)
	}
	return tc, nil
}

func saslFor(s *config.SASLConfig) (sasl.Mechanism, error) {
	name := strings.ReplaceAll(strings.ToUpper(s.Mechanism), "-", "")
	build, ok := saslMechanisms[name]
	if !ok {
		return nil, fmt.Errorf("unsupported mechanism %q", s.Mechanism)
	}
	return build(envOr(s.UsernameEnv, s.Username), envOr(s.PasswordEnv, s.Password)), nil
}

// mskIAM returns the AWS MSK IAM mechanism, or nil without credentials.
func mskIAM(a *config.AWSConfig) sasl.Mechanism {
	auth := aws.Auth{
		AccessKey:    envOr(a.AccessKeyEnv, os.Getenv("AWS_ACCESS_KEY_ID")),
		SecretKey:    envOr(a.SecretKeyEnv, os.Getenv("AWS_SECRET_ACCESS_KEY")),
		SessionToken: envOr(a.SessionTokenEnv, os.Getenv("AWS_SESSION_TOKEN")),
	}
	if auth.AccessKey == "" || auth.SecretKey == "" {
		return nil
	}
	return auth.AsManagedStreamingIAMMechanism()
}

// envOr returns the value of the environment variable name, or fallback when
// name is empty or unset.
func envOr(name, fallback string) string {
	if name != "" {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return fallback
}
