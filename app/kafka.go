package app

import (
	"bytes"
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/twmb/franz-go/pkg/kgo"
	"github.com/weaveworks/common/mtime"

	"github.com/weaveworks/xltop/common/instrument"
)

// DefaultKafkaGroup is the consumer group used when none is configured.
const DefaultKafkaGroup = "xltop"

// KafkaConfig says where servers publish their reports. Each record is keyed
// by the server name and holds text report lines.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	Group   string   `yaml:"group"`
}

// Enabled is true when there is something to consume.
func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

// KafkaSource feeds reports read from Kafka into the engine.
type KafkaSource struct {
	s  *Server
	cl *kgo.Client
}

// NewKafkaSource connects to the configured brokers.
func NewKafkaSource(s *Server, cfg KafkaConfig) (*KafkaSource, error) {
	group := cfg.Group
	if group == "" {
		group = DefaultKafkaGroup
	}
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ConsumerGroup(group),
		kgo.ConsumeTopics(cfg.Topic),
	)
	if err != nil {
		return nil, errors.Wrap(err, "cannot create kafka client")
	}
	return &KafkaSource{s: s, cl: cl}, nil
}

// Run consumes until ctx is done or the client is closed.
func (k *KafkaSource) Run(ctx context.Context) error {
	for {
		fetches := k.cl.PollFetches(ctx)
		if fetches.IsClientClosed() || ctx.Err() != nil {
			return nil
		}
		for _, err := range fetches.Errors() {
			log.Warnf("kafka: %s[%d]: %v", err.Topic, err.Partition, err.Err)
		}
		err := instrument.TimeRequestHistogram("poll", kafkaPollDuration, func() error {
			iter := fetches.RecordIter()
			for !iter.Done() {
				k.apply(iter.Next())
			}
			return k.cl.CommitUncommittedOffsets(ctx)
		})
		if err != nil && ctx.Err() == nil {
			log.Warnf("kafka: commit failed: %v", err)
		}
	}
}

func (k *KafkaSource) apply(rec *kgo.Record) {
	serv := string(rec.Key)
	if serv == "" {
		malformedLines.WithLabelValues("kafka").Inc()
		return
	}
	res, err := k.s.IngestLines("kafka", serv, bytes.NewReader(rec.Value), mtime.Now())
	if err != nil {
		log.Warnf("kafka: report from %s: %v", serv, err)
		return
	}
	log.Debugf("kafka: report from %s: %d accepted, %d dropped", serv, res.Accepted, res.Dropped)
}

// Close leaves the group and closes the client.
func (k *KafkaSource) Close() {
	k.cl.Close()
}
