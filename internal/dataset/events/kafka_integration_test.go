//go:build integration

package events_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"afi/internal/dataset/events"
	"afi/internal/dataset/models"
	"afi/pkg/testutil/containers"
)

type KafkaPublisherSuite struct {
	suite.Suite
	broker    *containers.RedpandaContainer
	publisher *events.KafkaPublisher
	topic     string
}

func TestKafkaPublisherSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(KafkaPublisherSuite))
}

func (s *KafkaPublisherSuite) SetupSuite() {
	s.broker = containers.NewRedpandaContainer(s.T())
	s.topic = "afi.test.replaced"

	p, err := events.NewKafkaPublisher([]string{s.broker.Broker}, s.topic, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.Require().NoError(err)
	s.T().Cleanup(p.Close)
	s.publisher = p

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1))
	s.Require().NoError(s.publisher.EnsureTopic(ctx, 1, 1), "second ensure tolerates an existing topic")
}

func (s *KafkaPublisherSuite) TestPublishedEventIsConsumable() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	event := models.ReplacementEvent{
		JobID:      "job-42",
		Success:    true,
		Count:      2300,
		OccurredAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.publisher.DatasetReplaced(ctx, event))

	consumer, err := kgo.NewClient(
		kgo.SeedBrokers(s.broker.Broker),
		kgo.ConsumeTopics(s.topic),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
	)
	s.Require().NoError(err)
	defer consumer.Close()

	fetches := consumer.PollFetches(ctx)
	s.Require().Empty(fetches.Errors())
	records := fetches.Records()
	s.Require().NotEmpty(records)

	var got struct {
		Type string `json:"type"`
		models.ReplacementEvent
	}
	s.Require().NoError(json.Unmarshal(records[0].Value, &got))
	s.Equal("dataset.replaced", got.Type)
	s.Equal(event, got.ReplacementEvent)
	s.Equal([]byte(models.TableName), records[0].Key)
}
