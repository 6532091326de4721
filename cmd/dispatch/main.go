// Command dispatch queues one outbound call for the agent workers.
//
//	dispatch -phone +14155550100 -persona appointment-confirmation
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"outbound-caller/internal/agent"
	"outbound-caller/internal/clients/kafka"
	"outbound-caller/internal/observability"
	"outbound-caller/internal/outbound"

	"github.com/joho/godotenv"
)

func main() {
	phone := flag.String("phone", "", "destination number in E.164 format")
	persona := flag.String("persona", "", "persona to call with: "+strings.Join(agent.PersonaKeys(), ", "))
	flag.Parse()

	logger := observability.NewLogger()
	defer logger.Sync()
	ctx := context.Background()

	if os.Getenv("GO_ENV") != "production" {
		if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Fatal(ctx, "failed to load .env.local", err)
		}
	}

	if *persona != "" {
		if _, err := agent.LookupPersona(*persona, agent.ToolOptions{Logger: logger}); err != nil {
			logger.Fatal(ctx, "invalid -persona", err)
		}
	}

	req := outbound.NewCallRequest(*phone, *persona)
	if err := req.Validate(); err != nil {
		logger.Fatal(ctx, "invalid -phone", err)
	}

	brokers := os.Getenv("KAFKA_BROKERS")
	if brokers == "" {
		brokers = "localhost:9092"
	}
	topic := os.Getenv("KAFKA_CALL_TOPIC")
	if topic == "" {
		topic = "outbound.calls"
	}

	producer := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: strings.Split(brokers, ","),
		Topic:   topic,
	}, logger)
	defer producer.Close()

	publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := producer.PublishCall(publishCtx, req); err != nil {
		logger.Fatal(ctx, "failed to queue call", err)
	}

	fmt.Printf("queued call %s to %s in room %s\n", req.CallID, req.PhoneNumber, req.RoomName)
}
