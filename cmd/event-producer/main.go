// Command event-producer publishes simulated runner gameplay events to Kafka.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/ingest"
	"github.com/AccelByte/extend-runner-progression/pkg/service"
)

func main() {
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "runner-gameplay-events", "Kafka topic")
	players := flag.Int("players", 100, "Number of simulated players")
	rate := flag.Int("rate", 20, "Runs per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	producer, err := ingest.NewProducer(strings.Split(*brokers, ","), *topic)
	if err != nil {
		logger.Error("failed to create producer", "error", err)
		os.Exit(1)
	}
	defer producer.Close()

	rng := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 7))

	for i := 0; i < *players; i++ {
		if err := producer.Publish(service.GameplayEvent{PlayerID: playerID(i), Kind: service.EventLogin}); err != nil {
			logger.Error("failed to publish login", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("players logged in", "players", *players)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(max(*rate, 1)))
	defer ticker.Stop()
	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var deadline <-chan time.Time
	if *duration > 0 {
		deadline = time.After(*duration)
	}

	var sent, failed int
	for {
		select {
		case <-sigChan:
			logger.Info("shutting down", "sent", sent, "failed", failed)
			return
		case <-deadline:
			logger.Info("duration reached", "sent", sent, "failed", failed)
			return
		case <-statsTicker.C:
			logger.Info("progress", "sent", sent, "failed", failed)
		case <-ticker.C:
			run := simulateRun(rng)
			event := service.GameplayEvent{PlayerID: playerID(rng.IntN(*players)), Kind: service.EventRun, Run: &run}
			if err := producer.Publish(event); err != nil {
				failed++
				logger.Warn("failed to publish run", "error", err)
				continue
			}
			sent++
		}
	}
}

func playerID(i int) string {
	return fmt.Sprintf("runner-%04d", i)
}

func simulateRun(rng *rand.Rand) domain.RunStats {
	distance := 500 + rng.IntN(9500)
	health := domain.MaxHealth
	if rng.IntN(100) < 70 {
		health = rng.IntN(domain.MaxHealth)
	}
	return domain.RunStats{
		Distance:   distance,
		Coins:      distance / 20,
		Score:      distance*3 + rng.IntN(2000),
		Health:     health,
		NearMisses: rng.IntN(15),
		Powerups:   rng.IntN(6),
		Grapples:   rng.IntN(10),
		MaxCombo:   rng.IntN(60),
		Jumps:      rng.IntN(80),
	}
}
