package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"reelsmith/api"
	"reelsmith/config"
	"reelsmith/services"
)

const (
	// DefaultAPIPort is the default port for the HTTP API server
	DefaultAPIPort = ":8081"
)

func main() {
	batchMode := flag.Bool("batch", false, "Run in batch mode (process request files from input/ directory)")
	kafkaMode := flag.Bool("kafka", false, "Run in Kafka consumer mode (consume reel requests from Kafka)")
	apiPort := flag.String("port", DefaultAPIPort, "API server port (e.g., :8081)")
	flag.Parse()

	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	log.Println("Reelsmith - Starting...")

	proc, err := services.NewReelProcessor(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize processor: %v", err)
	}

	if *batchMode {
		log.Println("Running in BATCH mode")
		if err := proc.ProcessFromDirectory(context.Background(), config.InputDir); err != nil {
			log.Fatalf("Batch processing failed: %v", err)
		}
		os.Exit(0)
	}

	if *kafkaMode {
		log.Println("Running in KAFKA consumer mode")

		kafkaConfig := services.KafkaConfig{
			Brokers:   services.GetKafkaBrokers(),
			Topic:     services.GetKafkaTopic(),
			GroupID:   services.GetKafkaGroupID(),
			Processor: proc,
		}

		log.Printf("Kafka brokers: %v", kafkaConfig.Brokers)
		log.Printf("Topic: %s", kafkaConfig.Topic)
		log.Printf("Consumer group: %s", kafkaConfig.GroupID)

		if err := services.StartConsumerWithGracefulShutdown(kafkaConfig); err != nil {
			log.Fatalf("Kafka consumer failed: %v", err)
		}
		os.Exit(0)
	}

	log.Println("Running in API mode")

	r := api.NewRouter(proc)
	log.Printf("API server listening on %s", *apiPort)
	log.Println("Endpoints:")
	log.Println("  POST /api/reels             - Submit a reel request")
	log.Println("  GET  /api/reels/:id/status  - Request status")
	log.Println("  GET  /api/health            - Health check")

	if err := http.ListenAndServe(*apiPort, r); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
