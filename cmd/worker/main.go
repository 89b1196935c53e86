package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OFFIS-RIT/scorelink/internal/config"
	"github.com/OFFIS-RIT/scorelink/internal/pipeline"
	"github.com/OFFIS-RIT/scorelink/internal/queue"
	"github.com/OFFIS-RIT/scorelink/internal/storage"
	"github.com/OFFIS-RIT/scorelink/internal/util"
	"github.com/OFFIS-RIT/scorelink/pkg/leaselock"
	"github.com/OFFIS-RIT/scorelink/pkg/logger"
	"github.com/OFFIS-RIT/scorelink/pkg/logger/console"

	"github.com/jackc/pgx/v5/pgxpool"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func main() {
	util.LoadEnv()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(util.GetEnv("SCORELINK_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// logger
	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug:  cfg.Debug,
		Prefix: "worker",
		JSON:   util.GetEnvBool("LOG_JSON", false),
	})
	logger.Init(consoleLogger)

	// documents are always read from s3, snapshots go to the configured store
	s3Client, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		logger.Fatal("Could not create S3 client", "err", err)
	}
	docs := storage.NewDocuments(s3Client, cfg.Store.Bucket)

	snapshots, err := storage.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("Could not open snapshot store", "err", err)
	}
	defer snapshots.Close()

	// postgres deployments run several workers, lease each document
	var locker queue.Locker
	if cfg.Store.Kind == config.StorePostgres {
		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			logger.Fatal("Could not connect lease pool", "err", err)
		}
		defer pool.Close()
		locker = leaselock.New(pool, leaselock.Options{
			TTL:          2 * time.Minute,
			Wait:         true,
			WaitInterval: time.Second,
			WaitJitter:   500 * time.Millisecond,
			HolderPrefix: "worker-",
		})
	}

	params, err := pipeline.ParamsFromConfig(cfg, snapshots)
	if err != nil {
		logger.Fatal("Invalid pipeline configuration", "err", err)
	}

	// Init rabbitmq
	conn, err := queue.Dial(cfg.Queue)
	if err != nil {
		logger.Fatal("Failed to connect to RabbitMQ", "err", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		logger.Fatal("Failed to open channel", "err", err)
	}
	defer ch.Close()

	if err := queue.SetupQueues(ch, []string{queue.ResolveQueue}); err != nil {
		logger.Fatal("Failed to declare queues", "err", err)
	}

	// one message at a time, resolution already runs systems in parallel
	if err := ch.Qos(1, 0, false); err != nil {
		logger.Fatal("Failed to set QoS", "err", err)
	}

	msgs, err := ch.Consume(
		queue.ResolveQueue,
		"resolve_queue_consumer",
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,   // args
	)
	if err != nil {
		logger.Fatal("Failed to start consuming", "queue", queue.ResolveQueue, "err", err)
	}

	logger.Info("[Worker] Listening for messages", "queue", queue.ResolveQueue, "strategy", params.Strategy)

	for {
		select {
		case <-ctx.Done():
			logger.Info("Shutdown signal received, exiting...")
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Info("[Worker] Message channel closed", "queue", queue.ResolveQueue)
				return
			}

			startTime := time.Now()
			jobID, err := gonanoid.New()
			if err != nil {
				jobID = fmt.Sprintf("delivery-%d", msg.DeliveryTag)
			}
			logger.Info("[Worker] Received message", "queue", queue.ResolveQueue, "job", jobID)

			_, processingErr := queue.ProcessResolveMessage(ctx, docs, locker, params, msg.Body)
			if processingErr != nil {
				logger.Error("[Worker] Error processing message", "queue", queue.ResolveQueue, "job", jobID, "err", processingErr)
				queue.HandleProcessingError(ch, msg, queue.ResolveQueue, cfg.Queue.MaxRetries)
				continue
			}
			if err := msg.Ack(false); err != nil {
				logger.Error("[Worker] Failed to ack message", "err", err)
			}
			logger.Info("[Worker] Message processed", "queue", queue.ResolveQueue, "job", jobID, "duration", time.Since(startTime).Round(time.Millisecond))
		}
	}
}
