package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rabbitmq/amqp091-go"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"shipping-label-service/internal/addressval"
	"shipping-label-service/internal/config"
	"shipping-label-service/internal/controller"
	"shipping-label-service/internal/logging"
	"shipping-label-service/internal/middleware"
	"shipping-label-service/internal/rabbit"
	"shipping-label-service/internal/repository"
	"shipping-label-service/internal/service"
)

func main() {
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// MongoDB connection
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(cfg.MongoURI).
		SetRegistry(repository.NewRegistry()))
	if err != nil {
		logger.Fatal("mongo connection failed", zap.Error(err))
	}
	db := client.Database(cfg.MongoDBName)

	// Repositories
	shipmentRepo := repository.NewMongoShipmentRepository(db)
	addressRepo := repository.NewMongoSavedAddressRepository(db)
	packageRepo := repository.NewMongoSavedPackageRepository(db)

	if err := repository.SeedReferenceData(ctx, addressRepo, packageRepo, logger); err != nil {
		logger.Fatal("reference data seeding failed", zap.Error(err))
	}

	// Address validation provider chain
	validator := addressval.NewValidator(cfg, logger)

	// RabbitMQ publisher is optional; without a broker the purchase
	// event is a no-op.
	var publisher service.PurchasePublisher = service.NopPublisher{}
	if cfg.RabbitURL != "" {
		conn, err := amqp091.Dial(cfg.RabbitURL)
		if err != nil {
			logger.Fatal("rabbitmq connection failed", zap.Error(err))
		}
		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal("rabbitmq channel failed", zap.Error(err))
		}
		publisher, err = rabbit.NewPublisher(ch, logger)
		if err != nil {
			logger.Fatal("rabbitmq exchange setup failed", zap.Error(err))
		}
	}

	// Service and handlers
	shipmentService := service.NewShipmentService(
		shipmentRepo, addressRepo, packageRepo, validator, publisher, logger,
	)
	ctrl := controller.NewShipmentController(shipmentService)

	// Router
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery())
	ctrl.RegisterRoutes(r)

	logger.Info("shipping label service listening", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
