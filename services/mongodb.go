package services

import (
	"context"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	ExchangesCollection = "exchanges"
	UsersCollection     = "users"
	SessionsCollection  = "sessions"
)

var (
	mongoClient *mongo.Client
	database    *mongo.Database
)

// GetDatabase returns the MongoDB database instance
func GetDatabase() *mongo.Database {
	return database
}

// InitMongoDB initializes MongoDB connection
func InitMongoDB(ctx context.Context, uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB")
	mongoClient = client

	return client, nil
}

// InitServices selects the database and creates indexes
func InitServices(client *mongo.Client, databaseName string) {
	database = client.Database(databaseName)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := createIndexes(ctx); err != nil {
		// The app still works without indexes, only slower
		slog.Error("Failed to create indexes", "error", err)
	}
}

func createIndexes(ctx context.Context) error {
	if _, err := database.Collection(ExchangesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"session_id": 1}},
		{Keys: bson.M{"category_id": 1}},
		{Keys: bson.M{"timestamp": -1}},
	}); err != nil {
		return err
	}

	if _, err := database.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.M{"email": 1},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}

	return CreateSessionIndexes(ctx)
}
