package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var MongoClient *mongo.Client
var MongoDB *mongo.Database
var MongoLoginEvents *mongo.Collection

// InitMongoDB connects to MONGO_URI. Without a URI the audit trail is disabled
// and nil is returned with MongoClient left unset.
func InitMongoDB() error {
	if MongoURI == "" {
		Log.Warn("MONGO_URI not set, login audit disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}

	Log.Info("connected to MongoDB")

	MongoClient = client
	MongoDB = client.Database(MongoDBName)
	MongoLoginEvents = MongoDB.Collection("login_events")

	return nil
}

func CloseMongoDB(ctx context.Context) error {
	if MongoClient != nil {
		return MongoClient.Disconnect(ctx)
	}
	return nil
}
