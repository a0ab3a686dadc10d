// File: database/repository/technician/technician_mongo.go
package technicianRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fixline/database"
	"fixline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTechnicianRepo implements TechnicianRepository using MongoDB.
type MongoTechnicianRepo struct {
	coll *mongo.Collection
}

// NewMongoTechnicianRepo creates a new TechnicianRepository backed by the
// "technicians" collection.
func NewMongoTechnicianRepo() TechnicianRepository {
	coll := database.MongoClient.Database("fixline").Collection("technicians")
	repo := &MongoTechnicianRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates the 2dsphere and lookup indexes the search relies on.
func (r *MongoTechnicianRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "skills", Value: 1}, {Key: "verified", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoTechnicianRepo) GetByID(ctx context.Context, id string) (*models.Technician, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var technician models.Technician
	filter := bson.M{"id": id}
	if err := r.coll.FindOne(ctx, filter).Decode(&technician); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("technician with id %s not found", id)
		}
		return nil, fmt.Errorf("failed to fetch technician with id %s: %w", id, err)
	}
	return &technician, nil
}

func (r *MongoTechnicianRepo) IsEligible(ctx context.Context, id, skill string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "verified": true, "skills": skill}
	count, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("eligibility check failed for technician %s: %w", id, err)
	}
	return count > 0, nil
}
