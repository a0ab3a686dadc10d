// File: database/repository/technician/search.go
package technicianRepo

import (
	"context"
	"fmt"
	"time"

	"fixline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Search runs a $geoNear aggregation: verified technicians offering the skill,
// minus the excluded set, nearest first, truncated to the limit.
func (r *MongoTechnicianRepo) Search(ctx context.Context, criteria SearchCriteria) ([]models.CandidateSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var pipeline mongo.Pipeline

	// $geoNear must come first to filter and sort by distance.
	pipeline = append(pipeline, bson.D{
		{Key: "$geoNear", Value: bson.D{
			{Key: "near", Value: bson.D{
				{Key: "type", Value: "Point"},
				{Key: "coordinates", Value: criteria.Origin.Coordinates},
			}},
			{Key: "distanceField", Value: "distance"},
			{Key: "spherical", Value: true},
			{Key: "maxDistance", Value: criteria.MaxDistanceMeters},
		}},
	})

	matchFilter := bson.M{
		"verified": true,
		"skills":   criteria.Skill,
	}
	if len(criteria.Exclude) > 0 {
		matchFilter["id"] = bson.M{"$nin": criteria.Exclude}
	}
	pipeline = append(pipeline, bson.D{{Key: "$match", Value: matchFilter}})

	if criteria.Limit > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$limit", Value: criteria.Limit}})
	}

	pipeline = append(pipeline, bson.D{{Key: "$project", Value: bson.M{
		"id":        1,
		"full_name": 1,
		"distance":  1,
	}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("candidate search failed: %w", err)
	}
	defer cursor.Close(ctx)

	var candidates []models.CandidateSummary
	if err := cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("failed to decode candidates: %w", err)
	}
	return candidates, nil
}
