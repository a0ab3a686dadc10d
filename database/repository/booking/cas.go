// File: database/repository/booking/cas.go
package bookingRepo

import (
	"context"
	"fmt"
	"time"

	"fixline/models"

	"go.mongodb.org/mongo-driver/bson"
)

// The mutations below are the single commit point for cascade resolution.
// Each is one UpdateOne whose filter pins (id, version) — and, for response
// writes, the expected notified technician — so two concurrent responses for
// the same step race on the swap and exactly one can match. The loser sees
// MatchedCount == 0 and gets ErrVersionConflict with no side effect.

// Assign atomically sets the winning technician and moves pending -> accepted.
func (r *MongoBookingRepo) Assign(ctx context.Context, id, technicianID string, expectedVersion int64) error {
	filter := bson.M{
		"id":          id,
		"version":     expectedVersion,
		"notified_to": technicianID,
		"status":      models.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"technician_id": technicianID,
			"status":        models.StatusAccepted,
			"notified_to":   nil,
			"updated_at":    time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.swap(ctx, id, filter, update)
}

// Advance records a rejection by the notified technician and moves the cursor.
func (r *MongoBookingRepo) Advance(ctx context.Context, id, rejectedID string, next *string, expectedVersion int64) error {
	filter := bson.M{
		"id":          id,
		"version":     expectedVersion,
		"notified_to": rejectedID,
		"status":      models.StatusPending,
	}

	set := bson.M{"updated_at": time.Now()}
	if next != nil {
		set["notified_to"] = *next
		set["notified_at"] = time.Now()
	} else {
		// Cascade exhausted.
		set["notified_to"] = nil
		set["status"] = models.StatusRejected
	}

	update := bson.M{
		"$set":  set,
		"$push": bson.M{"rejected_by": rejectedID},
		"$inc":  bson.M{"current_index": 1, "version": 1},
	}
	return r.swap(ctx, id, filter, update)
}

// Cancel moves pending -> cancelled.
func (r *MongoBookingRepo) Cancel(ctx context.Context, id string, expectedVersion int64) error {
	filter := bson.M{
		"id":      id,
		"version": expectedVersion,
		"status":  models.StatusPending,
	}
	update := bson.M{
		"$set": bson.M{
			"status":      models.StatusCancelled,
			"notified_to": nil,
			"updated_at":  time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.swap(ctx, id, filter, update)
}

// Complete moves accepted -> completed for the assigned technician.
func (r *MongoBookingRepo) Complete(ctx context.Context, id, technicianID string, expectedVersion int64) error {
	filter := bson.M{
		"id":            id,
		"version":       expectedVersion,
		"technician_id": technicianID,
		"status":        models.StatusAccepted,
	}
	update := bson.M{
		"$set": bson.M{
			"status":     models.StatusCompleted,
			"updated_at": time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}
	return r.swap(ctx, id, filter, update)
}

// swap runs the compare-and-swap and maps a missed match to the right error.
func (r *MongoBookingRepo) swap(ctx context.Context, id string, filter, update bson.M) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("booking swap failed for id %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
		if err != nil {
			return fmt.Errorf("booking swap lookup failed for id %s: %w", id, err)
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrVersionConflict
	}
	return nil
}
