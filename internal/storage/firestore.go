package storage

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/pauljones0/rental-board/internal/models"
)

const firestoreCollection = "transitions"

type Client struct {
	client *firestore.Client
}

func New(ctx context.Context, projectID string) (*Client, error) {
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore.NewClient: %w", err)
	}
	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// RecordTransition stores t under its ID. Create fails if the document already exists.
func (c *Client) RecordTransition(ctx context.Context, t models.Transition) error {
	docRef := c.client.Collection(firestoreCollection).Doc(t.ID)
	if _, err := docRef.Create(ctx, t); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return models.ErrTransitionExists
		}
		return fmt.Errorf("failed to record transition %s: %w", t.ID, err)
	}
	return nil
}

// RecentTransitions returns up to limit transitions requested by email, newest first.
func (c *Client) RecentTransitions(ctx context.Context, email string, limit int) ([]models.Transition, error) {
	iter := c.client.Collection(firestoreCollection).
		Where("managerEmail", "==", email).
		OrderBy("requestedAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)
	defer iter.Stop()

	out := make([]models.Transition, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate transitions: %w", err)
		}
		var t models.Transition
		if err := doc.DataTo(&t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transition %s: %w", doc.Ref.ID, err)
		}
		t.ID = doc.Ref.ID
		out = append(out, t)
	}
	return out, nil
}

// TrimOldTransitions deletes the oldest transitions (by requestedAt) beyond maxTransitions.
func (c *Client) TrimOldTransitions(ctx context.Context, maxTransitions int) error {
	collectionRef := c.client.Collection(firestoreCollection)

	countSnapshot, err := collectionRef.NewAggregationQuery().WithCount("all").Get(ctx)
	if err != nil {
		return fmt.Errorf("failed to get transition count for trimming: %w", err)
	}
	current, err := countFromAggregation(countSnapshot, "all")
	if err != nil {
		return err
	}
	if current <= int64(maxTransitions) {
		return nil
	}

	numToDelete := int(current) - maxTransitions
	slog.Info("Trimming transitions", "current", current, "max", maxTransitions, "deleting", numToDelete)

	iter := collectionRef.
		OrderBy("requestedAt", firestore.Asc).
		Limit(numToDelete).
		Documents(ctx)
	defer iter.Stop()

	deletedCount := 0
	bulkWriter := c.client.BulkWriter(ctx)
	defer bulkWriter.End()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate transitions for trimming: %w", err)
		}
		if _, err := bulkWriter.Delete(doc.Ref); err != nil {
			slog.Warn("Failed to queue transition delete", "id", doc.Ref.ID, "error", err)
			continue
		}
		deletedCount++
	}

	if deletedCount > 0 {
		bulkWriter.Flush()
		slog.Info("Trimmed transitions", "deleted", deletedCount)
	}
	return nil
}

// countFromAggregation reads a count aggregation value. The client returns
// *firestorepb.Value; int64 is accepted for emulators and older clients.
func countFromAggregation(result firestore.AggregationResult, key string) (int64, error) {
	raw, ok := result[key]
	if !ok {
		return 0, fmt.Errorf("count aggregation result was invalid: %q key missing", key)
	}
	switch v := raw.(type) {
	case int64:
		return v, nil
	case *firestorepb.Value:
		return v.GetIntegerValue(), nil
	default:
		return 0, fmt.Errorf("count aggregation result has unexpected type %T", raw)
	}
}
