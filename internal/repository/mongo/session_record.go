package mongo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dtroode/brainlag-server/internal/model"
)

var _ model.SessionRecordStore = (*SessionRecordRepository)(nil)

type sessionRecordDocument struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Input     bson.D    `bson:"input"`
	Result    bson.D    `bson:"result"`
	CreatedAt time.Time `bson:"created_at"`
}

type storedSessionRecord struct {
	ID        string    `bson:"_id"`
	Email     string    `bson:"email"`
	Input     bson.Raw  `bson:"input"`
	Result    bson.Raw  `bson:"result"`
	CreatedAt time.Time `bson:"created_at"`
}

type SessionRecordRepository struct {
	coll *mongo.Collection
}

func NewSessionRecordRepository(db *mongo.Database) *SessionRecordRepository {
	return &SessionRecordRepository{coll: db.Collection(sessionsCollection)}
}

func (r *SessionRecordRepository) Create(ctx context.Context, record model.SessionRecord) (model.SessionRecord, error) {
	input, err := toDocument(record.Input)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to encode session input: %w", err)
	}
	result, err := toDocument(record.Result)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to encode load result: %w", err)
	}

	// BSON dates carry millisecond precision
	record.CreatedAt = record.CreatedAt.UTC().Truncate(time.Millisecond)
	doc := sessionRecordDocument{
		ID:        record.ID.String(),
		Email:     record.Email,
		Input:     input,
		Result:    result,
		CreatedAt: record.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to create session record: %w", err)
	}
	return record, nil
}

func (r *SessionRecordRepository) ListByEmail(ctx context.Context, q model.SessionRecordQuery) ([]model.SessionRecord, int64, error) {
	if err := q.Check(); err != nil {
		return nil, 0, err
	}

	filter := bson.D{{Key: "email", Value: q.Email}}
	if q.From != nil || q.To != nil {
		rng := bson.D{}
		if q.From != nil {
			rng = append(rng, bson.E{Key: "$gte", Value: *q.From})
		}
		if q.To != nil {
			rng = append(rng, bson.E{Key: "$lte", Value: *q.To})
		}
		filter = append(filter, bson.E{Key: "created_at", Value: rng})
	}

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count session records: %w", err)
	}
	if total == 0 || int64(q.Offset) >= total {
		return []model.SessionRecord{}, total, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list session records: %w", err)
	}
	defer cursor.Close(ctx)

	records := make([]model.SessionRecord, 0, q.Limit)
	for cursor.Next(ctx) {
		var doc storedSessionRecord
		if err := cursor.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("failed to decode session record: %w", err)
		}
		record, err := doc.toModel()
		if err != nil {
			return nil, 0, err
		}
		records = append(records, record)
	}
	if err := cursor.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate session records: %w", err)
	}

	return records, total, nil
}

func (d storedSessionRecord) toModel() (model.SessionRecord, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to parse session record id: %w", err)
	}
	record := model.SessionRecord{ID: id, Email: d.Email, CreatedAt: d.CreatedAt.UTC()}
	if err := fromDocument(d.Input, &record.Input); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to decode session input: %w", err)
	}
	if err := fromDocument(d.Result, &record.Result); err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to decode load result: %w", err)
	}
	return record, nil
}
