package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dtroode/brainlag-server/internal/model"
)

var _ model.SessionRecordStore = (*SessionRecordRepository)(nil)

type SessionRecordRepository struct {
	db DBTX
}

func NewSessionRecordRepository(db DBTX) *SessionRecordRepository {
	return &SessionRecordRepository{
		db: db,
	}
}

func (r *SessionRecordRepository) Create(ctx context.Context, record model.SessionRecord) (model.SessionRecord, error) {
	input, err := json.Marshal(record.Input)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to marshal session input: %w", err)
	}
	result, err := json.Marshal(record.Result)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to marshal load result: %w", err)
	}

	query := `INSERT INTO student_data (id, email, input, result, created_at)
			  VALUES ($1, $2, $3::jsonb, $4::jsonb, $5)
			  RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		record.ID, record.Email, string(input), string(result), record.CreatedAt,
	).Scan(&record.CreatedAt)
	if err != nil {
		return model.SessionRecord{}, fmt.Errorf("failed to create session record: %w", err)
	}

	record.CreatedAt = record.CreatedAt.UTC()
	return record, nil
}

func (r *SessionRecordRepository) ListByEmail(ctx context.Context, q model.SessionRecordQuery) ([]model.SessionRecord, int64, error) {
	if err := q.Check(); err != nil {
		return nil, 0, err
	}

	where, args := buildSessionFilter(q)

	var total int64
	countQuery := `SELECT COUNT(*) FROM student_data WHERE ` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count session records: %w", err)
	}

	if total == 0 || int64(q.Offset) >= total {
		return []model.SessionRecord{}, total, nil
	}

	args = append(args, q.Limit, q.Offset)
	listQuery := `SELECT id, email, input, result, created_at FROM student_data WHERE ` + where +
		` ORDER BY created_at DESC, id DESC LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, listQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list session records: %w", err)
	}
	defer rows.Close()

	records := make([]model.SessionRecord, 0, q.Limit)
	for rows.Next() {
		var (
			record        model.SessionRecord
			input, result []byte
		)
		if err := rows.Scan(&record.ID, &record.Email, &input, &result, &record.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan session record: %w", err)
		}
		if err := json.Unmarshal(input, &record.Input); err != nil {
			return nil, 0, fmt.Errorf("failed to decode session input: %w", err)
		}
		if err := json.Unmarshal(result, &record.Result); err != nil {
			return nil, 0, fmt.Errorf("failed to decode load result: %w", err)
		}
		record.CreatedAt = record.CreatedAt.UTC()
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate session records: %w", err)
	}

	return records, total, nil
}

func buildSessionFilter(q model.SessionRecordQuery) (string, []any) {
	conds := []string{"email = $1"}
	args := []any{q.Email}
	if q.From != nil {
		args = append(args, *q.From)
		conds = append(conds, "created_at >= $"+strconv.Itoa(len(args)))
	}
	if q.To != nil {
		args = append(args, *q.To)
		conds = append(conds, "created_at <= $"+strconv.Itoa(len(args)))
	}
	return strings.Join(conds, " AND "), args
}
