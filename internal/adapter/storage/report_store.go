// internal/adapter/storage/report_store.go

package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"convosense/internal/domain/analysis"
)

// ReportStore implements storage for analysis reports
type ReportStore struct {
	db *pgxpool.Pool
}

// NewReportStore creates a new report store
func NewReportStore(db *pgxpool.Pool) *ReportStore {
	return &ReportStore{
		db: db,
	}
}

// Save persists a report and returns its storage ID
func (s *ReportStore) Save(ctx context.Context, report *analysis.Report) (string, error) {
	query := `
		INSERT INTO reports (
			id, query, uid, created_at, items_analyzed,
			sentiment_summary, toxicity_summary, topics, items, top_toxic
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10
		)
	`

	createdAt := report.Timestamp
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	sentimentJSON, err := json.Marshal(report.SentimentSummary)
	if err != nil {
		return "", fmt.Errorf("error marshaling sentiment summary: %w", err)
	}

	toxicityJSON, err := json.Marshal(report.ToxicitySummary)
	if err != nil {
		return "", fmt.Errorf("error marshaling toxicity summary: %w", err)
	}

	topicsJSON, err := json.Marshal(report.Topics)
	if err != nil {
		return "", fmt.Errorf("error marshaling topics: %w", err)
	}

	itemsJSON, err := json.Marshal(report.Items)
	if err != nil {
		return "", fmt.Errorf("error marshaling items: %w", err)
	}

	topToxicJSON, err := json.Marshal(report.TopToxic)
	if err != nil {
		return "", fmt.Errorf("error marshaling top toxic excerpts: %w", err)
	}

	var uid *string
	if report.UserID != "" {
		uid = &report.UserID
	}

	_, err = s.db.Exec(
		ctx,
		query,
		report.ID,
		report.Query,
		uid,
		createdAt,
		report.ItemsAnalyzed,
		sentimentJSON,
		toxicityJSON,
		topicsJSON,
		itemsJSON,
		topToxicJSON,
	)

	if err != nil {
		return "", fmt.Errorf("error executing query: %w", err)
	}

	return report.ID, nil
}

// ListRecent returns the most recently created reports
func (s *ReportStore) ListRecent(ctx context.Context, limit int) ([]analysis.Report, error) {
	if limit < 1 {
		limit = 10
	}

	query := `
		SELECT
			id, query, uid, created_at, items_analyzed,
			sentiment_summary, toxicity_summary, topics, items, top_toxic
		FROM reports
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var reports []analysis.Report
	for rows.Next() {
		var (
			report        analysis.Report
			uid           *string
			sentimentJSON []byte
			toxicityJSON  []byte
			topicsJSON    []byte
			itemsJSON     []byte
			topToxicJSON  []byte
		)

		if err := rows.Scan(
			&report.ID,
			&report.Query,
			&uid,
			&report.Timestamp,
			&report.ItemsAnalyzed,
			&sentimentJSON,
			&toxicityJSON,
			&topicsJSON,
			&itemsJSON,
			&topToxicJSON,
		); err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}

		if uid != nil {
			report.UserID = *uid
		}

		if err := json.Unmarshal(sentimentJSON, &report.SentimentSummary); err != nil {
			return nil, fmt.Errorf("error unmarshaling sentiment summary: %w", err)
		}
		if err := json.Unmarshal(toxicityJSON, &report.ToxicitySummary); err != nil {
			return nil, fmt.Errorf("error unmarshaling toxicity summary: %w", err)
		}
		if err := json.Unmarshal(topicsJSON, &report.Topics); err != nil {
			return nil, fmt.Errorf("error unmarshaling topics: %w", err)
		}
		if err := json.Unmarshal(itemsJSON, &report.Items); err != nil {
			return nil, fmt.Errorf("error unmarshaling items: %w", err)
		}
		if err := json.Unmarshal(topToxicJSON, &report.TopToxic); err != nil {
			return nil, fmt.Errorf("error unmarshaling top toxic excerpts: %w", err)
		}

		reports = append(reports, report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return reports, nil
}
