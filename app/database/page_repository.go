package database

import (
	"database/sql"
	"fmt"
	"time"
)

var _ PageRepository = (*PageRepo)(nil)

type PageRepo struct {
	db *DB
}

func NewPageRepository(db *DB) *PageRepo {
	return &PageRepo{db: db}
}

// GetPage returns the stored page for episodeID, or nil when none is stored.
func (r *PageRepo) GetPage(episodeID string) (*Page, error) {
	var page Page
	var generatedAt int64

	err := r.db.QueryRow(`
		SELECT episode_id, html, props, generated_at
		FROM pages
		WHERE episode_id = ?
	`, episodeID).Scan(&page.EpisodeID, &page.HTML, &page.Props, &generatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	page.GeneratedAt = time.Unix(0, generatedAt).UTC()
	return &page, nil
}

func (r *PageRepo) GetPageCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return count, nil
}

func (r *PageRepo) ListEpisodeIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT episode_id FROM pages ORDER BY generated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func (r *PageRepo) UpsertPage(page Page) error {
	generatedAt := page.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	_, err := r.db.Exec(`
		INSERT INTO pages (episode_id, html, props, generated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (episode_id) DO UPDATE SET
			html = excluded.html,
			props = excluded.props,
			generated_at = excluded.generated_at
	`, page.EpisodeID, page.HTML, page.Props, generatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert page: %w", err)
	}

	return nil
}

func (r *PageRepo) DeletePage(episodeID string) error {
	_, err := r.db.Exec("DELETE FROM pages WHERE episode_id = ?", episodeID)
	if err != nil {
		return fmt.Errorf("failed to delete page: %w", err)
	}
	return nil
}
