package db

import (
	"fmt"

	"github.com/google/uuid"
)

func RecordPageView(slug, visitorHash, referrer string) error {
	_, err := Conn.Exec(Conn.Rebind("INSERT INTO page_views (id, slug, visitor_hash, referrer, created_at) VALUES (?, ?, ?, ?, ?)"),
		uuid.New().String(), slug, visitorHash, referrer, now())

	if err != nil {
		return fmt.Errorf("error recording page view: %v", err)
	}
	return nil
}

func GetPageViewStats(slug string) (*PageViewStats, error) {
	stats := PageViewStats{Slug: slug}
	err := Conn.Get(&stats, Conn.Rebind("SELECT COUNT(*) AS views, COUNT(DISTINCT visitor_hash) AS unique_visitors FROM page_views WHERE slug = ?"), slug)
	if err != nil {
		return nil, fmt.Errorf("error getting page view stats: %v", err)
	}
	return &stats, nil
}

func TopPages(limit int) ([]*PageViewStats, error) {
	if limit <= 0 {
		limit = 10
	}

	stats := []*PageViewStats{}
	err := Conn.Select(&stats, Conn.Rebind(`SELECT slug, COUNT(*) AS views, COUNT(DISTINCT visitor_hash) AS unique_visitors
	FROM page_views GROUP BY slug ORDER BY views DESC, slug ASC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("error listing top pages: %v", err)
	}
	return stats, nil
}
