package database

import (
	"database/sql"
	"time"
)

const selectRecords = `
	SELECT id, run_id, timestamp, action, platform, arch, resource_dir, entry, error_message
	FROM removals
`

// Recent returns the N most recent history rows
func (d *PruneDB) Recent(limit int) ([]Record, error) {
	return d.queryRecords(selectRecords+`ORDER BY timestamp DESC, id DESC LIMIT ?`, limit)
}

// ByRun returns every row written by a single run, in insertion order
func (d *PruneDB) ByRun(runID string) ([]Record, error) {
	return d.queryRecords(selectRecords+`WHERE run_id = ? ORDER BY id`, runID)
}

// ByEntry returns rows whose entry matches a SQL LIKE pattern
func (d *PruneDB) ByEntry(pattern string) ([]Record, error) {
	return d.queryRecords(selectRecords+`WHERE entry LIKE ? ORDER BY timestamp DESC, id DESC`, pattern)
}

// Stats holds aggregated history for a time window
type Stats struct {
	Runs         int            `json:"runs"`
	TotalDeleted int            `json:"total_deleted"`
	TotalDryRun  int            `json:"total_dry_run"`
	TotalErrors  int            `json:"total_errors"`
	ByPlatform   map[string]int `json:"by_platform"`
	TopEntries   map[string]int `json:"top_entries"`
	StartDate    time.Time      `json:"start_date"`
	EndDate      time.Time      `json:"end_date"`
}

// GetStats aggregates history from the last days days
func (d *PruneDB) GetStats(days int) (*Stats, error) {
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	stats := &Stats{StartDate: since, EndDate: now}

	err := d.db.QueryRow(`
		SELECT
			COUNT(DISTINCT run_id),
			COUNT(CASE WHEN action = 'DELETE' THEN 1 END),
			COUNT(CASE WHEN action = 'DRY_RUN' THEN 1 END),
			COUNT(CASE WHEN action = 'ERROR' THEN 1 END)
		FROM removals
		WHERE timestamp >= ?
	`, since).Scan(&stats.Runs, &stats.TotalDeleted, &stats.TotalDryRun, &stats.TotalErrors)
	if err != nil {
		return nil, err
	}

	stats.ByPlatform, err = d.countBy(`
		SELECT platform, COUNT(*) FROM removals
		WHERE action = 'DELETE' AND timestamp >= ?
		GROUP BY platform
	`, since)
	if err != nil {
		return nil, err
	}

	stats.TopEntries, err = d.countBy(`
		SELECT entry, COUNT(*) AS n FROM removals
		WHERE action = 'DELETE' AND timestamp >= ?
		GROUP BY entry ORDER BY n DESC LIMIT 10
	`, since)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

// DeleteOldRecords removes rows older than the given number of days
func (d *PruneDB) DeleteOldRecords(olderThanDays int) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -olderThanDays)

	result, err := d.db.Exec(`DELETE FROM removals WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func (d *PruneDB) countBy(query string, args ...interface{}) (map[string]int, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}
	return counts, rows.Err()
}

func (d *PruneDB) queryRecords(query string, args ...interface{}) ([]Record, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var arch, errMsg sql.NullString

		if err := rows.Scan(
			&r.ID, &r.RunID, &r.Timestamp, &r.Action, &r.Platform,
			&arch, &r.ResourceDir, &r.Entry, &errMsg,
		); err != nil {
			return nil, err
		}
		r.Arch = arch.String
		r.ErrorMessage = errMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}
