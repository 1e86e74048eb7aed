package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jandubois/readycheck/internal/report"
)

// ErrNotFound is returned when no stored report matches a query.
var ErrNotFound = errors.New("report not found")

// StoredReport is a persisted readiness report with its metadata.
type StoredReport struct {
	ID        int64
	Host      string
	Verdict   report.Status
	Pass      int
	Warn      int
	Fail      int
	Info      int
	Meta      report.HostMeta
	CreatedAt time.Time
	Results   []report.CheckResult
}

// Report rebuilds the ordered report from the stored results.
func (s *StoredReport) Report() *report.Report {
	rep := report.New()
	for _, res := range s.Results {
		rep.Append(res)
	}
	return rep
}

// SaveReport persists a finished report and its results in one
// transaction and returns the new report id.
func (d *DB) SaveReport(ctx context.Context, host string, rep *report.Report, meta report.HostMeta) (int64, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	pass, warn, fail, info := rep.Counts()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO reports (host, verdict, pass_count, warn_count, fail_count, info_count, host_meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, host, string(rep.Verdict()), pass, warn, fail, info, JSONHostMeta(meta))
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}

	reportID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("report id: %w", err)
	}

	for seq, cr := range rep.Results() {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO check_results (report_id, seq, name, status, details)
			VALUES (?, ?, ?, ?, ?)
		`, reportID, seq, cr.Name, string(cr.Status), cr.Details)
		if err != nil {
			return 0, fmt.Errorf("insert check result %q: %w", cr.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit report: %w", err)
	}
	return reportID, nil
}

// LatestReport returns the most recent stored report for a host,
// including its ordered check results.
func (d *DB) LatestReport(ctx context.Context, host string) (*StoredReport, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT id, host, verdict, pass_count, warn_count, fail_count, info_count, host_meta, created_at
		FROM reports
		WHERE host = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, host)

	sr, err := scanReport(row)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT name, status, details
		FROM check_results
		WHERE report_id = ?
		ORDER BY seq
	`, sr.ID)
	if err != nil {
		return nil, fmt.Errorf("query check results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cr report.CheckResult
		var status string
		if err := rows.Scan(&cr.Name, &status, &cr.Details); err != nil {
			return nil, fmt.Errorf("scan check result: %w", err)
		}
		cr.Status = report.Status(status)
		sr.Results = append(sr.Results, cr)
	}
	return sr, rows.Err()
}

// ListReports returns the latest stored report per host, without
// check results, ordered by host name.
func (d *DB) ListReports(ctx context.Context) ([]StoredReport, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, host, verdict, pass_count, warn_count, fail_count, info_count, host_meta, created_at
		FROM reports
		WHERE id IN (SELECT MAX(id) FROM reports GROUP BY host)
		ORDER BY host
	`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	var reports []StoredReport
	for rows.Next() {
		sr, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, *sr)
	}
	return reports, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*StoredReport, error) {
	var sr StoredReport
	var verdict string
	var meta JSONHostMeta
	var createdAt NullTime
	err := row.Scan(&sr.ID, &sr.Host, &verdict, &sr.Pass, &sr.Warn, &sr.Fail, &sr.Info, &meta, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan report: %w", err)
	}
	sr.Verdict = report.Status(verdict)
	sr.Meta = report.HostMeta(meta)
	if createdAt.Valid {
		sr.CreatedAt = createdAt.Time
	}
	return &sr, nil
}
