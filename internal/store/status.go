package store

import (
	"fmt"
	"io"

	"github.com/cloudstack-dashboard/prdash/schema"
)

// GetStatus returns status information about the fact store.
func (fs *FactStoreImpl) GetStatus() (schema.StoreStatus, error) {
	status := schema.StoreStatus{
		Backend:    string(fs.backend),
		Connected:  fs.db != nil,
		TableSizes: make(map[string]int64),
	}

	if fs.isNoop() {
		return status, nil
	}

	row := fs.db.QueryRow(fs.q("SELECT COUNT(*) FROM %s", scrapeRunsTable))
	if err := row.Scan(&status.TotalRuns); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		var last, oldest dbTime
		row = fs.db.QueryRow(fs.q("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", scrapeRunsTable))
		if err := row.Scan(&status.LastRunID, &last); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		status.LastRunTime = last.Time

		row = fs.db.QueryRow(fs.q("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", scrapeRunsTable))
		if err := row.Scan(&oldest); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		status.OldestRunTime = oldest.Time
	}

	for _, table := range allTables {
		var count int64
		if err := fs.db.QueryRow(fs.q("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.TotalPRs = int(status.TableSizes[prInfoTable])

	return status, nil
}

// PrintStoreStatus prints store status information.
func PrintStoreStatus(w io.Writer, status schema.StoreStatus) {
	_, _ = fmt.Fprintf(w, "Store Backend: %s\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	_, _ = fmt.Fprintf(w, "Tracked PRs: %d\n", status.TotalPRs)
	_, _ = fmt.Fprintf(w, "Total Scrape Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		_, _ = fmt.Fprintf(w, "Last Run ID: %d\n", status.LastRunID)
		_, _ = fmt.Fprintf(w, "Last Run: %s\n", status.LastRunTime.Format("2006-01-02 15:04:05"))
		_, _ = fmt.Fprintf(w, "Oldest Run: %s\n", status.OldestRunTime.Format("2006-01-02 15:04:05"))
	}
	_, _ = fmt.Fprintln(w, "Table Sizes:")
	for _, table := range allTables {
		if size, ok := status.TableSizes[table]; ok {
			_, _ = fmt.Fprintf(w, "  %s: %d rows\n", table, size)
		}
	}
}
