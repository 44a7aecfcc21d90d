package store

import (
	"database/sql"
	"time"

	apperrors "github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/errors"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/logging"
	"github.com/Bjarmah/gamified-application-for-stem-learning-in-shs-sub003/internal/models"
)

// GetProgress retrieves the progress record for a module.
func (s *Store) GetProgress(moduleID string) (*models.ProgressRecord, error) {
	query := `SELECT module_id, last_accessed, completed, time_spent, visit_count FROM module_progress WHERE module_id = ?`
	var p models.ProgressRecord
	err := s.db.QueryRow(query, moduleID).Scan(&p.ModuleID, &p.LastAccessed, &p.Completed, &p.TimeSpent, &p.VisitCount)
	if err == sql.ErrNoRows {
		return nil, apperrors.New(apperrors.ErrNotFound, "no progress for module: "+moduleID)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to get progress", err)
	}
	return &p, nil
}

// ListProgress returns every progress record, degrading to an empty list on
// storage failure.
func (s *Store) ListProgress() []*models.ProgressRecord {
	query := `SELECT module_id, last_accessed, completed, time_spent, visit_count FROM module_progress ORDER BY rowid`
	rows, err := s.db.Query(query)
	if err != nil {
		logging.Error("failed to list progress", err, nil)
		return []*models.ProgressRecord{}
	}
	defer rows.Close()

	records := []*models.ProgressRecord{}
	for rows.Next() {
		var p models.ProgressRecord
		if err := rows.Scan(&p.ModuleID, &p.LastAccessed, &p.Completed, &p.TimeSpent, &p.VisitCount); err != nil {
			logging.Error("failed to scan progress row", err, nil)
			return []*models.ProgressRecord{}
		}
		records = append(records, &p)
	}
	if err := rows.Err(); err != nil {
		logging.Error("failed to iterate progress rows", err, nil)
		return []*models.ProgressRecord{}
	}
	return records
}

// TouchModuleProgress applies a module touch and returns the updated record.
// A fresh record starts with visitCount=1, completed=false, timeSpent=0.
// On every touch lastAccessed moves to now; an existing record's visitCount
// increments; the completed flag is OR-ed so it never reverts to false; the
// time delta is added to the cumulative total. The whole read-modify-write
// runs in one transaction.
func (s *Store) TouchModuleProgress(moduleID string, opts models.TouchOptions) (*models.ProgressRecord, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	var p models.ProgressRecord
	query := `SELECT module_id, last_accessed, completed, time_spent, visit_count FROM module_progress WHERE module_id = ?`
	err = tx.QueryRow(query, moduleID).Scan(&p.ModuleID, &p.LastAccessed, &p.Completed, &p.TimeSpent, &p.VisitCount)

	now := time.Now().Unix()
	switch {
	case err == sql.ErrNoRows:
		p = models.ProgressRecord{
			ModuleID:     moduleID,
			LastAccessed: now,
			VisitCount:   1,
		}
	case err != nil:
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to read progress", err)
	default:
		p.LastAccessed = now
		p.VisitCount++
	}

	if opts.Completed != nil && *opts.Completed {
		p.Completed = true
	}
	if opts.TimeSpentDelta > 0 {
		p.TimeSpent += opts.TimeSpentDelta
	}

	upsert := `
	INSERT INTO module_progress (module_id, last_accessed, completed, time_spent, visit_count)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(module_id) DO UPDATE SET
		last_accessed = excluded.last_accessed,
		completed = excluded.completed,
		time_spent = excluded.time_spent,
		visit_count = excluded.visit_count
	`
	if _, err := tx.Exec(upsert, p.ModuleID, p.LastAccessed, p.Completed, p.TimeSpent, p.VisitCount); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to write progress", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStorage, "failed to commit progress", err)
	}
	return &p, nil
}
