package repository

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"chronocopy/internal/db"
	"chronocopy/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository is the append-only run history store. A record is
// created in Running state the instant planning succeeds, mutated exactly
// once per sub-run completion, and finalized when the last sub-run reports.
// Sub-run completions may arrive concurrently and out of order; readers see
// partial progress while a batch is in flight.
//
// Old runs are sealed into numbered archive partitions so the live query
// path stays bounded. Queries are always scoped to exactly one partition.
type HistoryRepository struct {
	mu    sync.Mutex
	limit int
}

// NewHistoryRepository creates a store whose live partition holds at most
// limit runs per job before rotation.
func NewHistoryRepository(limit int) *HistoryRepository {
	if limit < 1 {
		limit = 1
	}
	return &HistoryRepository{limit: limit}
}

// SetLimit adjusts the live-partition cap at runtime (config hot reload).
func (r *HistoryRepository) SetLimit(limit int) {
	if limit < 1 {
		return
	}
	r.mu.Lock()
	r.limit = limit
	r.mu.Unlock()
}

// StartRun appends rec in Running state, with every sub-run Pending.
func (r *HistoryRepository) StartRun(rec *model.RunRecord) error {
	rec.Status = model.RunRunning
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now().UTC()
	}
	for i := range rec.SubRuns {
		rec.SubRuns[i].RunID = rec.RunID
		rec.SubRuns[i].Status = model.RunPending
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return db.DB.Create(rec).Error
}

// RecordResult stores one sub-run completion. For a flat (single date) run,
// date addresses nothing and the flat fields are updated; for a batch, the
// sub-run for that date is updated and, once every planned sub-run has
// reported, the parent aggregate is recomputed: Success when all passed,
// Failed when all failed, "Completed with Failure" when mixed.
func (r *HistoryRepository) RecordResult(runID, date string, status model.RunStatus, message, fileMask string, sourceFiles, copiedFiles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return db.DB.Transaction(func(tx *gorm.DB) error {
		var rec model.RunRecord
		if err := tx.Where("run_id = ?", runID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if !rec.TimeTravel {
			return tx.Model(&rec).Updates(map[string]any{
				"status":         status,
				"message":        message,
				"file_mask_used": fileMask,
				"source_files":   model.StringList(sourceFiles),
				"copied_files":   model.StringList(copiedFiles),
			}).Error
		}

		result := tx.Model(&model.SubRun{}).
			Where("run_id = ? AND date = ?", runID, date).
			Updates(map[string]any{
				"status":         status,
				"message":        message,
				"file_mask_used": fileMask,
				"source_files":   model.StringList(sourceFiles),
				"copied_files":   model.StringList(copiedFiles),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("%w: sub-run %s of run %s", ErrNotFound, date, runID)
		}

		return r.finalizeIfDone(tx, &rec)
	})
}

// finalizeIfDone recomputes the parent aggregate once no sub-run is left
// pending. Immutable afterwards, except for archival relocation.
func (r *HistoryRepository) finalizeIfDone(tx *gorm.DB, rec *model.RunRecord) error {
	var subs []model.SubRun
	if err := tx.Where("run_id = ?", rec.RunID).Find(&subs).Error; err != nil {
		return err
	}

	failed, passed := 0, 0
	for _, s := range subs {
		if !s.Status.Terminal() {
			return nil
		}
		if s.Status == model.RunFailed {
			failed++
		} else {
			passed++
		}
	}

	aggregate := model.RunSuccess
	switch {
	case failed > 0 && passed > 0:
		aggregate = model.RunMixed
	case failed > 0:
		aggregate = model.RunFailed
	}

	return tx.Model(rec).Updates(map[string]any{
		"status":  aggregate,
		"message": fmt.Sprintf("time travel run completed for %s to %s", rec.FromDate, rec.ToDate),
	}).Error
}

// History returns a job's runs within exactly one partition, newest first.
func (r *HistoryRepository) History(jobID uint, archive int) ([]model.RunRecord, error) {
	var records []model.RunRecord
	err := db.DB.
		Preload("SubRuns", func(db *gorm.DB) *gorm.DB { return db.Order("date asc") }).
		Where("job_id = ? AND archive = ?", jobID, archive).
		Order("timestamp desc").
		Find(&records).Error
	return records, err
}

// Archives lists the sealed partition numbers for a job, oldest first.
func (r *HistoryRepository) Archives(jobID uint) ([]int, error) {
	var archives []int
	err := db.DB.Model(&model.RunRecord{}).
		Distinct("archive").
		Where("job_id = ? AND archive > ?", jobID, model.ArchiveMain).
		Order("archive asc").
		Pluck("archive", &archives).Error
	return archives, err
}

// Latest returns the most recent run in the live partition, or nil.
func (r *HistoryRepository) Latest(jobID uint) (*model.RunRecord, error) {
	var rec model.RunRecord
	err := db.DB.
		Preload("SubRuns").
		Where("job_id = ? AND archive = ?", jobID, model.ArchiveMain).
		Order("timestamp desc").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Rotate seals the oldest live runs into archive partitions when the live
// partition for the job exceeds the cap. Each partition fills to the cap
// before the next number is opened.
func (r *HistoryRepository) Rotate(jobID uint) error {
	r.mu.Lock()
	limit := r.limit
	defer r.mu.Unlock()

	return db.DB.Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&model.RunRecord{}).
			Where("job_id = ? AND archive = ?", jobID, model.ArchiveMain).
			Count(&live).Error; err != nil {
			return err
		}
		if live <= int64(limit) {
			return nil
		}

		var overflow []model.RunRecord
		if err := tx.Where("job_id = ? AND archive = ?", jobID, model.ArchiveMain).
			Order("timestamp asc").
			Limit(int(live) - limit).
			Find(&overflow).Error; err != nil {
			return err
		}

		current, capacity, err := openPartition(tx, jobID, limit)
		if err != nil {
			return err
		}

		for _, rec := range overflow {
			if capacity == 0 {
				current++
				capacity = limit
			}
			if err := tx.Model(&model.RunRecord{}).
				Where("id = ?", rec.ID).
				Update("archive", current).Error; err != nil {
				return err
			}
			capacity--
		}

		return nil
	})
}

// openPartition finds the newest archive partition with room, or the number
// a fresh one should take.
func openPartition(tx *gorm.DB, jobID uint, limit int) (int, int, error) {
	var newest int
	if err := tx.Model(&model.RunRecord{}).
		Where("job_id = ? AND archive > ?", jobID, model.ArchiveMain).
		Select("COALESCE(MAX(archive), 0)").
		Scan(&newest).Error; err != nil {
		return 0, 0, err
	}
	if newest == 0 {
		return 1, limit, nil
	}

	var used int64
	if err := tx.Model(&model.RunRecord{}).
		Where("job_id = ? AND archive = ?", jobID, newest).
		Count(&used).Error; err != nil {
		return 0, 0, err
	}
	if used >= int64(limit) {
		return newest + 1, limit, nil
	}
	return newest, limit - int(used), nil
}
