package repository

import (
	"errors"
	"strings"

	"chronocopy/internal/db"
	"chronocopy/internal/model"

	"gorm.io/gorm"
)

type ScheduleRepository struct{}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{}
}

func (r *ScheduleRepository) Create(s *model.Schedule) error {
	taken, err := r.nameTaken(s.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	s.Name = strings.TrimSpace(s.Name)
	return db.DB.Create(s).Error
}

func (r *ScheduleRepository) Update(s *model.Schedule) error {
	taken, err := r.nameTaken(s.Name, s.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	s.Name = strings.TrimSpace(s.Name)
	return db.DB.Save(s).Error
}

func (r *ScheduleRepository) GetAll() ([]model.Schedule, error) {
	var schedules []model.Schedule
	return schedules, db.DB.Find(&schedules).Error
}

func (r *ScheduleRepository) GetActive() ([]model.Schedule, error) {
	var schedules []model.Schedule
	return schedules, db.DB.Where("paused = ?", false).Find(&schedules).Error
}

func (r *ScheduleRepository) GetByID(id uint) (model.Schedule, error) {
	var s model.Schedule
	err := db.DB.First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return s, err
}

func (r *ScheduleRepository) SetPaused(id uint, paused bool) error {
	result := db.DB.Model(&model.Schedule{}).
		Where("id = ?", id).
		Update("paused", paused)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ScheduleRepository) Delete(id uint) error {
	return db.DB.Delete(&model.Schedule{}, id).Error
}

func (r *ScheduleRepository) nameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	err := db.DB.Model(&model.Schedule{}).
		Where("LOWER(TRIM(name)) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID).
		Count(&count).Error
	return count > 0, err
}
