package repository

import (
	"errors"
	"strings"

	"chronocopy/internal/db"
	"chronocopy/internal/model"

	"gorm.io/gorm"
)

type JobRepository struct{}

func NewJobRepository() *JobRepository {
	return &JobRepository{}
}

func (r *JobRepository) Create(job *model.Job) error {
	taken, err := r.nameTaken(job.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	job.Name = strings.TrimSpace(job.Name)
	return db.DB.Create(job).Error
}

func (r *JobRepository) Update(job *model.Job) error {
	taken, err := r.nameTaken(job.Name, job.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	job.Name = strings.TrimSpace(job.Name)
	return db.DB.Save(job).Error
}

func (r *JobRepository) GetAll() ([]model.Job, error) {
	var jobs []model.Job
	return jobs, db.DB.Preload("LocalVariables").Find(&jobs).Error
}

func (r *JobRepository) GetByID(id uint) (model.Job, error) {
	var job model.Job
	err := db.DB.Preload("LocalVariables").First(&job, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return job, err
}

func (r *JobRepository) Delete(id uint) error {
	return db.DB.Delete(&model.Job{}, id).Error
}

func (r *JobRepository) nameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	err := db.DB.Model(&model.Job{}).
		Where("LOWER(TRIM(name)) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID).
		Count(&count).Error
	return count > 0, err
}
