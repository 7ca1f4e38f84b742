package repository

import (
	"errors"
	"strings"

	"chronocopy/internal/db"
	"chronocopy/internal/model"

	"gorm.io/gorm"
)

// VariableRepository manages global variables (JobID nil) and job-local
// variables under one table. Names are unique within their scope.
type VariableRepository struct{}

func NewVariableRepository() *VariableRepository {
	return &VariableRepository{}
}

func (r *VariableRepository) Create(v *model.Variable) error {
	taken, err := r.nameTaken(v.Name, v.JobID, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	v.Name = strings.TrimSpace(v.Name)
	return db.DB.Create(v).Error
}

func (r *VariableRepository) Update(v *model.Variable) error {
	taken, err := r.nameTaken(v.Name, v.JobID, v.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	v.Name = strings.TrimSpace(v.Name)
	return db.DB.Save(v).Error
}

func (r *VariableRepository) Globals() ([]model.Variable, error) {
	var vars []model.Variable
	return vars, db.DB.Where("job_id IS NULL").Find(&vars).Error
}

func (r *VariableRepository) ForJob(jobID uint) ([]model.Variable, error) {
	var vars []model.Variable
	return vars, db.DB.Where("job_id = ?", jobID).Find(&vars).Error
}

func (r *VariableRepository) GetByID(id uint) (model.Variable, error) {
	var v model.Variable
	err := db.DB.First(&v, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return v, err
}

// SetValue stores the result of an explicit refresh; dynamic variables are
// never re-evaluated implicitly.
func (r *VariableRepository) SetValue(id uint, value string) error {
	result := db.DB.Model(&model.Variable{}).
		Where("id = ?", id).
		Update("value", value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VariableRepository) Delete(id uint) error {
	return db.DB.Delete(&model.Variable{}, id).Error
}

func (r *VariableRepository) nameTaken(name string, jobID *uint, excludeID uint) (bool, error) {
	query := db.DB.Model(&model.Variable{}).
		Where("LOWER(TRIM(name)) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID)
	if jobID == nil {
		query = query.Where("job_id IS NULL")
	} else {
		query = query.Where("job_id = ?", *jobID)
	}

	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}
