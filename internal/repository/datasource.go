package repository

import (
	"errors"
	"strings"

	"chronocopy/internal/db"
	"chronocopy/internal/model"

	"gorm.io/gorm"
)

type DataSourceRepository struct{}

func NewDataSourceRepository() *DataSourceRepository {
	return &DataSourceRepository{}
}

func (r *DataSourceRepository) Create(ds *model.DataSource) error {
	if err := checkCredentials(ds); err != nil {
		return err
	}

	taken, err := r.nameTaken(ds.Name, 0)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	ds.Name = strings.TrimSpace(ds.Name)
	return db.DB.Create(ds).Error
}

func (r *DataSourceRepository) Update(ds *model.DataSource) error {
	if err := checkCredentials(ds); err != nil {
		return err
	}

	taken, err := r.nameTaken(ds.Name, ds.ID)
	if err != nil {
		return err
	}
	if taken {
		return ErrNameTaken
	}

	ds.Name = strings.TrimSpace(ds.Name)
	return db.DB.Save(ds).Error
}

func (r *DataSourceRepository) GetAll() ([]model.DataSource, error) {
	var sources []model.DataSource
	return sources, db.DB.Find(&sources).Error
}

func (r *DataSourceRepository) GetByID(id uint) (model.DataSource, error) {
	var ds model.DataSource
	err := db.DB.First(&ds, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrNotFound
	}
	return ds, err
}

func (r *DataSourceRepository) Delete(id uint) error {
	return db.DB.Delete(&model.DataSource{}, id).Error
}

// Exactly one credential kind may be populated at a time.
func checkCredentials(ds *model.DataSource) error {
	if ds.AccountKey != "" && ds.SASToken != "" {
		return errors.New("provide either an account key or a SAS token, not both")
	}
	if ds.AccountKey == "" && ds.SASToken == "" {
		return errors.New("provide an account key or a SAS token")
	}
	return nil
}

func (r *DataSourceRepository) nameTaken(name string, excludeID uint) (bool, error) {
	var count int64
	err := db.DB.Model(&model.DataSource{}).
		Where("LOWER(TRIM(name)) = ? AND id <> ?", strings.ToLower(strings.TrimSpace(name)), excludeID).
		Count(&count).Error
	return count > 0, err
}
