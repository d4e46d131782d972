package repository

import (
	"gorm.io/gorm"

	"github.com/framelab/train_go_server/internal/model"
)

type TestSetRepository struct {
	db *gorm.DB
}

func NewTestSetRepository(db *gorm.DB) *TestSetRepository {
	return &TestSetRepository{db: db}
}

// Create inserts the test set with inference_began unset. The caller
// raises the flag only once a prediction job is actually on its way,
// so a row is never stuck in predicting with nothing in flight.
func (r *TestSetRepository) Create(ts *model.TestSet) error {
	return r.db.Create(ts).Error
}

func (r *TestSetRepository) GetByID(id int64) (*model.TestSet, error) {
	var ts model.TestSet
	if err := r.db.Where("id = ?", id).First(&ts).Error; err != nil {
		return nil, err
	}
	return &ts, nil
}

func (r *TestSetRepository) ListByClassifier(classifierID int64) ([]*model.TestSet, error) {
	var sets []*model.TestSet
	err := r.db.Where("classifier_id = ?", classifierID).
		Order("created_at ASC").
		Find(&sets).Error
	return sets, err
}

func (r *TestSetRepository) Update(ts *model.TestSet) error {
	return r.db.Save(ts).Error
}
