package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/framelab/train_go_server/internal/model"
)

var (
	// ErrAlreadyExists is returned when a resource slot that may be
	// filled at most once (train set, LDA set) is already occupied.
	ErrAlreadyExists = errors.New("record already exists")
)

type ClassifierRepository struct {
	db *gorm.DB
}

func NewClassifierRepository(db *gorm.DB) *ClassifierRepository {
	return &ClassifierRepository{db: db}
}

func (r *ClassifierRepository) Create(clsf *model.Classifier) error {
	return r.db.Create(clsf).Error
}

func (r *ClassifierRepository) GetByID(id int64) (*model.Classifier, error) {
	var clsf model.Classifier
	err := r.db.Preload("TrainSet").Preload("DevSet").Where("id = ?", id).First(&clsf).Error
	if err != nil {
		return nil, err
	}
	return &clsf, nil
}

func (r *ClassifierRepository) List() ([]*model.Classifier, error) {
	var classifiers []*model.Classifier
	err := r.db.Preload("TrainSet").Preload("DevSet").
		Order("created_at ASC").
		Find(&classifiers).Error
	return classifiers, err
}

func (r *ClassifierRepository) Update(clsf *model.Classifier) error {
	return r.db.Save(clsf).Error
}

// AttachTrainDevSets creates the train and dev LabeledSet records and
// links them to the classifier in one transaction. The linking UPDATE
// only matches while train_set_id is still NULL; zero affected rows
// means another upload took the slot, and the transaction rolls back
// with ErrAlreadyExists. A read-then-check is not a guard here, since
// under snapshot isolation both racers can read a NULL slot.
func (r *ClassifierRepository) AttachTrainDevSets(classifierID int64, trainFile, devFile string) (*model.Classifier, error) {
	var clsf model.Classifier

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", classifierID).First(&clsf).Error; err != nil {
			return err
		}

		trainSet := &model.LabeledSet{FilePath: trainFile}
		devSet := &model.LabeledSet{FilePath: devFile}
		if err := tx.Create(trainSet).Error; err != nil {
			return err
		}
		if err := tx.Create(devSet).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Classifier{}).Where("id = ? AND train_set_id IS NULL", classifierID).
			Updates(map[string]interface{}{
				"train_set_id": trainSet.ID,
				"dev_set_id":   devSet.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyExists
		}

		clsf.TrainSetID = &trainSet.ID
		clsf.DevSetID = &devSet.ID
		clsf.TrainSet = trainSet
		clsf.DevSet = devSet
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &clsf, nil
}

// SaveLabeledSet persists flag/metric changes made by the task
// executor. Flags only ever go false -> true here.
func (r *ClassifierRepository) SaveLabeledSet(set *model.LabeledSet) error {
	return r.db.Save(set).Error
}

func (r *ClassifierRepository) GetLabeledSet(id int64) (*model.LabeledSet, error) {
	var set model.LabeledSet
	if err := r.db.Where("id = ?", id).First(&set).Error; err != nil {
		return nil, err
	}
	return &set, nil
}
