package repository

import (
	"gorm.io/gorm"

	"github.com/framelab/train_go_server/internal/model"
)

type TopicModelRepository struct {
	db *gorm.DB
}

func NewTopicModelRepository(db *gorm.DB) *TopicModelRepository {
	return &TopicModelRepository{db: db}
}

func (r *TopicModelRepository) Create(tm *model.TopicModel) error {
	return r.db.Create(tm).Error
}

func (r *TopicModelRepository) GetByID(id int64) (*model.TopicModel, error) {
	var tm model.TopicModel
	err := r.db.Preload("LDASet").Where("id = ?", id).First(&tm).Error
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

func (r *TopicModelRepository) List() ([]*model.TopicModel, error) {
	var models []*model.TopicModel
	err := r.db.Preload("LDASet").Order("created_at ASC").Find(&models).Error
	return models, err
}

func (r *TopicModelRepository) Update(tm *model.TopicModel) error {
	return r.db.Save(tm).Error
}

// AttachLDASet creates the LDA set record and links it in one
// transaction. Same guarded-update shape as AttachTrainDevSets: zero
// affected rows means the slot is taken and the set rolls back.
func (r *TopicModelRepository) AttachLDASet(topicModelID int64, keywordsFile, topicsByDocFile string) (*model.TopicModel, error) {
	var tm model.TopicModel

	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", topicModelID).First(&tm).Error; err != nil {
			return err
		}

		ldaSet := &model.LDASet{
			KeywordsFile:    keywordsFile,
			TopicsByDocFile: topicsByDocFile,
		}
		if err := tx.Create(ldaSet).Error; err != nil {
			return err
		}

		res := tx.Model(&model.TopicModel{}).Where("id = ? AND lda_set_id IS NULL", topicModelID).
			Update("lda_set_id", ldaSet.ID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyExists
		}

		tm.LDASetID = &ldaSet.ID
		tm.LDASet = ldaSet
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &tm, nil
}

func (r *TopicModelRepository) SaveLDASet(set *model.LDASet) error {
	return r.db.Save(set).Error
}

func (r *TopicModelRepository) GetLDASet(id int64) (*model.LDASet, error) {
	var set model.LDASet
	if err := r.db.Where("id = ?", id).First(&set).Error; err != nil {
		return nil, err
	}
	return &set, nil
}
