package model

import "time"

// TopicModel is an LDA topic model definition.
type TopicModel struct {
	ID            int64     `gorm:"primaryKey" json:"topic_model_id"`
	Name          string    `gorm:"size:200;not null" json:"name"`
	NumTopics     int       `gorm:"not null" json:"num_topics"`
	NotifyAtEmail string    `gorm:"size:254" json:"notify_at_email"`
	DirPath       string    `gorm:"size:500" json:"-"`
	TrainingFile  string    `gorm:"size:500" json:"-"`
	LDASetID      *int64    `json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	LDASet *LDASet `gorm:"foreignKey:LDASetID" json:"lda_set,omitempty"`
}

func (TopicModel) TableName() string {
	return "topic_models"
}

// LDASet tracks one topic-model training run. Flags are monotonic,
// mirroring LabeledSet.
type LDASet struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	LDACompleted     bool      `gorm:"default:false" json:"lda_completed"`
	ErrorEncountered bool      `gorm:"default:false" json:"error_encountered"`
	KeywordsFile     string    `gorm:"size:500" json:"-"`
	TopicsByDocFile  string    `gorm:"size:500" json:"-"`
	PreviewURL       string    `gorm:"size:500" json:"preview_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (LDASet) TableName() string {
	return "lda_sets"
}
