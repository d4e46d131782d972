package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// StringArray is a JSON array column.
type StringArray []string

func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	return json.Marshal(s)
}

func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = []string{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, s)
}

// FloatMap is a JSON object column of numeric metrics.
type FloatMap map[string]float64

func (m FloatMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	return json.Marshal(m)
}

func (m *FloatMap) Scan(value interface{}) error {
	if value == nil {
		*m = FloatMap{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if str, ok := value.(string); ok {
			bytes = []byte(str)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, m)
}

// Classifier is a text classifier definition. Category names are fixed
// at creation time; uploaded datasets must match them exactly.
type Classifier struct {
	ID                int64       `gorm:"primaryKey" json:"classifier_id"`
	Name              string      `gorm:"size:200;not null" json:"name"`
	CategoryNames     StringArray `gorm:"type:json;not null" json:"category_names"`
	NotifyAtEmail     string      `gorm:"size:254" json:"notify_at_email"`
	DirPath           string      `gorm:"size:500" json:"-"`
	TrainedByPlatform bool        `gorm:"default:true" json:"trained_by_platform"`
	TrainSetID        *int64      `json:"-"`
	DevSetID          *int64      `json:"-"`
	CreatedAt         time.Time   `json:"created_at"`
	UpdatedAt         time.Time   `json:"updated_at"`

	TrainSet *LabeledSet `gorm:"foreignKey:TrainSetID" json:"train_set,omitempty"`
	DevSet   *LabeledSet `gorm:"foreignKey:DevSetID" json:"dev_set,omitempty"`
	TestSets []TestSet   `gorm:"foreignKey:ClassifierID" json:"test_sets,omitempty"`
}

func (Classifier) TableName() string {
	return "classifiers"
}

// LabeledSet is one stored partition (train or dev) of labeled
// examples. Completed and ErrorEncountered are monotonic: the task
// executor sets each at most once and nothing ever clears them.
type LabeledSet struct {
	ID               int64     `gorm:"primaryKey" json:"id"`
	Completed        bool      `gorm:"default:false" json:"completed"`
	ErrorEncountered bool      `gorm:"default:false" json:"error_encountered"`
	Metrics          FloatMap  `gorm:"type:json" json:"metrics,omitempty"`
	FilePath         string    `gorm:"size:500" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func (LabeledSet) TableName() string {
	return "labeled_sets"
}

// TestSet is a batch of unlabeled examples submitted for inference
// against a trained classifier.
type TestSet struct {
	ID                 int64     `gorm:"primaryKey" json:"test_set_id"`
	ClassifierID       int64     `gorm:"not null;index" json:"classifier_id"`
	Name               string    `gorm:"size:200" json:"name"`
	NotifyAtEmail      string    `gorm:"size:254" json:"notify_at_email"`
	InferenceBegan     bool      `gorm:"default:false" json:"inference_began"`
	InferenceCompleted bool      `gorm:"default:false" json:"inference_completed"`
	ErrorEncountered   bool      `gorm:"default:false" json:"error_encountered"`
	TestFile           string    `gorm:"size:500" json:"-"`
	OutputFile         string    `gorm:"size:500" json:"-"`
	PredictionsURL     string    `gorm:"size:500" json:"predictions_url,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (TestSet) TableName() string {
	return "test_sets"
}
