package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// TaskType discriminates the three background job variants on the wire.
type TaskType string

const (
	TaskTypeTraining   TaskType = "training"
	TaskTypePrediction TaskType = "prediction"
	TaskTypeTopicModel TaskType = "topic_model_training"
)

// TaskMessage is the sealed set of job descriptions. The worker type
// switch over this interface covers every variant, so adding a fourth
// task shows up as a missed case at review time rather than a silent
// string mismatch.
type TaskMessage interface {
	Type() TaskType
}

// TrainingTask describes one classifier training run.
type TrainingTask struct {
	ClassifierID   int64    `json:"classifier_id"`
	Labels         []string `json:"labels"`
	ModelPath      string   `json:"model_path"`
	TrainFile      string   `json:"train_file"`
	DevFile        string   `json:"dev_file"`
	CacheDir       string   `json:"cache_dir"`
	OutputDir      string   `json:"output_dir"`
	NumTrainEpochs int      `json:"num_train_epochs"`
}

func (*TrainingTask) Type() TaskType { return TaskTypeTraining }

// PredictionTask describes one inference run over a test set.
type PredictionTask struct {
	TestSetID      int64    `json:"test_set_id"`
	Labels         []string `json:"labels"`
	ModelPath      string   `json:"model_path"`
	CacheDir       string   `json:"cache_dir"`
	TestFile       string   `json:"test_file"`
	TestOutputFile string   `json:"test_output_file"`
}

func (*PredictionTask) Type() TaskType { return TaskTypePrediction }

// TopicModelTask describes one LDA training run.
type TopicModelTask struct {
	TopicModelID       int64  `json:"topic_model_id"`
	TrainingFile       string `json:"training_file"`
	MalletBinDirectory string `json:"mallet_bin_directory"`
	Iterations         int    `json:"iterations"`
	NumTopics          int    `json:"num_topics"`
	FnameKeywords      string `json:"fname_keywords"`
	FnameTopicsByDoc   string `json:"fname_topics_by_doc"`
}

func (*TopicModelTask) Type() TaskType { return TaskTypeTopicModel }

// Queue is a durable Redis list shared by the API process (producers)
// and the worker processes (consumers). Push is bounded-time and never
// waits on execution; delivery is to exactly one consumer. No ordering
// or dedup guarantees beyond the list itself.
type Queue struct {
	client    *redis.Client
	queueName string
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push enqueues a task. The variant payload is flattened next to the
// task_type tag, so the wire shape stays readable in redis-cli.
func (q *Queue) Push(ctx context.Context, task TaskMessage) error {
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(payload, &fields); err != nil {
		return fmt.Errorf("failed to flatten task: %w", err)
	}
	fields["task_type"] = task.Type()

	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal task envelope: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks up to timeout for the next task. Returns (nil, nil) when
// the queue stays empty.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (TaskMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // timed out, no task
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	return decodeTask([]byte(result[1]))
}

func decodeTask(data []byte) (TaskMessage, error) {
	var probe struct {
		TaskType TaskType `json:"task_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to read task_type: %w", err)
	}

	var task TaskMessage
	switch probe.TaskType {
	case TaskTypeTraining:
		task = &TrainingTask{}
	case TaskTypePrediction:
		task = &PredictionTask{}
	case TaskTypeTopicModel:
		task = &TopicModelTask{}
	default:
		return nil, fmt.Errorf("unknown task_type %q", probe.TaskType)
	}

	if err := json.Unmarshal(data, task); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s task: %w", probe.TaskType, err)
	}
	return task, nil
}

// Length returns the number of waiting tasks.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
