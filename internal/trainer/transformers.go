package trainer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// TransformersTrainer shells out to the python fine-tuning script that
// wraps huggingface transformers. One process per job; the process
// exit code is the success signal and a JSON metrics file is the
// result channel.
type TransformersTrainer struct {
	pythonBin string
	script    string
}

func NewTransformersTrainer(pythonBin, script string) *TransformersTrainer {
	return &TransformersTrainer{
		pythonBin: pythonBin,
		script:    script,
	}
}

func (t *TransformersTrainer) TrainAndEvaluate(ctx context.Context, req TrainRequest) (map[string]float64, error) {
	metricsFile := filepath.Join(req.OutputDir, "eval_metrics.json")

	args := []string{
		t.script, "train",
		"--labels", strings.Join(req.Labels, ","),
		"--model-path", req.ModelPath,
		"--train-file", req.TrainFile,
		"--dev-file", req.DevFile,
		"--cache-dir", req.CacheDir,
		"--output-dir", req.OutputDir,
		"--num-train-epochs", strconv.Itoa(req.NumTrainEpochs),
		"--metrics-file", metricsFile,
	}

	cmd := exec.CommandContext(ctx, t.pythonBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("classifier training failed: %w, output: %s", err, string(output))
	}

	data, err := os.ReadFile(metricsFile)
	if err != nil {
		return nil, fmt.Errorf("training finished but metrics file is missing: %w", err)
	}

	var metrics map[string]float64
	if err := json.Unmarshal(data, &metrics); err != nil {
		return nil, fmt.Errorf("failed to parse metrics file: %w", err)
	}

	return metrics, nil
}

func (t *TransformersTrainer) Predict(ctx context.Context, req PredictRequest) error {
	args := []string{
		t.script, "predict",
		"--labels", strings.Join(req.Labels, ","),
		"--model-path", req.ModelPath,
		"--cache-dir", req.CacheDir,
		"--test-file", req.TestFile,
		"--output-file", req.OutputFile,
	}

	cmd := exec.CommandContext(ctx, t.pythonBin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("prediction failed: %w, output: %s", err, string(output))
	}

	if _, err := os.Stat(req.OutputFile); err != nil {
		return fmt.Errorf("prediction finished but output file is missing: %w", err)
	}

	return nil
}
