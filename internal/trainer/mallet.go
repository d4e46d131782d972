package trainer

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// MalletModeler runs LDA through the Mallet toolkit: import the corpus
// into Mallet's binary format, then train-topics with the keyword and
// per-document output files from the request.
type MalletModeler struct{}

func NewMalletModeler() *MalletModeler {
	return &MalletModeler{}
}

func (m *MalletModeler) Train(ctx context.Context, req TopicModelRequest) error {
	corpusFile, err := buildCorpus(req.TrainingFile, req.ContentColumn, req.IDColumn)
	if err != nil {
		return fmt.Errorf("failed to build corpus: %w", err)
	}
	defer os.Remove(corpusFile)

	malletBin := filepath.Join(req.MalletBinDirectory, "mallet")
	importedFile := corpusFile + ".mallet"
	defer os.Remove(importedFile)

	importCmd := exec.CommandContext(ctx, malletBin,
		"import-file",
		"--input", corpusFile,
		"--output", importedFile,
		"--keep-sequence",
	)
	if output, err := importCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mallet import failed: %w, output: %s", err, string(output))
	}

	trainCmd := exec.CommandContext(ctx, malletBin,
		"train-topics",
		"--input", importedFile,
		"--num-topics", strconv.Itoa(req.NumTopics),
		"--num-iterations", strconv.Itoa(req.Iterations),
		"--output-topic-keys", req.KeywordsFile,
		"--output-doc-topics", req.TopicsByDocFile,
	)
	if output, err := trainCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("mallet training failed: %w, output: %s", err, string(output))
	}

	return nil
}

// buildCorpus converts the uploaded CSV into Mallet's id/label/text
// line format, addressing columns by the configured header names.
func buildCorpus(trainingFile, contentColumn, idColumn string) (string, error) {
	f, err := os.Open(trainingFile)
	if err != nil {
		return "", err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return "", err
	}
	if len(records) < 2 {
		return "", fmt.Errorf("training file %s has no data rows", trainingFile)
	}

	header := records[0]
	contentIdx, idIdx := -1, -1
	for i, name := range header {
		switch name {
		case contentColumn:
			contentIdx = i
		case idColumn:
			idIdx = i
		}
	}
	if contentIdx < 0 {
		return "", fmt.Errorf("training file %s has no %q column", trainingFile, contentColumn)
	}

	out, err := os.CreateTemp("", "corpus-*.tsv")
	if err != nil {
		return "", err
	}
	defer out.Close()

	for i, row := range records[1:] {
		id := strconv.Itoa(i)
		if idIdx >= 0 && idIdx < len(row) {
			id = row[idIdx]
		}
		text := strings.NewReplacer("\t", " ", "\n", " ").Replace(row[contentIdx])
		if _, err := fmt.Fprintf(out, "%s\tdoc\t%s\n", id, text); err != nil {
			os.Remove(out.Name())
			return "", err
		}
	}

	return out.Name(), nil
}
