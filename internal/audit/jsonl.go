package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"custodyvault/internal/model"
)

// JsonlSink appends audit events to a JSONL file, one record per line.
// Write failures are logged and swallowed: audit delivery never decides
// the outcome of a vault operation.
type JsonlSink struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

type jsonlRecord struct {
	Kind    string      `json:"kind"`
	Payload interface{} `json:"payload"`
}

func NewJsonlSink(path string, logger *zap.Logger) *JsonlSink {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Warn("audit dir create failed", zap.Error(err))
		}
	}
	return &JsonlSink{path: path, logger: logger}
}

func (s *JsonlSink) DepositRecorded(event model.DepositEvent) {
	s.append(jsonlRecord{Kind: "deposit", Payload: event})
}

func (s *JsonlSink) WithdrawRecorded(event model.WithdrawEvent) {
	s.append(jsonlRecord{Kind: "withdraw", Payload: event})
}

func (s *JsonlSink) append(record jsonlRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		s.logger.Warn("audit open failed", zap.Error(err))
		return
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	line, err := json.Marshal(record)
	if err != nil {
		s.logger.Warn("audit marshal failed", zap.Error(err))
		return
	}
	if _, err := writer.Write(line); err != nil {
		s.logger.Warn("audit write failed", zap.Error(err))
		return
	}
	if err := writer.WriteByte('\n'); err != nil {
		s.logger.Warn("audit write failed", zap.Error(err))
		return
	}
	if err := writer.Flush(); err != nil {
		s.logger.Warn("audit flush failed", zap.Error(err))
	}
}
