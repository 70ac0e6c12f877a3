package rrt

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"rrt-planner/internal/geometry"
)

// Snapshot is a finished run in serializable form.
type Snapshot struct {
	ID     string           `json:"id,omitempty"`
	Config Config           `json:"config"`
	Status Status           `json:"status"`
	Nodes  *Tree            `json:"nodes"`
	GoalID int              `json:"goal_id"`
	Path   []geometry.Point `json:"path,omitempty"`
	Length float64          `json:"length,omitempty"`
	Stats  Stats            `json:"stats"`
}

// NewSnapshot captures cfg and res. The path is included for successful runs.
func NewSnapshot(id string, cfg Config, res *Result) (*Snapshot, error) {
	s := &Snapshot{
		ID:     id,
		Config: cfg,
		Status: res.Status,
		Nodes:  res.Tree,
		GoalID: res.GoalID,
		Stats:  res.Stats,
	}
	if res.Succeeded() {
		path, err := res.Path()
		if err != nil {
			return nil, err
		}
		s.Path = path
		s.Length = geometry.PathLength(path)
	}
	return s, nil
}

// Result rebuilds the run result held by the snapshot.
func (s *Snapshot) Result() (*Result, error) {
	if s.Nodes == nil {
		return nil, errors.New("snapshot has no nodes")
	}
	if s.Status == StatusSucceeded && !s.Nodes.Contains(s.GoalID) {
		return nil, errors.Errorf("goal node %d is not in the tree", s.GoalID)
	}
	return &Result{Status: s.Status, Tree: s.Nodes, GoalID: s.GoalID, Stats: s.Stats}, nil
}

// SaveRun serializes and saves the snapshot to a JSON file
func SaveRun(s *Snapshot, filename string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal run")
	}

	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return errors.Wrap(err, "failed to write file")
	}

	logger.Info("run saved", zap.String("file", filename), zap.Int("bytes", len(data)))
	return nil
}

// LoadRun deserializes and loads a snapshot from a JSON file
func LoadRun(filename string, logger *zap.Logger) (*Snapshot, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read file")
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal run")
	}
	if _, err := s.Result(); err != nil {
		return nil, err
	}

	logger.Info("run loaded", zap.String("file", filename), zap.Int("nodes", s.Nodes.Len()))
	return &s, nil
}
