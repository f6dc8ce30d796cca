package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunStore persists run artifacts under a data directory:
//
//	<dir>/run_<id>/result.json          one immutable record per run
//	<dir>/projects/<project>/<bidder>.json   current item set, upserted by
//	                                         (requirement_id, bidder)
//	<dir>/index.json                    bounded recent-run index
type RunStore struct {
	dir        string
	indexLimit int
	maxRuns    int
}

// NewRunStore builds a store rooted at dir.
func NewRunStore(dir string, indexLimit, maxRuns int) *RunStore {
	return &RunStore{dir: dir, indexLimit: indexLimit, maxRuns: maxRuns}
}

// RunIndexEntry is one line of the recent-run index.
type RunIndexEntry struct {
	RunID      string `json:"run_id"`
	ProjectID  string `json:"project_id"`
	BidderName string `json:"bidder_name"`
	Items      int    `json:"items"`
	Failed     int    `json:"failed"`
	Pending    int    `json:"pending"`
	Timestamp  int64  `json:"ts"`
}

func genRunID() string {
	return "run_" + uuid.NewString()
}

// SaveRun writes the run record, upserts the bidder's current item set,
// updates the index and prunes old runs. Returns the generated run id.
func (s *RunStore) SaveRun(result *RunResult) (string, error) {
	runID := genRunID()
	runPath := filepath.Join(s.dir, runID)
	if err := os.MkdirAll(runPath, 0755); err != nil {
		return "", fmt.Errorf("create run dir: %w", err)
	}
	record := *result
	record.RunID = runID
	if err := saveJSON(filepath.Join(runPath, "result.json"), record); err != nil {
		return "", fmt.Errorf("save run result: %w", err)
	}
	if err := s.UpsertItems(result.ProjectID, result.BidderName, result.Items); err != nil {
		return "", err
	}
	if err := s.updateIndex(RunIndexEntry{
		RunID:      runID,
		ProjectID:  result.ProjectID,
		BidderName: result.BidderName,
		Items:      len(result.Items),
		Failed:     result.Stats.ByStatus[StatusFail],
		Pending:    result.Stats.ByStatus[StatusPending],
		Timestamp:  time.Now().Unix(),
	}); err != nil {
		return "", err
	}
	if err := s.pruneRuns(); err != nil {
		return "", err
	}
	return runID, nil
}

// LoadRun reads one immutable run record.
func (s *RunStore) LoadRun(runID string) (*RunResult, error) {
	if !strings.HasPrefix(runID, "run_") || runID != filepath.Base(runID) {
		return nil, fmt.Errorf("invalid run id")
	}
	b, err := os.ReadFile(filepath.Join(s.dir, runID, "result.json"))
	if err != nil {
		return nil, err
	}
	var out RunResult
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decode run record: %w", err)
	}
	return &out, nil
}

// Items returns the current item set for a (project, bidder) pair.
func (s *RunStore) Items(projectID, bidder string) ([]ReviewItem, error) {
	b, err := os.ReadFile(s.itemsPath(projectID, bidder))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var items []ReviewItem
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, fmt.Errorf("decode item set: %w", err)
	}
	return items, nil
}

// UpsertItems merges new items into the bidder's current set by
// requirement id. The new verdict wins; a re-run is safe to retry.
func (s *RunStore) UpsertItems(projectID, bidder string, items []ReviewItem) error {
	existing, err := s.Items(projectID, bidder)
	if err != nil {
		return err
	}
	merged := make(map[string]ReviewItem, len(existing)+len(items))
	for _, it := range existing {
		merged[it.RequirementID] = it
	}
	for _, it := range items {
		merged[it.RequirementID] = it
	}
	out := make([]ReviewItem, 0, len(merged))
	for _, it := range merged {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequirementID < out[j].RequirementID })

	path := s.itemsPath(projectID, bidder)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return saveJSON(path, out)
}

func (s *RunStore) itemsPath(projectID, bidder string) string {
	return filepath.Join(s.dir, "projects", pathSafe(projectID), pathSafe(bidder)+".json")
}

func pathSafe(s string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_", ":", "_").Replace(s)
}

func (s *RunStore) updateIndex(entry RunIndexEntry) error {
	if s.indexLimit <= 0 {
		return nil
	}
	indexPath := filepath.Join(s.dir, "index.json")
	var entries []RunIndexEntry
	if b, err := os.ReadFile(indexPath); err == nil {
		_ = json.Unmarshal(b, &entries)
	}
	entries = append([]RunIndexEntry{entry}, entries...)
	if len(entries) > s.indexLimit {
		entries = entries[:s.indexLimit]
	}
	return saveJSON(indexPath, entries)
}

type runEntry struct {
	path    string
	modTime time.Time
}

func (s *RunStore) pruneRuns() error {
	if s.maxRuns <= 0 {
		return nil
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var runs []runEntry
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "run_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		runs = append(runs, runEntry{
			path:    filepath.Join(s.dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	if len(runs) <= s.maxRuns {
		return nil
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].modTime.After(runs[j].modTime)
	})
	for i := s.maxRuns; i < len(runs); i++ {
		if err := os.RemoveAll(runs[i].path); err != nil {
			return err
		}
	}
	return nil
}

func saveJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
