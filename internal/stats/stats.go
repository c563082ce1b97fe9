// Package stats records one metrics line per completion request and
// summarizes them for `halp stats`. Records live in stats.json next to
// the config file and are never used to answer a query.
package stats

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arin/halp/internal/config"
)

const (
	fileName   = "stats.json"
	maxRecords = 1000
)

// Record is a single instrumented request.
type Record struct {
	Timestamp     time.Time `json:"timestamp"`
	Provider      string    `json:"provider"`
	Model         string    `json:"model"`
	LatencyMs     int64     `json:"latency_ms"`
	ResponseBytes int       `json:"response_bytes"`
	Success       bool      `json:"success"`
	ErrorKind     string    `json:"error_kind,omitempty"` // "transport", "api", "stream", ...
}

// Summary is the aggregated stats dashboard.
type Summary struct {
	TotalRequests     int            `json:"total_requests"`
	SuccessRate       float64        `json:"success_rate"`
	AvgLatencyMs      int64          `json:"avg_latency_ms"`
	ProviderBreakdown map[string]int `json:"provider_breakdown"`
	ErrorBreakdown    map[string]int `json:"error_breakdown"`
	TopModels         []ModelCount   `json:"top_models"`
	TodayCount        int            `json:"today_count"`
	ThisWeekCount     int            `json:"this_week_count"`
}

// ModelCount pairs a model with its request count.
type ModelCount struct {
	Model string `json:"model"`
	Count int    `json:"count"`
}

var fileMu sync.Mutex

func statsPath() string {
	return filepath.Join(config.Dir(), fileName)
}

// Save appends r, stamped with the current time, to the stats file.
func Save(r Record) error {
	fileMu.Lock()
	defer fileMu.Unlock()

	r.Timestamp = time.Now()

	records, err := loadAll()
	if err != nil {
		slog.Warn("discarding unreadable stats", "path", statsPath(), "error", err)
		records = nil
	}
	records = append(records, r)

	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	if err := os.MkdirAll(config.Dir(), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(statsPath(), data, 0o600)
}

// LoadAll returns all stored records.
func LoadAll() ([]Record, error) {
	fileMu.Lock()
	defer fileMu.Unlock()
	return loadAll()
}

func loadAll() ([]Record, error) {
	data, err := os.ReadFile(statsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to parse stats: %w", err)
	}
	return records, nil
}

// Summarize computes aggregated stats from all records.
func Summarize() (*Summary, error) {
	records, err := LoadAll()
	if err != nil {
		return nil, err
	}
	return summarize(records, time.Now()), nil
}

func summarize(records []Record, now time.Time) *Summary {
	s := &Summary{
		ProviderBreakdown: map[string]int{},
		ErrorBreakdown:    map[string]int{},
	}
	if len(records) == 0 {
		return s
	}
	s.TotalRequests = len(records)

	var totalLatency int64
	var successCount int
	modelFreq := map[string]int{}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	for _, r := range records {
		if r.Success {
			successCount++
		} else if r.ErrorKind != "" {
			s.ErrorBreakdown[r.ErrorKind]++
		}
		totalLatency += r.LatencyMs
		if r.Provider != "" {
			s.ProviderBreakdown[r.Provider]++
		}
		if r.Model != "" {
			modelFreq[r.Model]++
		}
		if !r.Timestamp.Before(today) {
			s.TodayCount++
		}
		if r.Timestamp.After(weekAgo) {
			s.ThisWeekCount++
		}
	}

	s.SuccessRate = float64(successCount) / float64(len(records)) * 100
	s.AvgLatencyMs = totalLatency / int64(len(records))
	s.TopModels = topN(modelFreq, 5)

	return s
}

func topN(freq map[string]int, n int) []ModelCount {
	all := make([]ModelCount, 0, len(freq))
	for model, count := range freq {
		all = append(all, ModelCount{Model: model, Count: count})
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Count != all[j].Count {
			return all[i].Count > all[j].Count
		}
		return all[i].Model < all[j].Model
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}
