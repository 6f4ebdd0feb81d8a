package backend

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/idum-proxy/idum-proxy/config"
)

// handleSchedulerStatus answers a read-only snapshot of the configured
// cron jobs. Jobs are never executed here; this is status only.
func handleSchedulerStatus(w http.ResponseWriter, cfg *config.SchedulerConfig) {
	type job struct {
		Name        string `json:"name"`
		Schedule    string `json:"schedule"`
		Command     string `json:"command"`
		Description string `json:"description"`
	}
	jobs := make([]job, 0, len(cfg.CronJobs))
	for name, j := range cfg.CronJobs {
		jobs = append(jobs, job{Name: name, Schedule: j.Schedule, Command: j.Command, Description: j.Description})
	}
	sort.Slice(jobs, func(i, k int) bool { return jobs[i].Name < jobs[k].Name })

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"enabled":   cfg.Enabled,
		"cron_jobs": jobs,
	})
}
