package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/sarslanhan/cronmask"
	log "github.com/sirupsen/logrus"
)

// Load reads and validates the config file at path: parse, validate,
// sort endpoints by weight descending, log the endpoint count.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if cfg.Server.Type == "" {
		cfg.Server.Type = "gunicorn"
	}
	if cfg.Server.Workers == 0 {
		cfg.Server.Workers = 2
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	sort.SliceStable(cfg.Endpoints, func(i, j int) bool {
		return cfg.Endpoints[i].Weight > cfg.Endpoints[j].Weight
	})

	log.WithField("endpoints", len(cfg.Endpoints)).Info("config loaded")
	return &cfg, nil
}

// Validate fails loudly on the first structural problem found: required
// top-level fields, server.type and server.workers, then for each endpoint
// its required fields, timeout range and upstream exclusivity, then each
// of its backends' union exclusivity and cron schedule strings.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("at least one endpoint is required")
	}
	switch c.Server.Type {
	case "uvicorn", "gunicorn", "hypercorn", "granian", "robyn", "local", "":
	default:
		return fmt.Errorf("server.type %q is not recognized", c.Server.Type)
	}
	if c.Server.Workers < 1 {
		return fmt.Errorf("server.workers must be >= 1, got %d", c.Server.Workers)
	}

	for i := range c.Endpoints {
		if err := c.Endpoints[i].validate(); err != nil {
			return fmt.Errorf("endpoint %d (%s): %w", i, c.Endpoints[i].Prefix, err)
		}
	}
	return nil
}

func (e *Endpoint) validate() error {
	if e.Prefix == "" {
		return fmt.Errorf("prefix is required")
	}
	if e.Match == "" {
		return fmt.Errorf("match is required")
	}
	if e.TimeoutSecs < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}

	variants := 0
	if e.Upstream.Proxy != nil {
		variants++
	}
	if e.Upstream.Virtual != nil {
		variants++
	}
	if e.Upstream.WebSocket != nil {
		variants++
	}
	if e.Upstream.GraphQL != nil {
		variants++
	}
	if e.Upstream.ServiceMesh != nil {
		variants++
	}
	if e.Upstream.Function != nil {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("exactly one upstream variant must be set, found %d", variants)
	}

	for _, b := range e.AllBackends() {
		if err := b.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (b *Backends) validate() error {
	variants := 0
	if len(b.AllHTTPS()) > 0 {
		variants++
	}
	if b.Command != nil {
		variants++
	}
	if b.File != nil {
		variants++
	}
	if b.Redirect != nil {
		variants++
	}
	if b.Echo != nil {
		variants++
	}
	if b.Mock != nil {
		variants++
	}
	if b.Scheduler != nil {
		variants++
	}
	if variants != 1 {
		return fmt.Errorf("exactly one backend variant must be set, found %d", variants)
	}

	if b.Scheduler != nil {
		for name, job := range b.Scheduler.CronJobs {
			if _, err := cronmask.New(job.Schedule); err != nil {
				return fmt.Errorf("scheduler job %q: invalid cron schedule %q: %w", name, job.Schedule, err)
			}
		}
	}
	return nil
}
