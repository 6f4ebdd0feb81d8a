// Package config loads and validates the gateway's JSON configuration tree:
// the named endpoints, their match patterns, upstream backends and the
// middleware blocks attached to each one.
package config

// RetryConfig is decoded onto the backend config but neither enforced by
// the dispatcher nor reported by the status endpoint; external
// retry/rate-limit enforcement reads it off the matched backend.
type RetryConfig struct {
	Count       int   `json:"count"`
	DelayMS     int   `json:"delay_ms"`
	StatusCodes []int `json:"status_codes"`
}

type RateLimitRequests struct {
	PerHour   int `json:"per_hour"`
	PerMinute int `json:"per_minute"`
}

type RateLimitBurst struct {
	Max int `json:"max"`
}

type RateLimit struct {
	Requests RateLimitRequests `json:"requests"`
	Burst    RateLimitBurst    `json:"burst"`
}

// HTTPSBackend describes a reverse-proxied HTTP(S) upstream. Endpoint.Backends.HTTPS
// may hold either one of these or a slice; dispatch uses the first entry.
type HTTPSBackend struct {
	URL          string            `json:"url"`
	ID           string            `json:"id,omitempty"`
	Weight       int               `json:"weight,omitempty"`
	SSL          bool              `json:"ssl"`
	TimeoutSecs  int               `json:"timeout"`
	Retries      *RetryConfig      `json:"retries,omitempty"`
	RateLimiting *RateLimit        `json:"rate_limiting,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
	Methods      []string          `json:"methods,omitempty"`
}

// CommandBackend runs a local subprocess and streams its output. Default is
// used unless the proxy's runtime.GOOS names a more specific override.
type CommandBackend struct {
	ID       string `json:"id"`
	Default  string `json:"default"`
	Linux    string `json:"linux,omitempty"`
	Windows  string `json:"windows,omitempty"`
	Darwin   string `json:"darwin,omitempty"`
	FreeBSD  string `json:"freebsd,omitempty"`
	OpenBSD  string `json:"openbsd,omitempty"`
	NetBSD   string `json:"netbsd,omitempty"`
	SunOS    string `json:"sunos,omitempty"`
	AIX      string `json:"aix,omitempty"`
	CygwinNT string `json:"cygwin_nt,omitempty"`
	MsysNT   string `json:"msys_nt,omitempty"`
	Java     string `json:"java,omitempty"`
}

// CommandFor resolves the OS-specific override for goos, falling back to Default.
func (c CommandBackend) CommandFor(goos string) string {
	switch goos {
	case "linux":
		if c.Linux != "" {
			return c.Linux
		}
	case "windows":
		if c.Windows != "" {
			return c.Windows
		}
	case "darwin":
		if c.Darwin != "" {
			return c.Darwin
		}
	case "freebsd":
		if c.FreeBSD != "" {
			return c.FreeBSD
		}
	case "openbsd":
		if c.OpenBSD != "" {
			return c.OpenBSD
		}
	case "netbsd":
		if c.NetBSD != "" {
			return c.NetBSD
		}
	case "solaris":
		if c.SunOS != "" {
			return c.SunOS
		}
	case "aix":
		if c.AIX != "" {
			return c.AIX
		}
	}
	return c.Default
}

type FileBackendConfig struct {
	Path    string `json:"path"`
	Enabled bool   `json:"enabled"`
}

type RedirectConfig struct {
	Location     string `json:"location"`
	Enabled      bool   `json:"enabled"`
	StatusCode   int    `json:"status_code,omitempty"`
	PreservePath bool   `json:"preserve_path"`
}

type MockResponseTemplate struct {
	StatusCode  int             `json:"status_code,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
	Body        interface{}     `json:"body,omitempty"`
	ContentType string          `json:"content_type,omitempty"`
	DelayMS     int             `json:"delay_ms,omitempty"`
}

// MockPathTemplateEntry is one glob/template pair from MockConfig.PathTemplates,
// in the order it appeared in the config file; the mock backend's
// first-match-wins semantics depend on that order, which a plain Go map
// cannot preserve.
type MockPathTemplateEntry struct {
	Pattern  string
	Template MockResponseTemplate
}

type MockConfig struct {
	PathTemplates    map[string]MockResponseTemplate `json:"-"`
	orderedTemplates []MockPathTemplateEntry
	Enabled          bool                  `json:"enabled"`
	DefaultResponse  *MockResponseTemplate `json:"default_response,omitempty"`
}

// OrderedPathTemplates returns the glob/template pairs in config-file order.
func (m *MockConfig) OrderedPathTemplates() []MockPathTemplateEntry {
	return m.orderedTemplates
}

type EchoConfig struct {
	Enabled          bool              `json:"enabled"`
	AddHeaders       map[string]string `json:"add_headers,omitempty"`
	ResponseDelayMS  int               `json:"response_delay_ms,omitempty"`
}

type JobHistory struct {
	StorageType    string `json:"storage_type,omitempty"`
	Path           string `json:"path,omitempty"`
	RetentionHours int    `json:"retention_hours,omitempty"`
}

type CronJob struct {
	Schedule    string `json:"schedule"`
	Command     string `json:"command"`
	Description string `json:"description"`
}

// SchedulerConfig is status-only: the gateway never runs cron jobs
// itself, but schedule strings are still validated at load time.
type SchedulerConfig struct {
	CronJobs   map[string]CronJob `json:"cron_jobs"`
	Enabled    bool               `json:"enabled"`
	JobHistory *JobHistory        `json:"job_history,omitempty"`
}

// Backends is the tagged union of upstream kinds an endpoint may dispatch
// to. Exactly one field must be set; Validate enforces the exclusivity.
type Backends struct {
	HTTPS     *HTTPSBackend      `json:"https,omitempty"`
	HTTPSList []HTTPSBackend     `json:"-"`
	Command   *CommandBackend    `json:"command,omitempty"`
	File      *FileBackendConfig `json:"file,omitempty"`
	Redirect  *RedirectConfig    `json:"redirect,omitempty"`
	Echo      *EchoConfig        `json:"echo,omitempty"`
	Mock      *MockConfig        `json:"mock,omitempty"`
	Scheduler *SchedulerConfig   `json:"scheduler,omitempty"`
}

type VirtualSourceConfig struct {
	Sources  []string `json:"sources"`
	Enabled  bool     `json:"enabled"`
	Strategy string   `json:"strategy,omitempty"`
}

type WebSocketConfig struct {
	Enabled            bool `json:"enabled"`
	PingIntervalSecs   int  `json:"ping_interval_seconds,omitempty"`
	TimeoutSecs        int  `json:"timeout_seconds,omitempty"`
	MaxFrameSize       int  `json:"max_frame_size,omitempty"`
}

type ProxyConfig struct {
	Enabled        bool `json:"enabled"`
	TimeoutSeconds int  `json:"timeout_seconds,omitempty"`
}

// GraphQLConfig, ServiceMeshConfig and FunctionConfig are status-only
// upstream variants: they are accepted as valid at load time but have no
// handler, so the dispatcher answers 404 for them like any other
// unimplemented upstream kind.
type GraphQLConfig struct {
	SchemaPath     string            `json:"schema_path"`
	Resolvers      map[string]string `json:"resolvers,omitempty"`
	Enabled        bool              `json:"enabled"`
	Introspection  bool              `json:"introspection"`
	Playground     bool              `json:"playground,omitempty"`
}

type ServiceMeshConfig struct {
	ServiceName string            `json:"service_name"`
	Namespace   string            `json:"namespace"`
	Enabled     bool              `json:"enabled"`
	Protocol    string            `json:"protocol,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type FunctionConfig struct {
	Runtime     string            `json:"runtime"`
	Handler     string            `json:"handler"`
	CodePath    string            `json:"code_path"`
	Enabled     bool              `json:"enabled"`
	Environment map[string]string `json:"environment,omitempty"`
	TimeoutSecs int               `json:"timeout_seconds,omitempty"`
	MemoryMB    int               `json:"memory_mb,omitempty"`
}

// UpstreamConfig selects the dispatch strategy layered on top of Backends:
// a plain reverse proxy, a virtual fallback across several sources tried
// in order, or one of the status-only websocket/GraphQL/service-mesh/
// function variants. Validate requires exactly one non-nil field; only
// proxy and virtual are dispatched, every other kind answers 404.
type UpstreamConfig struct {
	Proxy       *ProxyConfig         `json:"proxy,omitempty"`
	Virtual     *VirtualSourceConfig `json:"virtual,omitempty"`
	WebSocket   *WebSocketConfig     `json:"websocket,omitempty"`
	GraphQL     *GraphQLConfig       `json:"graphql,omitempty"`
	ServiceMesh *ServiceMeshConfig   `json:"service_mesh,omitempty"`
	Function    *FunctionConfig      `json:"function,omitempty"`
}

type ResourceFilterMiddleware struct {
	SkipPaths []string `json:"skip_paths"`
	Enabled   bool     `json:"enabled"`
}

type CompressionMiddleware struct {
	Types         []string `json:"types"`
	Enabled       bool     `json:"enabled"`
	CompressLevel int      `json:"compress_level,omitempty"`
	MinSize       int      `json:"min_size,omitempty"`
}

type FileCacheConfig struct {
	Path             string   `json:"path"`
	TTLSeconds       int      `json:"ttl"`
	MaxSizeMB        int      `json:"max_size_mb"`
	MaxEntries       int      `json:"max_entries"`
	Enabled          bool     `json:"enabled"`
	IncludePatterns  []string `json:"include_patterns,omitempty"`
	ExcludePatterns  []string `json:"exclude_patterns,omitempty"`
	CleanupInterval  string   `json:"cleanup_interval,omitempty"`
}

type MemoryCacheConfig struct {
	MaxItems        int      `json:"max_items"`
	TTLSeconds      int      `json:"ttl"`
	IncludePatterns []string `json:"include_patterns"`
	MaxItemSize     int      `json:"max_item_size"`
	Enabled         bool     `json:"enabled"`
	ExcludePatterns []string `json:"exclude_patterns,omitempty"`
}

type CacheMiddleware struct {
	Enabled bool               `json:"enabled"`
	File    *FileCacheConfig   `json:"file,omitempty"`
	Memory  *MemoryCacheConfig `json:"memory,omitempty"`
}

type CircuitBreakerMiddleware struct {
	Enabled             bool    `json:"enabled"`
	Threshold           float64 `json:"threshold,omitempty"`
	WindowSeconds       int     `json:"window_seconds,omitempty"`
	MinSamples          int     `json:"min_samples,omitempty"`
	ResetTimeoutSeconds int     `json:"reset_timeout_seconds,omitempty"`
}

type PerformanceMiddleware struct {
	ResourceFilter  *ResourceFilterMiddleware `json:"resource_filter,omitempty"`
	Compression     *CompressionMiddleware    `json:"compression,omitempty"`
	Cache           *CacheMiddleware          `json:"cache,omitempty"`
	CircuitBreaking *CircuitBreakerMiddleware `json:"circuit_breaking,omitempty"`
}

type Bot struct {
	Name      string `json:"name"`
	UserAgent string `json:"user-agent"`
}

type BotFilterMiddleware struct {
	Blacklist []Bot `json:"blacklist"`
	Whitelist []Bot `json:"whitelist"`
	Enabled   bool  `json:"enabled"`
}

type IPFilterMiddleware struct {
	Blacklist []string `json:"blacklist"`
	Enabled   bool     `json:"enabled"`
}

type SecurityMiddleware struct {
	IPFilter  *IPFilterMiddleware  `json:"ip_filter,omitempty"`
	BotFilter *BotFilterMiddleware `json:"bot_filter,omitempty"`
}

type Middleware struct {
	Performance *PerformanceMiddleware `json:"performance,omitempty"`
	Security    *SecurityMiddleware    `json:"security,omitempty"`
}

type TextReplacement struct {
	OldValue string `json:"oldvalue"`
	NewValue string `json:"newvalue"`
}

type ResponseTransformer struct {
	Enabled          bool              `json:"enabled"`
	TextReplacements []TextReplacement `json:"textReplacements"`
}

type Transformers struct {
	Response ResponseTransformer `json:"response"`
}

type Logging struct {
	Level           string   `json:"level"`
	RequestHeaders  []string `json:"request_headers"`
	ResponseHeaders []string `json:"response_headers"`
	ExcludeBody     bool     `json:"exclude_body"`
}

type Auth struct {
	Type       string `json:"type"`
	HeaderName string `json:"header_name"`
	Required   bool   `json:"required"`
}

type CORS struct {
	AllowedOrigins []string `json:"allowed_origins"`
	AllowedMethods []string `json:"allowed_methods"`
	AllowedHeaders []string `json:"allowed_headers"`
	MaxAgeSeconds  int      `json:"max_age_seconds"`
	Enabled        bool     `json:"enabled"`
}

type PrometheusConfig struct {
	Metrics []string `json:"metrics"`
	Enabled bool     `json:"enabled"`
}

type Monitoring struct {
	HealthCheckPath    string           `json:"health_check_path"`
	MetricsPath        string           `json:"metrics_path"`
	BackendsStatusPath string           `json:"backends_status_path"`
	Prometheus         PrometheusConfig `json:"prometheus"`
}

type Failover struct {
	FallbackPolicy string `json:"fallback_policy"`
	MaxFallbacks   int    `json:"max_fallbacks"`
	Enabled        bool   `json:"enabled"`
}

// Endpoint is one routable entry: a prefix, a glob match pattern, the
// upstream it dispatches to and the middleware blocks attached to it.
type Endpoint struct {
	Prefix       string          `json:"prefix"`
	Match        string          `json:"match"`
	Upstream     UpstreamConfig  `json:"upstream"`
	Identifier   string          `json:"identifier,omitempty"`
	Weight       int             `json:"weight"`
	Backends     *Backends       `json:"backends,omitempty"`
	BackendsList []Backends      `json:"-"`
	Transformers *Transformers   `json:"transformers,omitempty"`
	Logging      *Logging        `json:"logging,omitempty"`
	Auth         *Auth           `json:"auth,omitempty"`
	CORS         *CORS           `json:"cors,omitempty"`
	Monitoring   *Monitoring     `json:"monitoring,omitempty"`
	Failover     *Failover       `json:"failover,omitempty"`
	TimeoutSecs  float64         `json:"timeout"`
	Middlewares  *Middleware     `json:"middlewares,omitempty"`
}

type ServerConfig struct {
	Type    string `json:"type"`
	Workers int    `json:"workers"`
	Port    int    `json:"port,omitempty"`
}

// Config is the root of the JSON tree loaded from disk.
type Config struct {
	Name        string      `json:"name"`
	Version     string      `json:"version"`
	Server      ServerConfig `json:"server"`
	Endpoints   []Endpoint  `json:"endpoints"`
	Timeout     string      `json:"timeout,omitempty"`
	SSL         *bool       `json:"ssl,omitempty"`
	Middlewares *Middleware `json:"middlewares,omitempty"`
}
