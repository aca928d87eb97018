package config

// ProviderType identifies an LLM or embedding provider.
type ProviderType string

const (
	ProviderAnthropic ProviderType = "anthropic"
	ProviderOpenAI    ProviderType = "openai"
	ProviderGoogle    ProviderType = "google"
	ProviderOllama    ProviderType = "ollama"
)

// Config is the top-level smartxdr configuration, corresponding to .smartxdr.yml.
type Config struct {
	Provider          ProviderType `yaml:"provider" koanf:"provider"`
	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`

	// Model identifiers (§6 configuration table).
	ChatModel         string `yaml:"chat_model" koanf:"chat_model"`
	SummaryModel      string `yaml:"summary_model" koanf:"summary_model"`
	EmbeddingModel    string `yaml:"embedding_model" koanf:"embedding_model"`
	CrossEncoderModel string `yaml:"cross_encoder_model" koanf:"cross_encoder_model"`
	CrossEncoderURL   string `yaml:"cross_encoder_url" koanf:"cross_encoder_url"`

	// Throttling.
	MaxCallsPerMinute int     `yaml:"max_calls_per_minute" koanf:"max_calls_per_minute"`
	MaxDailyCostUSD   float64 `yaml:"max_daily_cost" koanf:"max_daily_cost"`

	// Cache behavior.
	CacheEnabled         bool    `yaml:"cache_enabled" koanf:"cache_enabled"`
	CacheTTLSeconds      int     `yaml:"cache_ttl" koanf:"cache_ttl"`
	SemanticCacheEnabled bool    `yaml:"semantic_cache_enabled" koanf:"semantic_cache_enabled"`
	SimilarityThreshold  float64 `yaml:"similarity_threshold" koanf:"similarity_threshold"`

	// Retrieval filtering.
	StrictThreshold   float64 `yaml:"strict_threshold" koanf:"strict_threshold"`
	FallbackThreshold float64 `yaml:"fallback_threshold" koanf:"fallback_threshold"`

	// Pipeline limits.
	MaxRerankCandidates int `yaml:"max_rerank_candidates" koanf:"max_rerank_candidates"`
	MaxContextChars     int `yaml:"max_context_chars" koanf:"max_context_chars"`
	DefaultResults      int `yaml:"default_results" koanf:"default_results"`

	// Sync behavior.
	MaxChunkSize    int      `yaml:"max_chunk_size" koanf:"max_chunk_size"`
	MinChunkSize    int      `yaml:"min_chunk_size" koanf:"min_chunk_size"`
	BatchSize       int      `yaml:"batch_size" koanf:"batch_size"`
	SyncSkipFiles   []string `yaml:"rag_sync_skip_files" koanf:"rag_sync_skip_files"`
	SyncSkipDirs    []string `yaml:"rag_sync_skip_dirs" koanf:"rag_sync_skip_dirs"`
	SyncDocsDir     string   `yaml:"sync_docs_dir" koanf:"sync_docs_dir"`
	SyncMaxFileSize int64    `yaml:"sync_max_file_size" koanf:"sync_max_file_size"`

	// Alert summarization.
	AlertTimeWindowMinutes int      `yaml:"alert_time_window" koanf:"alert_time_window"`
	AlertMinProbability    float64  `yaml:"alert_min_probability" koanf:"alert_min_probability"`
	AlertSourceTypes       []string `yaml:"alert_source_types" koanf:"alert_source_types"`
	WhitelistIPQuery       []string `yaml:"whitelist_ip_query" koanf:"whitelist_ip_query"`

	// Risk scoring weights. Vestigial per spec.md §9 Open Questions; carried
	// as configuration but not consumed by the production formula, which is
	// hard-coded in internal/alerts.
	RiskScoreVolumeWeight     float64 `yaml:"risk_score_volume_weight" koanf:"risk_score_volume_weight"`
	RiskScoreSeverityWeight   float64 `yaml:"risk_score_severity_weight" koanf:"risk_score_severity_weight"`
	RiskScoreConfidenceWeight float64 `yaml:"risk_score_confidence_weight" koanf:"risk_score_confidence_weight"`
	RiskScoreEscalationWeight float64 `yaml:"risk_score_escalation_weight" koanf:"risk_score_escalation_weight"`

	// Cost accounting.
	InputPricePer1M  float64 `yaml:"input_price_per_1m" koanf:"input_price_per_1m"`
	OutputPricePer1M float64 `yaml:"output_price_per_1m" koanf:"output_price_per_1m"`

	// Vector-store connection.
	ChromaHost   string `yaml:"chroma_host" koanf:"chroma_host"`
	ChromaPort   int    `yaml:"chroma_port" koanf:"chroma_port"`
	ChromaDBPath string `yaml:"chroma_db_path" koanf:"chroma_db_path"`

	// L2 cache connection.
	RedisHost string `yaml:"redis_host" koanf:"redis_host"`
	RedisPort int    `yaml:"redis_port" koanf:"redis_port"`
	RedisDB   int    `yaml:"redis_db" koanf:"redis_db"`

	// Prompt files (§6).
	PromptDir string `yaml:"prompt_dir" koanf:"prompt_dir"`

	// Log-truncation length for debug output. Spec.md §9 notes the source's
	// DEBUG_TEXT_LENGTH is referenced but never declared; exposed here as an
	// explicit option instead.
	DebugTextLength int `yaml:"debug_text_length" koanf:"debug_text_length"`

	// Server.
	ListenAddr string `yaml:"listen_addr" koanf:"listen_addr"`

	// Alert audit trail (internal/alerts digest history, sqlite-backed).
	AlertAuditDBPath string `yaml:"alert_audit_db_path" koanf:"alert_audit_db_path"`

	// Log store (internal/logstore's Elasticsearch-style `_search` adapter).
	LogStoreURL          string `yaml:"log_store_url" koanf:"log_store_url"`
	LogStoreUsername     string `yaml:"log_store_username" koanf:"log_store_username"`
	LogStorePassword     string `yaml:"log_store_password" koanf:"log_store_password"`
	LogStoreIndexPattern string `yaml:"log_store_index_pattern" koanf:"log_store_index_pattern"`

	// Case-management adapter (internal/caseadapter), primary + optional
	// fallback source.
	CaseAdapterPrimaryName     string `yaml:"case_adapter_primary_name" koanf:"case_adapter_primary_name"`
	CaseAdapterPrimaryURL      string `yaml:"case_adapter_primary_url" koanf:"case_adapter_primary_url"`
	CaseAdapterPrimaryAPIKey   string `yaml:"case_adapter_primary_api_key" koanf:"case_adapter_primary_api_key"`
	CaseAdapterFallbackName    string `yaml:"case_adapter_fallback_name" koanf:"case_adapter_fallback_name"`
	CaseAdapterFallbackURL     string `yaml:"case_adapter_fallback_url" koanf:"case_adapter_fallback_url"`
	CaseAdapterFallbackAPIKey  string `yaml:"case_adapter_fallback_api_key" koanf:"case_adapter_fallback_api_key"`

	// Alert summarization extras not covered above.
	AlertVisualizationEnabled bool `yaml:"alert_visualization_enabled" koanf:"alert_visualization_enabled"`
	AlertAIAnalysisEnabled    bool `yaml:"alert_ai_analysis_enabled" koanf:"alert_ai_analysis_enabled"`

	MaxConcurrency int `yaml:"max_concurrency" koanf:"max_concurrency"`
}
