package config

// DefaultSyncSkipDirs are directory names the sync engine never descends into.
var DefaultSyncSkipDirs = []string{
	".git", "node_modules", "vendor", "__pycache__", ".venv",
}

// DefaultSyncSkipFiles are glob patterns the sync engine never indexes.
var DefaultSyncSkipFiles = []string{
	"*.lock", "*.min.js", "*.min.css", "*.pyc",
}

// DefaultConfig returns a Config with sensible defaults, mirroring the
// production system's observed constants.
func DefaultConfig() *Config {
	return &Config{
		Provider:          ProviderOpenAI,
		EmbeddingProvider: ProviderOpenAI,
		ChatModel:         "gpt-4o",
		SummaryModel:      "gpt-4o-mini",
		EmbeddingModel:    "text-embedding-3-small",
		CrossEncoderModel: "",
		CrossEncoderURL:   "",

		MaxCallsPerMinute: 60,
		MaxDailyCostUSD:   25.0,

		CacheEnabled:         true,
		CacheTTLSeconds:      3600,
		SemanticCacheEnabled: true,
		SimilarityThreshold:  0.85,

		StrictThreshold:   1.0,
		FallbackThreshold: 1.4,

		MaxRerankCandidates: 20,
		MaxContextChars:     8000,
		DefaultResults:      5,

		MaxChunkSize:    1000,
		MinChunkSize:    50,
		BatchSize:       100,
		SyncSkipFiles:   DefaultSyncSkipFiles,
		SyncSkipDirs:    DefaultSyncSkipDirs,
		SyncDocsDir:     "docs",
		SyncMaxFileSize: 10 * 1024 * 1024,

		AlertTimeWindowMinutes: 60,
		AlertMinProbability:    0.5,
		AlertSourceTypes:       []string{"ml-classifier"},
		WhitelistIPQuery:       nil,

		RiskScoreVolumeWeight:     0.2,
		RiskScoreSeverityWeight:   0.4,
		RiskScoreConfidenceWeight: 0.25,
		RiskScoreEscalationWeight: 0.15,

		InputPricePer1M:  2.5,
		OutputPricePer1M: 10.0,

		ChromaDBPath: ".smartxdr/chroma.gob.gz",

		RedisHost: "",
		RedisPort: 6379,
		RedisDB:   0,

		PromptDir: "prompts",

		DebugTextLength: 500,

		ListenAddr: ":8080",

		AlertAuditDBPath: ".smartxdr/alerts.db",

		LogStoreIndexPattern: "*",

		CaseAdapterPrimaryName: "primary",

		AlertVisualizationEnabled: true,
		AlertAIAnalysisEnabled:    true,

		MaxConcurrency: 5,
	}
}
