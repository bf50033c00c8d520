package config

import (
	"log/slog"
	"time"
)

const (
	IS_PROD                     = false
	LOG_LEVEL_PROD              = slog.LevelInfo
	TRACE_ID_KEY                = "traceId"
	SessionCookieName           = "tutor_session"
	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//chunking + retrieval
	ChunkWindowSize = 1000 //characters, not bytes
	RetrievalTopK   = 3    //per index
	SummaryTopK     = 4
	IngestBatchSize = 100

	//both gemini-embedding-001 (truncated) and text-embedding-3-small produce 1536
	EmbeddingOutputDimensionality int32 = 1536
	CollectionPrefix                    = "tutor"

	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 60 * time.Second //uploads up to MaxUploadSize
	WriteTimeout           = 90 * time.Second //chat is synchronous
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second
	ChatTimeout            = 60 * time.Second
	IngestJobTimeout       = 5 * time.Minute

	//server listening port
	ServerListenAddr = ":3000"

	//job requests buffer limit
	BufferLimit = 100
	//how long a request waits for a free slot before getting ErrQueueFull
	EnqueueWaitTimeout = 2 * time.Second

	//uploads
	MaxUploadSize    = 32 << 20 //32mb
	UploadDirectory  = "temporary_data"
	PageParseTimeout = 10 * time.Second

	//sessions
	SessionIdleTimeout     = 2 * time.Hour
	SessionCleanupInterval = 10 * time.Minute

	//vectorDB
	QdrantConnectionTimeout = 3 * time.Second
	QdrantHost              = "localhost"
	QdrantGrpcPort          = 6334
	QdrantUseTLS            = false //set for https
	QdrantPoolSize          = 1     //2-5 is preferred for prod according to documentation

	//llm
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"

	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	ModelTemperature  float32 = 0.7
	PlaceholderAPIKey         = "PASTE YOUR API KEY HERE"

	//web fetch
	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second
	WebFetchTimeout     = 30 * time.Second
	WebMaxBodyBytes     = 8 << 20
	WebUserAgent        = "AITutor/1.0 (+https://github.com/akolanti/AITutor)"

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	//redis has 16 DB we can use
	RedisJobStore     = 0
	RedisMessageStore = 1
	RedisSummaryStore = 2

	//redis timeouts
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = SessionIdleTimeout + SessionCleanupInterval
	RedisSummaryTTL      = 6 * time.Hour
)
