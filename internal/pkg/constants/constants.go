package constants

const (
	ViperServerAddr         = "server.addr"
	ViperServerAllowOrigins = "server.allow_origins"
	ViperServerMaxFileSize  = "server.max_file_size"

	ViperLogLevel       = "log.level"
	ViperLogDevelopment = "log.development"

	ViperPostgresDSN = "postgres.dsn"
	ViperRedisURL    = "redis.url"

	ViperArchiveBucket    = "archive.bucket"
	ViperArchiveRegion    = "archive.region"
	ViperArchiveEndpoint  = "archive.endpoint"
	ViperArchiveAccessKey = "archive.access_key"
	ViperArchiveSecretKey = "archive.secret_key"

	ViperSecretKey = "auth.secret"

	ViperUploadChunkSize         = "upload.chunk_size"
	ViperUploadMaxChunkSize      = "upload.max_chunk_size"
	ViperUploadConcurrency       = "upload.concurrency"
	ViperUploadMaxConcurrency    = "upload.max_concurrency"
	ViperUploadRequestsPerSecond = "upload.requests_per_second"
	ViperUploadMaxAttempts       = "upload.max_attempts"
	ViperUploadStaleAfter        = "upload.stale_after"

	ViperJobsTTL = "jobs.ttl"
)

const (
	HeaderAuthorization = "Authorization"
	CookieKeyAuthToken  = "auth_token"
	CtxKeyClaims        = "claims"
)
