package constants

type ContextKey string

const (
	AppKey            ContextKey = "app"
	PoolKey           ContextKey = "pool"
	TxKey             ContextKey = "tx"
	LoggerKey         ContextKey = "logger"
	ParamsKey         ContextKey = "params"
	TenantIDKey       ContextKey = "tenantID"
	OrgSlugKey        ContextKey = "orgSlug"
	RequestIDKey      ContextKey = "requestID"
	UserIDKey         ContextKey = "userID"
	ExternalUserIDKey ContextKey = "externalUserID"
)

const (
	// Header carrying the tenant slug resolved from the request host.
	// Always set by the tenant middleware, empty when no tenant resolved.
	OrgSlugHeader = "X-Org-Slug"
)
