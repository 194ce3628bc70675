package common

type contextKey string

const (
	TraceIdKey          contextKey = "trace_id"
	MetadataKey         contextKey = "metadata"
	RequestIPContextKey contextKey = "request_ip"
	UserIDContextKey    contextKey = "user_id"
	OrgIDContextKey     contextKey = "org_id"
	LatencyContextKey   contextKey = "__execution_time"
)
