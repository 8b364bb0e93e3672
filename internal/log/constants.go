package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeyProcess            = "process"
	KeyTag                = "tag"
	KeyConfig             = "config"
	KeyDbURL              = "dbUrl"
	KeyProduct            = "product"
	KeyProducts           = "products"
	KeyProductID          = "productId"
	KeySku                = "sku"
	KeyCategory           = "category"
	KeyCursor             = "cursor"
	KeyPageSize           = "pageSize"
	KeyPrincipal          = "principal"
	KeyCacheKey           = "cacheKey"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestProcessedAt = "requestProcessedAt"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
)
