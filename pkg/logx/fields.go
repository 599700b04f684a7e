package logx

const (
	FieldAgent           = "agent"
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldAttempts        = "attempts"
	FieldBatch           = "batch"
	FieldCode            = "code"
	FieldDurationMs      = "duration-ms"
	FieldError           = "error"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIP              = "ip"
	FieldItemID          = "item-id"
	FieldItemName        = "item-name"
	FieldListings        = "listings"
	FieldLocation        = "location"
	FieldPrice           = "price"
	FieldQuantity        = "quantity"
	FieldReason          = "reason"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldRunID           = "run-id"
	FieldStack           = "stack"
	FieldState           = "state"
	FieldSurface         = "surface"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
