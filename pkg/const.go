package pkg

const (
	HeaderTraceId      string = "X-Trace-Id"
	HeaderRequestId    string = "X-Request-Id"
	HeaderForwardedFor string = "X-Forwarded-For"
)

const (
	TraceId   string = "trace_id"
	RequestId string = "request_id"
)

// ContentTypeJSON is the only content type the trade endpoint accepts.
const ContentTypeJSON string = "application/json"
