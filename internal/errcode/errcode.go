package errcode

// 错误码约定：
// - 0：无错误
// - 4xxx：请求方可修正的错误（字段缺失、文件不存在、限流）
// - 5xxx：服务端或上游错误
const (
	OK = 0

	Validation  = 4000
	NotFound    = 4004
	RateLimited = 4029

	SystemError     = 5000
	Configuration   = 5001
	Export          = 5002
	Upstream        = 5020
	UpstreamAuth    = 5021
	UpstreamQuota   = 5022
	UpstreamModel   = 5023
	UpstreamTimeout = 5024
)
