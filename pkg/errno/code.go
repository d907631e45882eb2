package errno

import "fmt"

// code=0 请求成功
// code=4xx 客户端请求错误
// code=5xx 服务器端错误
// code=2xxxx 业务处理错误码

type Errno struct {
	Code    int
	Message string
}

// Error 实现error接口
func (e *Errno) Error() string {
	return e.Message
}

// WithMessage returns a copy of the errno carrying a specific message while
// keeping the original code, so errors.Is style comparisons via Is keep working.
func (e *Errno) WithMessage(format string, args ...interface{}) *Errno {
	return &Errno{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the same errno code as target.
func Is(err error, target *Errno) bool {
	if err == nil || target == nil {
		return false
	}
	en, ok := err.(*Errno)
	return ok && en.Code == target.Code
}

// CodeOf extracts the errno code from err, falling back to 500.
func CodeOf(err error) int {
	if en, ok := err.(*Errno); ok {
		return en.Code
	}
	return 500
}

var (
	OK = &Errno{Code: 200, Message: "Success"}

	ErrValidation   = &Errno{Code: 400, Message: "Invalid parameter"}
	ErrUnauthorized = &Errno{Code: 401, Message: "Unauthorized"}
	ErrForbidden    = &Errno{Code: 403, Message: "Forbidden"}
	ErrNotFound     = &Errno{Code: 404, Message: "Not found"}
	ErrConflict     = &Errno{Code: 409, Message: "State conflict"}

	ErrInternalServer = &Errno{Code: 500, Message: "Internal server error"}
	ErrUnknown        = &Errno{Code: 510, Message: "Unknown error"}

	// 业务错误码
	ErrMissingParam       = &Errno{Code: 20001, Message: "Missing required parameter"}
	ErrSourceRefRequired  = &Errno{Code: 20002, Message: "Source reference is required"}
	ErrOwnerRequired      = &Errno{Code: 20003, Message: "Owner identity is required"}
	ErrJobNotFound        = &Errno{Code: 20004, Message: "Media job not found"}
	ErrJobNotOwned        = &Errno{Code: 20005, Message: "Media job belongs to another owner"}
	ErrJobTerminal        = &Errno{Code: 20006, Message: "Media job already reached a terminal status"}
	ErrJobNotTerminal     = &Errno{Code: 20007, Message: "Media job is still active"}
	ErrJobNotCompleted    = &Errno{Code: 20008, Message: "Media job has not completed"}
	ErrBatchEmpty         = &Errno{Code: 20009, Message: "Batch contains no items"}
	ErrBatchTooLarge      = &Errno{Code: 20010, Message: "Batch exceeds the maximum item count"}
	ErrQueueFull          = &Errno{Code: 20011, Message: "Job queue is full"}
	ErrInvalidFormat      = &Errno{Code: 20012, Message: "Unsupported subtitle format"}
	ErrTargetLangRequired = &Errno{Code: 20013, Message: "Target language is required"}
	ErrNoTranscript       = &Errno{Code: 20014, Message: "Transcription has no result yet"}

	// 外部引擎错误码：后台任务捕获到作业上，不向调用方抛出
	ErrEngine        = &Errno{Code: 20101, Message: "Engine execution failed"}
	ErrEngineTimeout = &Errno{Code: 20102, Message: "Engine call timed out"}
)
