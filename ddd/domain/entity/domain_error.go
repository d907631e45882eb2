package entity

// DomainError 领域规则被违反时返回
type DomainError struct {
	msg string
}

// NewDomainError 创建领域错误
func NewDomainError(msg string) *DomainError {
	return &DomainError{msg: msg}
}

// Error 实现error接口
func (e *DomainError) Error() string {
	return e.msg
}
