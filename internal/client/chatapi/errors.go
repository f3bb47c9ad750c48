package chatapi

import "fmt"

// FailureKind 区分交互失败的来源。
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureStatus    FailureKind = "status"
	FailureDecode    FailureKind = "decode"
)

// ExchangeFailure 表示一次请求/响应交互未能得到可用结果。
type ExchangeFailure struct {
	Kind       FailureKind
	StatusCode int
	Body       string
	Err        error
}

func (e *ExchangeFailure) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Kind == FailureStatus:
		return fmt.Sprintf("chatapi: unexpected status %d: %s", e.StatusCode, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("chatapi: %s failure: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("chatapi: %s failure", e.Kind)
	}
}

func (e *ExchangeFailure) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newFailure(kind FailureKind, err error) *ExchangeFailure {
	return &ExchangeFailure{Kind: kind, Err: err}
}
