package executor

import "errors"

// Error codes reported under the "code" key of GraphQLError.Extensions.
const (
	CodeUnknownField       = "UNKNOWN_FIELD"
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeDepthLimitExceeded = "DEPTH_LIMIT_EXCEEDED"
)

// CodedError is implemented by resolver errors that carry a machine-readable
// code. The executor copies the code into the located error.
type CodedError interface {
	error
	ErrorCode() string
}

// GraphQLError represents an error that occurred during execution
type GraphQLError struct {
	Message    string         `json:"message"`
	Path       Path           `json:"path,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (e GraphQLError) Error() string {
	return e.Message
}

// Code returns the extensions code, or "" when none was recorded.
func (e GraphQLError) Code() string {
	code, _ := e.Extensions["code"].(string)
	return code
}

func newGraphQLError(err error, path Path) GraphQLError {
	ge := GraphQLError{Message: err.Error(), Path: path}
	var coded CodedError
	if errors.As(err, &coded) && coded.ErrorCode() != "" {
		ge.Extensions = map[string]any{"code": coded.ErrorCode()}
	}
	return ge
}

// ExecutionResult represents the result of executing a GraphQL query
type ExecutionResult struct {
	Data   any            `json:"data"`
	Errors []GraphQLError `json:"errors,omitempty"`
}
