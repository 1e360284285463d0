package webhook

import "github.com/stretchr/testify/mock"

// MatchLog creates a custom matcher for log arguments in mocks
func MatchLog(matcher func(Log) bool) interface{} {
	return mock.MatchedBy(matcher)
}

// MatchCompletion creates a custom matcher for completion arguments in mocks
func MatchCompletion(matcher func(Completion) bool) interface{} {
	return mock.MatchedBy(matcher)
}
