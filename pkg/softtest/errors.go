package softtest

import "errors"

var (
	ErrNoTestResults = errors.New("no test results available")
	ErrNoKeyboard    = errors.New("element does not accept input")
)
