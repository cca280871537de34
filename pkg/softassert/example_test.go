package softassert_test

import (
	"fmt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kidandcat/softassert/pkg/softassert"
)

func ExampleCollector() {
	c := softassert.New(softassert.WithSink(softassert.Discard))

	status, headers := 500, 3
	c.Assert(softassert.Equal(200, status, "status"))
	c.Assert(softassert.UnboundCheck(func(t require.TestingT) {
		assert.GreaterOrEqual(t, headers, 1)
	}))
	c.Assert(softassert.True(headers > 10, fmt.Sprintf("Found %d headers, but expected 10", headers)))

	fmt.Println(c.Err())
	// Output:
	// One or more checks failed:
	//   1. <unknown>: status: expected '200', got '500'
	//   2. <unknown>: Found 3 headers, but expected 10
}
