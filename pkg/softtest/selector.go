package softtest

import (
	"strings"

	"github.com/kidandcat/softassert/pkg/softassert"
)

var selectorPrefixes = []struct {
	prefix string
	by     softassert.By
}{
	{"css=", softassert.ByCSS},
	{"id=", softassert.ByID},
	{"xpath=", softassert.ByXPath},
	{"name=", softassert.ByName},
	{"tag=", softassert.ByTag},
	{"js=", softassert.ByJSPath},
}

// ParseSelector splits "xpath=//a" style selectors into a locator strategy
// and value. Without a prefix, "//..." and "(//..." are XPath and anything
// else is CSS.
func ParseSelector(s string) (softassert.By, string) {
	for _, p := range selectorPrefixes {
		if strings.HasPrefix(s, p.prefix) {
			return p.by, strings.TrimPrefix(s, p.prefix)
		}
	}
	if strings.HasPrefix(s, "//") || strings.HasPrefix(s, "(//") {
		return softassert.ByXPath, s
	}
	return softassert.ByCSS, s
}
