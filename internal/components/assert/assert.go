// Package assert panics on programmer errors in constructors.
package assert

import "fmt"

// NotEmptyStr panics when value is empty, naming the offending argument.
func NotEmptyStr(name, value string) {
	if value == "" {
		panic(fmt.Sprintf("%s must be a non-empty string", name))
	}
}
