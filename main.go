// SPDX-License-Identifier: MIT
package main

import "github.com/skaphos/syncwatch/cmd/syncwatch"

// execute is overridable in tests.
var execute = syncwatch.Execute

func main() {
	execute()
}
