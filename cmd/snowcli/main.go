/*************************************************************************
 * Copyright 2026 the servicenow-agent authors. All rights reserved.
 *
 * This software may be modified and distributed under the terms of the
 * BSD 2-clause license. See the LICENSE file for details.
 **************************************************************************/

package main

import (
	"os"

	"github.com/Ciscokidok/servicenow-agent/clilog"
	"github.com/Ciscokidok/servicenow-agent/tree"
)

func main() {
	code := tree.Execute()
	clilog.Destroy()
	os.Exit(code)
}
