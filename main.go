// Copyright (C) 2025, Databend Labs. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/hantmac/setup-bendsql/cmd"
)

func main() {
	cmd.Execute()
}
