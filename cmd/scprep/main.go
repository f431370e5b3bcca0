// Copyright (C) The scprep Authors. All rights reserved.
//
// SPDX-License-Identifier: AGPL-3.0

package main

import "github.com/genecount/scprep"

func main() {
	scprep.Main()
}
