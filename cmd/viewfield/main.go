/*
Command viewfield parses viewfield argument expressions and renders the
viewfields of entities described by a site file.

# Installation

To install the latest version of viewfield, run:

	go install blake.io/viewfield/cmd/viewfield@latest

# Usage

Print the arguments an expression passes to a view, with placeholders for
the node entity replaced:

	viewfield args --type node --set nid=42 --set author:name=alice '[node:nid],"a, [node:author:name]"'

Render an entity of a site file, including every view its viewfield embeds:

	viewfield render --site site.yaml node 1

Check the rendered HTML with CSS selectors (see package checks):

	viewfield check --site site.yaml node 1 '.view__title == Related to 2' '.field__item count 1'

# Configuration

Flags may also be set in a YAML file named by --config, with dashes in flag
names written as underscores:

	log_level: debug
	site: testdata/site.yaml
*/
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	err := run(context.Background(), os.Stdout, os.Stderr, os.Exit, os.Args[1:]...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "viewfield: %v\n", err)
		os.Exit(1)
	}
}
