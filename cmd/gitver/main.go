// Command gitver prints a semantic version derived from a git repository's
// history.
package main

import "github.com/jmgilman/gitver/cmd/gitver/cmd"

func main() {
	cmd.Execute()
}
