// Command fpdpcd keeps the PCD build definitions of a platform description
// consistent with the modules and packages of a workspace.
package main

import "github.com/albertocavalcante/go-fpd/cmd/fpdpcd/cmd"

func main() {
	cmd.Execute()
}
