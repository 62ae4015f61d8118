// Command argsinto-vet reports the marked functions that cannot be
// rewritten. It can be run on its own or through go vet -vettool.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/gnolang/argsinto/analyzer"
)

func main() { singlechecker.Main(analyzer.Analyzer) }
