// Command qualflow reports possible nil dereferences.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/sirkon/qualflow"
)

func main() {
	singlechecker.Main(qualflow.Analyzer)
}
