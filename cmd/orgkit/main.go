// Command orgkit queries, exports, serves and watches organization data files
package main

import (
	"os"

	"github.com/ridge/orgkit/cli"
)

func main() {
	cli.Main(os.Args)
}
