// Command easel renders, inspects and verifies picture logs.
package main

import (
	"fmt"
	"os"

	"github.com/gogpu/easel/internal/cli"

	// Register the GPU backend when built without the nogpu tag.
	_ "github.com/gogpu/easel/backend/gpu"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
