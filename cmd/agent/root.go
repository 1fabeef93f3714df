// Command agent hosts a reference A2A agent and exercises it from the
// command line, grounded on the teacher's pack-mate TheApeMachine-a2a-go's
// cobra-based cmd/ layout (its own main.go ships no CLI at all).
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run or call a reference Agent-to-Agent (A2A) protocol agent",
	Long:  longRoot,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var longRoot = `
agent hosts or talks to an A2A-compatible agent:

  agent serve        run a reference agent (the EchoExecutor) over HTTP + SSE
  agent send         send one message to a remote agent and print the task
  agent watch        send one message and stream status/artifact updates
`
