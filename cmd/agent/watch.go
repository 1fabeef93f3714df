package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/client"
)

var watchURL string

var watchCmd = &cobra.Command{
	Use:   "watch [text]",
	Short: "Send one message via tasks/sendSubscribe and print every streamed event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(watchURL)
		params := a2a.TaskSendParams{
			ID: uuid.NewString(),
			Message: a2a.Message{
				MessageId: uuid.NewString(),
				Role:      a2a.MessageRoleUser,
				Parts:     []a2a.Part{a2a.TextPart{Text: args[0]}},
			},
		}

		for resp, err := range c.Stream(context.Background(), a2a.MethodTasksSendSubscribe, params) {
			if err != nil {
				return err
			}
			if resp.Error != nil {
				return resp.Error
			}

			switch event := resp.Result.(type) {
			case a2a.TaskStatusUpdateEvent:
				fmt.Printf("status: %s (final=%v)\n", event.Status.State, event.Final)
				if event.Final {
					return nil
				}
			case a2a.TaskArtifactUpdateEvent:
				for _, part := range event.Artifact.Parts {
					if text, ok := part.(a2a.TextPart); ok {
						fmt.Printf("artifact %s: %s\n", event.Artifact.Name, text.Text)
					}
				}
			case *a2a.JSONRPCError:
				return event
			}
		}
		return nil
	},
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "http://localhost:8080", "base URL of the remote agent")
	rootCmd.AddCommand(watchCmd)
}
