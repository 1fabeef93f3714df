package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/client"
)

var sendURL string

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send one message to a remote agent via tasks/send and print the task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(sendURL)
		params := a2a.TaskSendParams{
			ID: uuid.NewString(),
			Message: a2a.Message{
				MessageId: uuid.NewString(),
				Role:      a2a.MessageRoleUser,
				Parts:     []a2a.Part{a2a.TextPart{Text: args[0]}},
			},
		}

		resp, err := c.Call(context.Background(), a2a.MethodTasksSend, params)
		if err != nil {
			return err
		}
		if resp.Error != nil {
			return resp.Error
		}

		task, ok := resp.Result.(a2a.Task)
		if !ok {
			return fmt.Errorf("unexpected result type %T", resp.Result)
		}
		fmt.Printf("task %s: %s\n", task.ID, task.Status.State)
		for _, artifact := range task.Artifacts {
			for _, part := range artifact.Parts {
				if text, ok := part.(a2a.TextPart); ok {
					fmt.Printf("  %s: %s\n", artifact.Name, text.Text)
				}
			}
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendURL, "url", "http://localhost:8080", "base URL of the remote agent")
	rootCmd.AddCommand(sendCmd)
}
