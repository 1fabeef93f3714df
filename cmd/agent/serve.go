package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go-micro.dev/v5/logger"

	"github.com/micro/micro-a2a/pkg/a2a"
	"github.com/micro/micro-a2a/pkg/a2a/demo"
	"github.com/micro/micro-a2a/pkg/a2a/server"
	"github.com/micro/micro-a2a/pkg/a2a/taskmanager"
)

var (
	serveAddr string
	serveName string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reference EchoExecutor agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		card := a2a.AgentCard{
			Name:        serveName,
			Description: "Reference A2A agent that echoes the sent message back as an artifact.",
			URL:         "http://" + serveAddr,
			Version:     "0.1.0",
			Capabilities: &a2a.AgentCapabilities{
				Streaming:              true,
				PushNotifications:      true,
				StateTransitionHistory: true,
			},
			DefaultInputModes:  []string{"text/plain"},
			DefaultOutputModes: []string{"text/plain"},
			Skills: []a2a.AgentSkill{
				{ID: "echo", Name: "Echo", Description: "Echoes the sent text back as an artifact", Tags: []string{"demo"}},
			},
		}

		tm := taskmanager.New(demo.EchoExecutor{}, nil, nil, logger.NewLogger())
		srv := server.New(card, tm, server.WithAddr(serveAddr))

		fmt.Printf("serving %q on %s\n", card.Name, serveAddr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveName, "name", "Echo Agent", "agent name advertised in the agent card")
	rootCmd.AddCommand(serveCmd)
}
