package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/softworldpro/scheduling-team/config"
	"github.com/softworldpro/scheduling-team/internal/llm"
	"github.com/softworldpro/scheduling-team/team"
	"github.com/softworldpro/scheduling-team/tools/googlecalendar"
	"github.com/softworldpro/scheduling-team/tools/slack"
	"github.com/softworldpro/scheduling-team/tools/zoom"
)

const defaultRequest = "List all my upcoming Zoom meetings"

func main() {
	// A missing .env is fine, the environment may be set directly.
	godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	auth := zoom.NewAuthorizer(cfg.Zoom.AccountID, cfg.Zoom.ClientID, cfg.Zoom.ClientSecret)
	zoomTool := zoom.New(auth)
	slackTool := slack.New(cfg.Slack.Token)
	calendarTool, err := googlecalendar.New(ctx, googlecalendar.WithCredentialsFile(cfg.Google.CredentialsPath))
	if err != nil {
		logger.Error("build calendar tool", "error", err)
		os.Exit(1)
	}

	crew := team.New(llm.NewInstructor(cfg.LLM), cfg.LLM.Model, zoomTool, calendarTool, slackTool, team.WithLogger(logger))

	request := strings.TrimSpace(strings.Join(os.Args[1:], " "))
	if request == "" {
		request = defaultRequest
	}

	resp, err := crew.Run(ctx, request)
	if err != nil {
		logger.Error("run team", "error", err)
		os.Exit(1)
	}
	for _, step := range resp.Steps {
		logger.Info("step done", "agent", step.Agent, "task", step.Task)
	}
	fmt.Println(resp.Content)
}
