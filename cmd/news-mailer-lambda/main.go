// Command news-mailer-lambda runs one digest cycle per Lambda invocation,
// typically fired by an EventBridge schedule.
package main

import (
	"context"
	"encoding/json"
	_ "time/tzdata"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/Adda-Baaj/khobor-mailer/internal/app"
	"github.com/Adda-Baaj/khobor-mailer/internal/config"
	"github.com/Adda-Baaj/khobor-mailer/internal/logger"
)

// Response is returned to the Lambda runtime.
type Response struct {
	Sent     bool `json:"sent"`
	Sections int  `json:"sections"`
	Articles int  `json:"articles"`
}

// Handler ignores the trigger payload and runs the same cycle as the CLI.
func Handler(ctx context.Context, _ json.RawMessage) (Response, error) {
	cfg, err := config.Load()
	if err != nil {
		return Response{}, err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return Response{}, err
	}
	defer func() { _ = log.Sync() }()

	res, err := app.RunOnce(ctx, cfg, log)
	if err != nil {
		log.ErrorObj("digest run failed", "run_failed", map[string]any{"error": err.Error()})
		return Response{}, err
	}
	return Response{Sent: res.Sent, Sections: res.Sections, Articles: res.Articles}, nil
}

func main() {
	lambda.Start(Handler)
}
