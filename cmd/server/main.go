package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/insurance-sim/pkg/config"
	"github.com/raywall/insurance-sim/pkg/engine"
	"github.com/raywall/insurance-sim/pkg/transport"
)

var (
	configPath string
	// Variáveis injetáveis para mocking
	serverStarter = transport.StartHTTPServer
	lambdaStarter = func(handler interface{}) { lambda.Start(handler) }
	resetStarter  = startResetter
)

func init() {
	configPath = os.Getenv("CONFIG_FILE_PATH")
}

func main() {
	if configPath == "" {
		log.Fatalln("FATAL: CONFIG_FILE_PATH não definido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configPath); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run(ctx context.Context, cfgPath string) error {
	cfg, err := config.NewLoader().Load(ctx, cfgPath)
	if err != nil {
		return err
	}

	svc, err := engine.NewServiceEngine(cfg, cfgPath)
	if err != nil {
		return err
	}

	switch cfg.Service.Runtime {
	case "local":
		if cfg.Service.ResetQueue != "" {
			if err := resetStarter(ctx, svc); err != nil {
				return err
			}
		}
		metricsPath, metricsHandler := svc.MetricsHandler()
		handler := transport.NewHTTPHandler(svc.Gateway, svc.Gateway.Prefix(), svc.Logger,
			transport.WithMetricsHandler(metricsPath, metricsHandler))
		return serverStarter(ctx, cfg.Service.Port, handler, svc.Logger)
	case "lambda":
		handler := transport.NewLambdaHandler(svc.Gateway, svc.Logger)
		lambdaStarter(handler.Handle)
		return nil
	default:
		return fmt.Errorf("runtime desconhecido: %s", cfg.Service.Runtime)
	}
}

// startResetter sobe o loop SQS em background.
func startResetter(ctx context.Context, svc *engine.ServiceEngine) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("falha ao carregar config AWS para a fila de reset: %w", err)
	}
	resetter := transport.NewSQSResetter(sqs.NewFromConfig(awsCfg), svc.Config.Service.ResetQueue, svc, svc.Logger)
	go resetter.Start(ctx)
	return nil
}
