package transport

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rs/zerolog"
)

// SQSClient é o subconjunto do client SQS usado pelo resetter.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Resetter volta o estado simulado ao seed.
type Resetter interface {
	Reload()
}

// SQSResetter escuta a fila de reset: cada mensagem recebida recarrega o
// seed do backend e é removida da fila.
type SQSResetter struct {
	client     SQSClient
	queueURL   string
	target     Resetter
	logger     zerolog.Logger
	retryAfter time.Duration
	waitTime   int32
}

func NewSQSResetter(client SQSClient, queueURL string, target Resetter, log zerolog.Logger) *SQSResetter {
	return &SQSResetter{
		client:     client,
		queueURL:   queueURL,
		target:     target,
		logger:     log.With().Str("component", "sqs_resetter").Logger(),
		retryAfter: 5 * time.Second,
		waitTime:   20,
	}
}

// Start bloqueia até ctx ser cancelado.
func (s *SQSResetter) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("fila de reset não configurada")
		return
	}
	s.logger.Info().Str("queue", s.queueURL).Msg("monitorando fila de reset")

	for ctx.Err() == nil {
		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     s.waitTime,
		})
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			s.logger.Error().Err(err).Dur("retry_after", s.retryAfter).Msg("erro ao ler fila de reset")
			select {
			case <-ctx.Done():
			case <-time.After(s.retryAfter):
			}
			continue
		}

		for _, msg := range out.Messages {
			s.target.Reload()
			s.logger.Info().Str("message_id", aws.ToString(msg.MessageId)).Msg("estado simulado recarregado")

			if _, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			}); err != nil {
				s.logger.Warn().Err(err).Msg("falha ao remover mensagem de reset")
			}
		}
	}
	s.logger.Info().Msg("parando monitoramento da fila de reset")
}
