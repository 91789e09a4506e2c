package transport

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/raywall/dispatch-console/pkg/gateway"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/rs/zerolog"
)

// SQSClient define o subconjunto do SQS usado pelo invalidador.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// invalidationEvent é o corpo publicado quando um serviço muda fora do console.
type invalidationEvent struct {
	ServiceID string `json:"serviceId"`
}

// SQSInvalidator consome eventos de alteração e remove a ServiceView do cache.
type SQSInvalidator struct {
	client      SQSClient
	queueURL    string
	invalidator gateway.Invalidator
	metrics     metrics.Provider
	logger      zerolog.Logger
	retryDelay  time.Duration
}

func NewSQSInvalidator(client SQSClient, queueURL string, inv gateway.Invalidator, m metrics.Provider, logger zerolog.Logger) *SQSInvalidator {
	return &SQSInvalidator{
		client:      client,
		queueURL:    queueURL,
		invalidator: inv,
		metrics:     m,
		logger:      logger.With().Str("component", "sqs_invalidator").Logger(),
		retryDelay:  5 * time.Second,
	}
}

// Start faz long polling até ctx ser cancelado (bloqueante).
func (s *SQSInvalidator) Start(ctx context.Context) {
	if s.queueURL == "" {
		s.logger.Warn().Msg("URL da fila SQS não configurada. Invalidação remota desativada.")
		return
	}

	s.logger.Info().Str("queue", s.queueURL).Msg("Monitorando fila SQS para invalidação de cache")

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Parando monitoramento SQS")
			return
		default:
		}

		out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
			QueueUrl:            aws.String(s.queueURL),
			MaxNumberOfMessages: 10,
			WaitTimeSeconds:     20,
		})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Error().Err(err).Msg("Erro no SQS. Retentando...")
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryDelay):
			}
			continue
		}

		for _, msg := range out.Messages {
			s.handle(ctx, aws.ToString(msg.Body))
			_, _ = s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
				QueueUrl:      aws.String(s.queueURL),
				ReceiptHandle: msg.ReceiptHandle,
			})
		}
	}
}

// handle processa uma mensagem. Mensagens inválidas são descartadas.
func (s *SQSInvalidator) handle(ctx context.Context, body string) {
	var ev invalidationEvent
	if err := json.Unmarshal([]byte(body), &ev); err != nil || ev.ServiceID == "" {
		s.logger.Warn().Str("body", body).Msg("Evento de invalidação ignorado")
		return
	}

	if err := s.invalidator.Invalidate(ctx, ev.ServiceID); err != nil {
		s.logger.Error().Err(err).Str("service_id", ev.ServiceID).Msg("Falha ao invalidar cache")
		return
	}
	s.metrics.Count(metrics.CacheInvalidated, 1, []string{"service:" + ev.ServiceID, "source:sqs"})
	s.logger.Info().Str("service_id", ev.ServiceID).Msg("Cache invalidado")
}
