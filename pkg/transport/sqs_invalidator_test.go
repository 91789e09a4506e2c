package transport

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/raywall/dispatch-console/pkg/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- Mocks ---

type MockSQSClient struct {
	mock.Mock
}

func (m *MockSQSClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sqs.ReceiveMessageOutput), args.Error(1)
}

func (m *MockSQSClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	args := m.Called(ctx, params)
	return nil, args.Error(1)
}

// MockInvalidator registra os serviços invalidados (thread-safe).
type MockInvalidator struct {
	mu  sync.Mutex
	ids []string
	Err error
}

func (m *MockInvalidator) Invalidate(_ context.Context, serviceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids = append(m.ids, serviceID)
	return m.Err
}

func (m *MockInvalidator) Invalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ids...)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) Count(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockMetrics) Gauge(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

func (m *MockMetrics) Histogram(name string, value float64, tags []string) error {
	return m.Called(name, value, tags).Error(0)
}

// --- Tests ---

func TestSQSInvalidator_Start(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mockSQS := new(MockSQSClient)
	inv := &MockInvalidator{}
	m := new(MockMetrics)
	m.On("Count", metrics.CacheInvalidated, float64(1), []string{"service:beer-api", "source:sqs"}).Return(nil).Once()

	out := &sqs.ReceiveMessageOutput{Messages: []types.Message{
		{Body: aws.String(`{"serviceId":"beer-api"}`), ReceiptHandle: aws.String("r1")},
		{Body: aws.String(`not json`), ReceiptHandle: aws.String("r2")},
	}}
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).Return(out, nil).Once()
	mockSQS.On("ReceiveMessage", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { cancel() }).
		Return(nil, context.Canceled)
	mockSQS.On("DeleteMessage", mock.Anything, mock.Anything).Return(nil, nil)

	s := NewSQSInvalidator(mockSQS, "https://sqs.local/queue", inv, m, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("invalidator não encerrou após cancelamento")
	}

	assert.Equal(t, []string{"beer-api"}, inv.Invalidated())
	mockSQS.AssertNumberOfCalls(t, "DeleteMessage", 2)
	m.AssertExpectations(t)
}

func TestSQSInvalidator_InvalidateError(t *testing.T) {
	m := new(MockMetrics)
	inv := &MockInvalidator{Err: errors.New("redis down")}
	s := NewSQSInvalidator(new(MockSQSClient), "q", inv, m, zerolog.Nop())

	s.handle(context.Background(), `{"serviceId":"beer-api"}`)

	assert.Equal(t, []string{"beer-api"}, inv.Invalidated())
	m.AssertNotCalled(t, "Count", mock.Anything, mock.Anything, mock.Anything)
}

func TestSQSInvalidator_NoQueue(t *testing.T) {
	mockSQS := new(MockSQSClient)
	s := NewSQSInvalidator(mockSQS, "", &MockInvalidator{}, metrics.Multi{}, zerolog.Nop())

	s.Start(context.Background())

	mockSQS.AssertNotCalled(t, "ReceiveMessage", mock.Anything, mock.Anything)
}
