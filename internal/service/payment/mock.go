package payment

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// DefaultMockWebhookSecret — секрет подписи webhook для mock-провайдера в режиме разработки.
const DefaultMockWebhookSecret = "whsec_storeadmin_dev"

// MockProvider — конфигурируемая заглушка PaymentProvider для тестов и локальной разработки.
// Подпись webhook проверяется тем же кодом, что и у Stripe.
type MockProvider struct {
	mu sync.Mutex

	BaseURL       string
	WebhookSecret string
	SessionErr    error

	Requests     []domain.CheckoutSessionRequest
	SessionCalls int
	ParseCalls   int
}

// NewMockProvider возвращает mock с успешным сценарием по умолчанию.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		BaseURL:       "https://checkout.mock.local",
		WebhookSecret: DefaultMockWebhookSecret,
	}
}

// CreateCheckoutSession запоминает запрос и возвращает синтетическую сессию.
func (m *MockProvider) CreateCheckoutSession(_ context.Context, req domain.CheckoutSessionRequest) (domain.CheckoutSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SessionCalls++
	m.Requests = append(m.Requests, req)
	if m.SessionErr != nil {
		return domain.CheckoutSession{}, m.SessionErr
	}

	id := "cs_mock_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	return domain.CheckoutSession{
		ID:  id,
		URL: fmt.Sprintf("%s/pay/%s", strings.TrimRight(m.BaseURL, "/"), id),
	}, nil
}

// ParseWebhookEvent проверяет подпись секретом mock и декодирует событие.
func (m *MockProvider) ParseWebhookEvent(payload []byte, signature string) (domain.PaymentEvent, error) {
	m.mu.Lock()
	m.ParseCalls++
	secret := m.WebhookSecret
	m.mu.Unlock()

	return ParseEvent(payload, signature, secret)
}

// LastRequest возвращает последний запрос сессии.
func (m *MockProvider) LastRequest() (domain.CheckoutSessionRequest, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Requests) == 0 {
		return domain.CheckoutSessionRequest{}, false
	}
	return m.Requests[len(m.Requests)-1], true
}

var _ domain.PaymentProvider = (*MockProvider)(nil)
