// Package httpsvc — HTTP-интерфейс админки: CRUD каталога, checkout, webhook оплаты и дашборд.
package httpsvc

import (
	"context"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/metrics"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/catalog"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/checkout"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/guard"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/idempotency"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/revenue"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/settlement"
)

const maxBodyBytes = 1 << 20

// Checkouter создаёт заказ и сессию оплаты.
type Checkouter interface {
	Checkout(ctx context.Context, storeID string, productIDs []string) (checkout.Result, error)
}

// WebhookHandler применяет подписанное событие провайдера оплаты.
type WebhookHandler interface {
	Handle(ctx context.Context, payload []byte, signature string) error
}

var (
	_ Checkouter     = (*checkout.Service)(nil)
	_ WebhookHandler = (*settlement.Handler)(nil)
)

// Deps перечисляет сервисы HTTP-слоя.
type Deps struct {
	Catalog     *catalog.Service
	Checkout    Checkouter
	Settlement  WebhookHandler
	Revenue     *revenue.Aggregator
	Guard       *guard.Guard
	Idempotency *idempotency.Keeper
	Metrics     *metrics.ShopMetrics
	// Identity извлекает пользователя из запроса; по умолчанию HeaderIdentity.
	Identity IdentityFunc
}

// Handler маршрутизирует запросы к сервисам.
type Handler struct {
	deps   Deps
	logger *log.Entry
	root   *http.ServeMux
}

// apiFunc возвращает ошибку вместо записи ответа.
type apiFunc func(w http.ResponseWriter, r *http.Request) error

// New собирает маршруты. Пути /stores и /webhook живут в корневом mux,
// маршруты вида /{storeId}/... — во вложенном, иначе шаблоны пересекаются.
func New(deps Deps, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.WithField("component", "http")
	}
	if deps.Identity == nil {
		deps.Identity = HeaderIdentity
	}
	h := &Handler{deps: deps, logger: logger.WithField("layer", "http"), root: http.NewServeMux()}

	scoped := http.NewServeMux()
	h.registerStores(h.root)
	h.handle(h.root, "POST /webhook", "WEBHOOK", h.webhook)

	mountResource(h, scoped, billboardResource(deps.Catalog))
	mountResource(h, scoped, categoryResource(deps.Catalog))
	mountResource(h, scoped, sizeResource(deps.Catalog))
	mountResource(h, scoped, colorResource(deps.Catalog))
	mountResource(h, scoped, productResource(deps.Catalog))
	mountResource(h, scoped, orderResource(deps.Catalog))
	h.handle(scoped, "GET /{storeId}/orders/{orderId}/timeline", "ORDER_TIMELINE_GET", h.orderTimeline)
	h.handle(scoped, "GET /{storeId}/dashboard", "DASHBOARD_GET", h.dashboard)
	h.handle(scoped, "POST /{storeId}/checkout", "CHECKOUT_POST", withCORS(h.checkout))
	h.handle(scoped, "OPTIONS /{storeId}/checkout", "CHECKOUT_OPTIONS", withCORS(preflight))

	h.root.Handle("/", scoped)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.root.ServeHTTP(w, r)
}

// handle регистрирует маршрут с метриками и переводом ошибок в HTTP-ответ.
func (h *Handler) handle(mux *http.ServeMux, pattern, op string, fn apiFunc) {
	mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		if err := fn(rec, r); err != nil {
			h.writeError(rec, r, op, err)
		}
		h.deps.Metrics.ObserveRequest(pattern, r.Method, rec.statusCode(), time.Since(started))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) statusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

func (h *Handler) userID(r *http.Request) string {
	return h.deps.Identity(r)
}
