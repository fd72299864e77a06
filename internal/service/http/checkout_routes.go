package httpsvc

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/idempotency"
)

// HeaderIdempotencyKey передаёт необязательный ключ повтора checkout.
const HeaderIdempotencyKey = "Idempotency-Key"

var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
	"Access-Control-Allow-Headers": "Content-Type, Authorization, Idempotency-Key",
}

// withCORS добавляет разрешающие CORS-заголовки к любому ответу, включая ошибки.
func withCORS(next apiFunc) apiFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		for k, v := range corsHeaders {
			w.Header().Set(k, v)
		}
		return next(w, r)
	}
}

func preflight(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(http.StatusOK)
	return nil
}

type checkoutRequest struct {
	ProductIDs []string `json:"productIds"`
}

func (h *Handler) checkout(w http.ResponseWriter, r *http.Request) error {
	storeID := r.PathValue("storeId")
	body, err := readBody(r)
	if err != nil {
		return err
	}

	resp, replayed, err := h.deps.Idempotency.Do(r.Context(), "checkout:"+storeID, r.Header.Get(HeaderIdempotencyKey), body,
		func(ctx context.Context) idempotency.Response {
			return h.runCheckout(ctx, r, storeID, body)
		})
	if err != nil {
		return err
	}
	if replayed {
		w.Header().Set("Idempotent-Replayed", "true")
	}

	contentType := "application/json"
	if resp.Status >= http.StatusBadRequest {
		contentType = "text/plain; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
	return nil
}

// runCheckout выполняет checkout и сериализует результат для сохранения под ключом.
func (h *Handler) runCheckout(ctx context.Context, r *http.Request, storeID string, body []byte) idempotency.Response {
	var req checkoutRequest
	if err := decodeBytes(body, &req); err != nil {
		return failureResponse(err)
	}
	result, err := h.deps.Checkout.Checkout(ctx, storeID, req.ProductIDs)
	if err != nil {
		h.logFailure(r, "CHECKOUT_POST", err)
		return failureResponse(err)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		h.logFailure(r, "CHECKOUT_POST", domain.Internal(err))
		return failureResponse(domain.ErrInternal)
	}
	return idempotency.Response{Status: http.StatusOK, Body: payload}
}

func failureResponse(err error) idempotency.Response {
	return idempotency.Response{Status: StatusFor(domain.KindOf(err)), Body: []byte(domain.MessageOf(err))}
}

func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) error {
	signature := r.Header.Get("Stripe-Signature")
	if signature == "" {
		signature = r.Header.Get("Signature")
	}
	payload, err := readBody(r)
	if err != nil {
		return err
	}
	if err := h.deps.Settlement.Handle(r.Context(), payload, signature); err != nil {
		return err
	}
	w.WriteHeader(http.StatusOK)
	return nil
}

type monthView struct {
	Name  string  `json:"name"`
	Total float64 `json:"total"`
}

type dashboardView struct {
	TotalRevenue float64     `json:"totalRevenue"`
	SalesCount   int         `json:"salesCount"`
	StockCount   int         `json:"stockCount"`
	GraphRevenue []monthView `json:"graphRevenue"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) error {
	storeID := r.PathValue("storeId")
	if _, err := h.deps.Guard.Authorize(r.Context(), h.userID(r), storeID); err != nil {
		return err
	}
	d, err := h.deps.Revenue.Dashboard(r.Context(), storeID)
	if err != nil {
		return err
	}

	view := dashboardView{
		TotalRevenue: d.TotalRevenue.InexactFloat64(),
		SalesCount:   d.SalesCount,
		StockCount:   d.StockCount,
		GraphRevenue: make([]monthView, 0, len(d.Graph)),
	}
	for _, m := range d.Graph {
		view.GraphRevenue = append(view.GraphRevenue, monthView{Name: m.Name, Total: m.Total.InexactFloat64()})
	}
	writeJSON(w, http.StatusOK, view)
	return nil
}
