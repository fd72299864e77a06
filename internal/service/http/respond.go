package httpsvc

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
)

// IdentityFunc возвращает id пользователя или пустую строку, если запрос анонимный.
type IdentityFunc func(r *http.Request) string

// HeaderUserID выставляет шлюз аутентификации перед сервисом.
const HeaderUserID = "X-User-Id"

// HeaderIdentity читает пользователя из X-User-Id.
func HeaderIdentity(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(HeaderUserID))
}

var (
	errInvalidBody  = domain.Invalid("Invalid request body")
	errBodyTooLarge = &domain.Error{Kind: domain.KindPayloadTooLarge, Message: "Request body is too large"}
)

// StatusFor сопоставляет вид ошибки HTTP-статусу.
func StatusFor(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidRequest, domain.KindSignatureInvalid:
		return http.StatusBadRequest
	case domain.KindUnauthenticated:
		return http.StatusUnauthorized
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindProductsUnavailable, domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logFailure(r, op, err)
	writeText(w, StatusFor(domain.KindOf(err)), domain.MessageOf(err))
}

// logFailure пишет в лог только Internal-ошибки.
func (h *Handler) logFailure(r *http.Request, op string, err error) {
	if domain.KindOf(err) != domain.KindInternal {
		return
	}
	h.logger.WithError(err).WithFields(log.Fields{"op": op, "method": r.Method, "path": r.URL.Path}).Error("request failed")
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCount(w http.ResponseWriter, n int) {
	writeJSON(w, http.StatusOK, map[string]int{"count": n})
}

func decodeJSON(r *http.Request, dst any) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	return decodeBytes(body, dst)
}

// readBody читает тело целиком; тело длиннее maxBodyBytes отклоняется, а не обрезается.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, &domain.Error{Kind: domain.KindInvalidRequest, Message: "Failed to read request body", Err: err}
	}
	if len(body) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	return body, nil
}

func decodeBytes(body []byte, dst any) error {
	if len(body) == 0 {
		return errInvalidBody
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errInvalidBody
	}
	return nil
}
