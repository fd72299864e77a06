package catalog

import (
	"context"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/lifecycle"
)

// OrderInput описывает правку заказа администратором.
type OrderInput struct {
	Phone   string    `json:"phone" validate:"required" label:"Phone"`
	Address string    `json:"address" validate:"required" label:"Address"`
	IsPaid  *PaidFlag `json:"isPaid" validate:"required" label:"Is Paid"`
}

// ListOrders возвращает заказы магазина с позициями, новые первыми.
func (s *Service) ListOrders(ctx context.Context, storeID string) ([]domain.Order, error) {
	if err := requireID(storeID, "Store id"); err != nil {
		return nil, err
	}
	orders, err := s.repos.Orders.ListByStore(ctx, storeID)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return orders, nil
}

// GetOrder возвращает заказ магазина; заказ другого магазина считается отсутствующим.
func (s *Service) GetOrder(ctx context.Context, storeID, id string) (domain.Order, error) {
	if err := requireID(id, "Order ID"); err != nil {
		return domain.Order{}, err
	}
	order, err := s.repos.Orders.Get(ctx, id)
	if err != nil {
		return domain.Order{}, repoErr(err)
	}
	if order.StoreID != storeID {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// UpdateOrder меняет телефон, адрес и статус оплаты существующего заказа.
func (s *Service) UpdateOrder(ctx context.Context, userID, storeID, id string, in OrderInput) (domain.Order, error) {
	if err := s.authorize(ctx, userID, storeID, in); err != nil {
		return domain.Order{}, err
	}
	order, err := s.GetOrder(ctx, storeID, id)
	if err != nil {
		return domain.Order{}, err
	}

	order.Phone = in.Phone
	order.Address = in.Address
	order.IsPaid = bool(*in.IsPaid)
	order.UpdatedAt = s.now()
	if err := s.repos.Orders.Update(ctx, order); err != nil {
		return domain.Order{}, repoErr(err)
	}

	s.events.Record(ctx, lifecycle.Event{
		OrderID:  order.ID,
		Timeline: domain.TimelineOrderUpdated,
		Reason:   "updated by " + userID,
	})
	return order, nil
}

// DeleteOrder удаляет заказ вместе с позициями.
func (s *Service) DeleteOrder(ctx context.Context, userID, storeID, id string) (int, error) {
	return s.deleteScoped(ctx, userID, storeID, id, "Order ID", s.repos.Orders.Delete)
}

// OrderTimeline возвращает историю событий заказа.
func (s *Service) OrderTimeline(ctx context.Context, storeID, id string) ([]domain.TimelineEvent, error) {
	if _, err := s.GetOrder(ctx, storeID, id); err != nil {
		return nil, err
	}
	if s.repos.Timeline == nil {
		return []domain.TimelineEvent{}, nil
	}
	events, err := s.repos.Timeline.List(ctx, id)
	if err != nil {
		return nil, domain.Internal(err)
	}
	return events, nil
}
