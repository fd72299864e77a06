package httpsvc

import (
	"context"
	"net/http"
	"strconv"

	"github.com/vladislavdragonenkov/storeadmin/internal/domain"
	"github.com/vladislavdragonenkov/storeadmin/internal/service/catalog"
)

// resource описывает CRUD-маршруты сущности магазина. Nil-операция не регистрируется.
type resource[T, In any] struct {
	path   string
	param  string
	op     string
	create func(ctx context.Context, userID, storeID string, in In) (T, error)
	get    func(ctx context.Context, storeID, id string) (T, error)
	list   func(r *http.Request, storeID string) ([]T, error)
	update func(ctx context.Context, userID, storeID, id string, in In) (T, error)
	remove func(ctx context.Context, userID, storeID, id string) (int, error)
}

func byStore[T any](fn func(ctx context.Context, storeID string) ([]T, error)) func(*http.Request, string) ([]T, error) {
	return func(r *http.Request, storeID string) ([]T, error) {
		return fn(r.Context(), storeID)
	}
}

func mountResource[T, In any](h *Handler, mux *http.ServeMux, res resource[T, In]) {
	collection := "/{storeId}/" + res.path
	item := collection + "/{" + res.param + "}"

	if res.create != nil {
		h.handle(mux, "POST "+collection, res.op+"_POST", func(w http.ResponseWriter, r *http.Request) error {
			userID, in, err := decodeMutation[In](h, r)
			if err != nil {
				return err
			}
			v, err := res.create(r.Context(), userID, r.PathValue("storeId"), in)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, v)
			return nil
		})
	}
	if res.list != nil {
		h.handle(mux, "GET "+collection, res.op+"_GET", func(w http.ResponseWriter, r *http.Request) error {
			items, err := res.list(r, r.PathValue("storeId"))
			if err != nil {
				return err
			}
			if items == nil {
				items = []T{}
			}
			writeJSON(w, http.StatusOK, items)
			return nil
		})
	}
	if res.get != nil {
		h.handle(mux, "GET "+item, res.op+"_ITEM_GET", func(w http.ResponseWriter, r *http.Request) error {
			v, err := res.get(r.Context(), r.PathValue("storeId"), r.PathValue(res.param))
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, v)
			return nil
		})
	}
	if res.update != nil {
		h.handle(mux, "PATCH "+item, res.op+"_PATCH", func(w http.ResponseWriter, r *http.Request) error {
			userID, in, err := decodeMutation[In](h, r)
			if err != nil {
				return err
			}
			v, err := res.update(r.Context(), userID, r.PathValue("storeId"), r.PathValue(res.param), in)
			if err != nil {
				return err
			}
			writeJSON(w, http.StatusOK, v)
			return nil
		})
	}
	if res.remove != nil {
		h.handle(mux, "DELETE "+item, res.op+"_DELETE", func(w http.ResponseWriter, r *http.Request) error {
			n, err := res.remove(r.Context(), h.userID(r), r.PathValue("storeId"), r.PathValue(res.param))
			if err != nil {
				return err
			}
			writeCount(w, n)
			return nil
		})
	}
}

// decodeMutation сначала проверяет наличие пользователя, затем разбирает тело.
func decodeMutation[In any](h *Handler, r *http.Request) (string, In, error) {
	var in In
	userID := h.userID(r)
	if userID == "" {
		return "", in, domain.ErrUnauthenticated
	}
	if err := decodeJSON(r, &in); err != nil {
		return "", in, err
	}
	return userID, in, nil
}

func billboardResource(s *catalog.Service) resource[domain.Billboard, catalog.BillboardInput] {
	return resource[domain.Billboard, catalog.BillboardInput]{
		path: "billboards", param: "billboardId", op: "BILLBOARDS",
		create: s.CreateBillboard,
		get:    s.GetBillboard,
		list:   byStore(s.ListBillboards),
		update: s.UpdateBillboard,
		remove: s.DeleteBillboard,
	}
}

func categoryResource(s *catalog.Service) resource[domain.Category, catalog.CategoryInput] {
	return resource[domain.Category, catalog.CategoryInput]{
		path: "categories", param: "categoryId", op: "CATEGORIES",
		create: s.CreateCategory,
		get:    s.GetCategory,
		list:   byStore(s.ListCategories),
		update: s.UpdateCategory,
		remove: s.DeleteCategory,
	}
}

func sizeResource(s *catalog.Service) resource[domain.Size, catalog.SizeInput] {
	return resource[domain.Size, catalog.SizeInput]{
		path: "sizes", param: "sizeId", op: "SIZES",
		create: s.CreateSize,
		get:    s.GetSize,
		list:   byStore(s.ListSizes),
		update: s.UpdateSize,
		remove: s.DeleteSize,
	}
}

func colorResource(s *catalog.Service) resource[domain.Color, catalog.ColorInput] {
	return resource[domain.Color, catalog.ColorInput]{
		path: "colors", param: "colorId", op: "COLORS",
		create: s.CreateColor,
		get:    s.GetColor,
		list:   byStore(s.ListColors),
		update: s.UpdateColor,
		remove: s.DeleteColor,
	}
}

func productResource(s *catalog.Service) resource[domain.Product, catalog.ProductInput] {
	return resource[domain.Product, catalog.ProductInput]{
		path: "products", param: "productId", op: "PRODUCTS",
		create: s.CreateProduct,
		get:    s.GetProduct,
		list: func(r *http.Request, storeID string) ([]domain.Product, error) {
			return s.ListProducts(r.Context(), storeID, productFilter(r))
		},
		update: s.UpdateProduct,
		remove: s.DeleteProduct,
	}
}

func orderResource(s *catalog.Service) resource[domain.Order, catalog.OrderInput] {
	return resource[domain.Order, catalog.OrderInput]{
		path: "orders", param: "orderId", op: "ORDERS",
		get:    s.GetOrder,
		list:   byStore(s.ListOrders),
		update: s.UpdateOrder,
		remove: s.DeleteOrder,
	}
}

func productFilter(r *http.Request) domain.ProductFilter {
	q := r.URL.Query()
	featured, _ := strconv.ParseBool(q.Get("isFeatured"))
	return domain.ProductFilter{
		CategoryID:   q.Get("categoryId"),
		ColorID:      q.Get("colorId"),
		SizeID:       q.Get("sizeId"),
		FeaturedOnly: featured,
	}
}

func (h *Handler) registerStores(mux *http.ServeMux) {
	s := h.deps.Catalog

	h.handle(mux, "POST /stores", "STORES_POST", func(w http.ResponseWriter, r *http.Request) error {
		userID, in, err := decodeMutation[catalog.StoreInput](h, r)
		if err != nil {
			return err
		}
		store, err := s.CreateStore(r.Context(), userID, in)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, store)
		return nil
	})
	h.handle(mux, "GET /stores", "STORES_GET", func(w http.ResponseWriter, r *http.Request) error {
		stores, err := s.ListStores(r.Context(), h.userID(r))
		if err != nil {
			return err
		}
		if stores == nil {
			stores = []domain.Store{}
		}
		writeJSON(w, http.StatusOK, stores)
		return nil
	})
	h.handle(mux, "GET /stores/{storeId}", "STORE_GET", func(w http.ResponseWriter, r *http.Request) error {
		store, err := s.GetStore(r.Context(), r.PathValue("storeId"))
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, store)
		return nil
	})
	h.handle(mux, "PATCH /stores/{storeId}", "STORE_PATCH", func(w http.ResponseWriter, r *http.Request) error {
		userID, in, err := decodeMutation[catalog.StoreInput](h, r)
		if err != nil {
			return err
		}
		n, err := s.RenameStore(r.Context(), userID, r.PathValue("storeId"), in)
		if err != nil {
			return err
		}
		writeCount(w, n)
		return nil
	})
	h.handle(mux, "DELETE /stores/{storeId}", "STORE_DELETE", func(w http.ResponseWriter, r *http.Request) error {
		n, err := s.DeleteStore(r.Context(), h.userID(r), r.PathValue("storeId"))
		if err != nil {
			return err
		}
		writeCount(w, n)
		return nil
	})
}

func (h *Handler) orderTimeline(w http.ResponseWriter, r *http.Request) error {
	events, err := h.deps.Catalog.OrderTimeline(r.Context(), r.PathValue("storeId"), r.PathValue("orderId"))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, events)
	return nil
}
