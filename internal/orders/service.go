package orders

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avalenz-dev/storefront-backend/pkg/db/models"
	"github.com/avalenz-dev/storefront-backend/pkg/enums"
	pkgerrors "github.com/avalenz-dev/storefront-backend/pkg/errors"
)

// Service defines the behavior needed by the orders controller.
type Service interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error)
	ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error)
}

type productCatalog interface {
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	orders   Repository
	products productCatalog
	tx       txRunner
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	OrderRepo   Repository
	ProductRepo productCatalog
	TxRunner    txRunner
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("orders repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("products repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		orders:   params.OrderRepo,
		products: params.ProductRepo,
		tx:       params.TxRunner,
	}, nil
}

// CreateOrder snapshots catalog prices into line items and persists the order
// plus all of its items in a single transaction.
func (s *service) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	shippingAddress := strings.TrimSpace(req.ShippingAddress)
	if shippingAddress == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	method, err := enums.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(req.PaymentMethod)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method must be stripe or paypal")
	}
	for _, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required on every item")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}

	catalog, err := s.resolveProducts(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Status:          enums.OrderStatusPending,
		PaymentStatus:   enums.PaymentStatusPending,
		ShippingAddress: shippingAddress,
		PaymentMethod:   method,
	}

	// One snapshot per input line, priced once at creation time.
	total := decimal.Zero
	items := make([]models.OrderItem, 0, len(req.Items))
	for _, input := range req.Items {
		product := catalog[input.ProductID]
		lineTotal := product.Price.Mul(decimal.NewFromInt(int64(input.Quantity)))
		total = total.Add(lineTotal)
		items = append(items, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Quantity:  input.Quantity,
			UnitPrice: product.Price,
		})
	}
	order.TotalAmount = total

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.orders.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		return repo.CreateOrderItems(ctx, items)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist order")
	}

	order.Items = items
	return FromModel(order), nil
}

func (s *service) ListOrders(ctx context.Context, userID uuid.UUID) ([]OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(orders), nil
}

// resolveProducts loads every referenced product and rejects the request as a
// validation error naming the first unknown id in input order.
func (s *service) resolveProducts(ctx context.Context, items []OrderItemInput) (map[uuid.UUID]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	seen := map[uuid.UUID]struct{}{}
	for _, item := range items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	found, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load products")
	}

	catalog := make(map[uuid.UUID]models.Product, len(found))
	for _, product := range found {
		catalog[product.ID] = product
	}

	for _, item := range items {
		if _, ok := catalog[item.ProductID]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s not found", item.ProductID))
		}
	}
	return catalog, nil
}
