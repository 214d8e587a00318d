package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
)

type OrderUsecase struct {
	tx    repo.TransactionManager
	carts *cart.Manager
}

func NewOrderUsecase(tx repo.TransactionManager, carts *cart.Manager) *OrderUsecase {
	return &OrderUsecase{tx: tx, carts: carts}
}

// チェックアウトフォームの入力。住所はアドレス帳ではなくその場で入力。
type PlaceOrderInput struct {
	FullName       string
	Phone          string
	AddressLine1   string
	AddressLine2   string
	City           string
	State          string
	PostalCode     string
	Country        string
	IdempotencyKey string
}

func (in PlaceOrderInput) shippingAddress() model.ShippingAddress {
	return model.ShippingAddress{
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		AddressLine1: strings.TrimSpace(in.AddressLine1),
		AddressLine2: strings.TrimSpace(in.AddressLine2),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		Country:      strings.TrimSpace(in.Country),
	}
}

func (in PlaceOrderInput) validate() error {
	addr := in.shippingAddress()
	if addr.FullName == "" || addr.Phone == "" || addr.AddressLine1 == "" ||
		addr.City == "" || addr.State == "" || addr.PostalCode == "" || addr.Country == "" {
		return NewHTTPError(http.StatusBadRequest, "invalid shipping address")
	}
	key := strings.TrimSpace(in.IdempotencyKey)
	if key == "" || len(key) > 255 {
		return NewHTTPError(http.StatusBadRequest, "invalid idempotency_key")
	}
	return nil
}

type OrderItemOutput struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int64  `json:"quantity"`
}

type OrderOutput struct {
	ID              string                `json:"id"`
	UserID          int64                 `json:"user_id"`
	Status          string                `json:"status"`
	TotalPrice      int64                 `json:"total_price"`
	ShippingAddress model.ShippingAddress `json:"shipping_address"`
	CreatedAt       time.Time             `json:"created_at"`
	Items           []OrderItemOutput     `json:"items"`
}

// PlaceOrder はカートの不変スナップショットを注文に確定する。
// カートのクリアはトランザクション成功後にだけ行う。
// 失敗時はカートに手を付けず、ユーザーがそのままリトライできる。
func (u *OrderUsecase) PlaceOrder(ctx context.Context, userID int64, sessionID string, in PlaceOrderInput) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if sessionID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}
	if err := in.validate(); err != nil {
		return OrderOutput{}, err
	}
	key := strings.TrimSpace(in.IdempotencyKey)

	store := u.carts.Get(ctx, sessionID)
	snapshot := store.State()
	if len(snapshot.Lines) == 0 {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "cart empty")
	}

	var out OrderOutput
	replayed := false

	//注文処理はトランザクション
	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		// 同じキーなら同じ結果
		existing, found, err := r.Orders().FindByIdempotencyKey(ctx, userID, key)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if found {
			items, err := r.OrderItems().ListByOrderID(ctx, existing.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(existing, items)
			replayed = true
			return nil
		}

		//在庫を確定時に再チェックして減らす
		orderItems := make([]model.OrderItem, 0, len(snapshot.Lines))

		for _, line := range snapshot.Lines {
			//商品の現在の状態を確認
			p, err := r.Products().FindByID(ctx, line.Product.ID)
			if err == repo.ErrNotFound {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !p.IsActive {
				return NewHTTPError(http.StatusBadRequest, "invalid")
			}

			//在庫減算（足りないなら false）
			ok, err := r.Inventory().DecreaseStockIfEnough(ctx, line.Product.ID, line.Quantity)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !ok {
				return NewHTTPError(http.StatusBadRequest, "out of stock")
			}

			//名前・価格はカート追加時点のスナップショット
			orderItems = append(orderItems, model.OrderItem{
				ProductID:           line.Product.ID,
				ProductNameSnapshot: line.Product.Name,
				UnitPriceSnapshot:   line.Product.Price,
				Quantity:            line.Quantity,
			})
		}

		// 注文作成
		now := time.Now()
		order := model.Order{
			ID:              uuid.NewString(),
			UserID:          userID,
			Status:          model.OrderStatusPending,
			TotalPrice:      snapshot.TotalPrice,
			ShippingAddress: in.shippingAddress(),
			IdempotencyKey:  key,
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		if err := r.Orders().Create(ctx, order); err != nil {
			if !errors.Is(err, repo.ErrDuplicateKey) {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			//同時に同じキーで入った方が先勝ち。もう一回検索して同じ結果を返す
			ex2, found2, err2 := r.Orders().FindByIdempotencyKey(ctx, userID, key)
			if err2 != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			if !found2 {
				//キー自体は衝突したのに自分の注文としては見つからない＝別ユーザーのキー
				return NewHTTPError(http.StatusConflict, "idempotency conflict")
			}
			items2, err3 := r.OrderItems().ListByOrderID(ctx, ex2.ID)
			if err3 != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			out = toOrderOutput(ex2, items2)
			replayed = true
			return nil
		}

		//注文明細一括作成
		if err := r.OrderItems().CreateBulk(ctx, order.ID, orderItems); err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(order, orderItems)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}

	//ここまで来たら注文は確定している。リプレイ時は前回クリア済みなので触らない。
	if !replayed {
		store.Clear()
	}
	return out, nil
}

func (u *OrderUsecase) ListMyOrders(ctx context.Context, userID int64, page int, limit int) ([]OrderOutput, error) {
	if userID <= 0 {
		return []OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var outs []OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		orders, _, err := r.Orders().ListByUserID(ctx, userID, page, limit)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		outs = make([]OrderOutput, 0, len(orders))
		for _, o := range orders {
			items, err := r.OrderItems().ListByOrderID(ctx, o.ID)
			if err != nil {
				return NewHTTPError(http.StatusInternalServerError, "db error")
			}
			outs = append(outs, toOrderOutput(o, items))
		}
		return nil
	})

	if err != nil {
		return []OrderOutput{}, err
	}
	return outs, nil
}

func (u *OrderUsecase) GetMyOrderDetail(ctx context.Context, userID int64, orderID string) (OrderOutput, error) {
	if userID <= 0 {
		return OrderOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if orderID == "" {
		return OrderOutput{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	var out OrderOutput

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		o, err := r.Orders().FindByID(ctx, orderID)
		if err == repo.ErrNotFound {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if o.UserID != userID {
			//他人の注文は「存在しない扱い」にする
			return NewHTTPError(http.StatusNotFound, "not found")
		}

		items, err := r.OrderItems().ListByOrderID(ctx, orderID)
		if err != nil {
			return NewHTTPError(http.StatusInternalServerError, "db error")
		}

		out = toOrderOutput(o, items)
		return nil
	})

	if err != nil {
		return OrderOutput{}, err
	}
	return out, nil
}

func toOrderOutput(o model.Order, items []model.OrderItem) OrderOutput {
	outItems := make([]OrderItemOutput, 0, len(items))
	for _, it := range items {
		outItems = append(outItems, OrderItemOutput{
			ProductID: it.ProductID,
			Name:      it.ProductNameSnapshot,
			Price:     it.UnitPriceSnapshot,
			Quantity:  it.Quantity,
		})
	}

	return OrderOutput{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          string(o.Status),
		TotalPrice:      o.TotalPrice,
		ShippingAddress: o.ShippingAddress,
		CreatedAt:       o.CreatedAt,
		Items:           outItems,
	}
}
