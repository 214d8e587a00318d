package usecase

import (
	"context"
	"net/http"

	"app/internal/cart"
	"app/internal/domain/model"
	repo "app/internal/repository"
)

// CartUsecase は /cart の業務ロジック。
// カート本体はinternal/cartのStoreが持ち、ここでは商品チェックと
// DB行→Storeのスナップショット型への変換だけを行う。
type CartUsecase struct {
	carts       *cart.Manager
	productRepo repo.ProductRepository
}

func NewCartUsecase(carts *cart.Manager, productRepo repo.ProductRepository) *CartUsecase {
	return &CartUsecase{
		carts:       carts,
		productRepo: productRepo,
	}
}

type CartItemResponse struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	ImageURL  string `json:"image_url"`
	Quantity  int64  `json:"quantity"`
	Subtotal  int64  `json:"subtotal"`
}

type CartResponse struct {
	Items      []CartItemResponse `json:"items"`
	TotalItems int64              `json:"total_items"`
	Total      int64              `json:"total"`
}

type AddCartInput struct {
	ProductID string
	Quantity  int64
}

// GetCart はカート取得（無ければ空で返す）。
func (u *CartUsecase) GetCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}

	st := u.carts.Get(ctx, sessionID).State()
	return toCartResponse(st), nil
}

// AddToCart はカートに追加（同一商品は数量加算）。
// 商品はここでスナップショット化され、あとで価格が変わっても
// カート内は追加時点の価格のまま。
func (u *CartUsecase) AddToCart(ctx context.Context, sessionID string, in AddCartInput) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}
	if in.ProductID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Quantity < 1 {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid quantity")
	}

	// 商品チェック（公開のみ）
	p, err := u.productRepo.FindByID(ctx, in.ProductID)
	if err == repo.ErrNotFound {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}
	if err != nil {
		return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !p.IsActive {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid")
	}

	store := u.carts.Get(ctx, sessionID)

	// 既存数量＋追加分が在庫を超えないか
	var existingQty int64 = 0
	for _, l := range store.State().Lines {
		if l.Product.ID == in.ProductID {
			existingQty = l.Quantity
			break
		}
	}
	if existingQty+in.Quantity > p.Stock {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
	}

	st := store.AddItem(toCartProduct(p), in.Quantity)
	return toCartResponse(st), nil
}

// 数量変更（絶対値）。0以下は行削除。
func (u *CartUsecase) UpdateItem(ctx context.Context, sessionID string, productID string, qty int64) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}
	if productID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}

	store := u.carts.Get(ctx, sessionID)

	if qty > 0 {
		// 在庫チェック（商品が消えていたら行削除にフォールバック）
		p, err := u.productRepo.FindByID(ctx, productID)
		if err != nil && err != repo.ErrNotFound {
			return CartResponse{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if err == repo.ErrNotFound || !p.IsActive {
			st := store.RemoveItem(productID)
			return toCartResponse(st), nil
		}
		if qty > p.Stock {
			return CartResponse{}, NewHTTPError(http.StatusBadRequest, "stock exceeded")
		}
	}

	st := store.UpdateQuantity(productID, qty)
	return toCartResponse(st), nil
}

// 明細削除。存在しないIDでもエラーにしない（冪等）。
func (u *CartUsecase) RemoveItem(ctx context.Context, sessionID string, productID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}

	st := u.carts.Get(ctx, sessionID).RemoveItem(productID)
	return toCartResponse(st), nil
}

// 全削除。
func (u *CartUsecase) ClearCart(ctx context.Context, sessionID string) (CartResponse, error) {
	if sessionID == "" {
		return CartResponse{}, NewHTTPError(http.StatusBadRequest, "no cart session")
	}

	st := u.carts.Get(ctx, sessionID).Clear()
	return toCartResponse(st), nil
}

// DB行をStoreのスナップショット型に変換する境界。
func toCartProduct(p model.Product) cart.Product {
	return cart.Product{
		ID:       p.ID,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
		Category: p.Category,
		Stock:    p.Stock,
	}
}

func toCartResponse(st cart.State) CartResponse {
	items := make([]CartItemResponse, 0, len(st.Lines))
	for _, l := range st.Lines {
		items = append(items, CartItemResponse{
			ProductID: l.Product.ID,
			Name:      l.Product.Name,
			Price:     l.Product.Price,
			ImageURL:  l.Product.ImageURL,
			Quantity:  l.Quantity,
			Subtotal:  l.Product.Price * l.Quantity,
		})
	}
	return CartResponse{
		Items:      items,
		TotalItems: st.TotalItems,
		Total:      st.TotalPrice,
	}
}
