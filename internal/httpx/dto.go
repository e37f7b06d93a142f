package httpx

import (
	"encoding/json"

	"github.com/livekart/orderflow/internal/core/domain"
)

// CreateOrderRequest is the canonical placement input. Field-name aliases
// from older clients are absorbed by the item DTO's decoder and nowhere
// else; the core only ever sees the canonical shape. There is deliberately
// no total field: any client-supplied total is discarded at this boundary.
type CreateOrderRequest struct {
	IdempotencyKey  string               `json:"idempotency_key"`
	Items           []CreateOrderItemDTO `json:"items"`
	ShippingAddress AddressDTO           `json:"shippingAddress"`
	PaymentMethod   string               `json:"paymentMethod"`
}

type CreateOrderItemDTO struct {
	ProductID string
	Quantity  int
}

// UnmarshalJSON accepts the field-name aliases the LiveKart clients have
// historically sent: product_id/productId/id and quantity/qty.
func (d *CreateOrderItemDTO) UnmarshalJSON(data []byte) error {
	var raw struct {
		ProductID      string `json:"product_id"`
		ProductIDCamel string `json:"productId"`
		ID             string `json:"id"`
		Quantity       *int   `json:"quantity"`
		Qty            *int   `json:"qty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ProductID != "":
		d.ProductID = raw.ProductID
	case raw.ProductIDCamel != "":
		d.ProductID = raw.ProductIDCamel
	default:
		d.ProductID = raw.ID
	}

	switch {
	case raw.Quantity != nil:
		d.Quantity = *raw.Quantity
	case raw.Qty != nil:
		d.Quantity = *raw.Qty
	}
	return nil
}

type AddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type PlaceOrderResponse struct {
	Success bool          `json:"success"`
	Order   OrderResponse `json:"order"`
}

type OrderResponse struct {
	OrderID     string              `json:"order_id"`
	UserID      string              `json:"user_id"`
	UserEmail   string              `json:"user_email,omitempty"`
	Items       []OrderItemResponse `json:"items"`
	TotalAmount string              `json:"total_amount"`
	Status      string              `json:"status"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID    string `json:"product_id"`
	Title        string `json:"title"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	LineSubtotal string `json:"line_subtotal"`
	VendorID     string `json:"vendor_id"`
}

type OrderListResponse struct {
	Success bool            `json:"success"`
	Orders  []OrderResponse `json:"orders"`
}

type ProductResponse struct {
	ProductID string `json:"product_id"`
	Title     string `json:"title"`
	Price     string `json:"price"`
	Stock     *int   `json:"stock,omitempty"`
	VendorID  string `json:"vendor_id"`
}

type ProductDetailResponse struct {
	Success bool            `json:"success"`
	Product ProductResponse `json:"product"`
}

type ProductListResponse struct {
	Success  bool              `json:"success"`
	Products []ProductResponse `json:"products"`
}

type ErrorResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

func mapOrderToResponse(o *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:    it.ProductID,
			Title:        it.Title,
			UnitPrice:    it.UnitPrice.StringFixed(2),
			Quantity:     it.Quantity,
			LineSubtotal: it.LineSubtotal.StringFixed(2),
			VendorID:     it.VendorID,
		}
	}
	return OrderResponse{
		OrderID:     o.ID,
		UserID:      o.UserID,
		UserEmail:   o.UserEmail,
		Items:       items,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt.Format(timeLayout),
		UpdatedAt:   o.UpdatedAt.Format(timeLayout),
	}
}

func mapProductToResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ProductID: p.ID,
		Title:     p.Title,
		Price:     p.Price.StringFixed(2),
		Stock:     p.Stock,
		VendorID:  p.VendorID,
	}
}
