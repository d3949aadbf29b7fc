package models

// Shipment is the public view of an order's delivery status.
type Shipment struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	EstimatedDelivery string `json:"estimated_delivery"`
	Carrier           string `json:"carrier"`
	ShippingAddress   string `json:"shipping_address"`
}
