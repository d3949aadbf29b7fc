package service

import (
	"errors"
	"strings"

	"sagesilk/internal/models"
)

var ErrShipmentNotFound = errors.New("shipment not found")

// TrackingService answers order tracking lookups from a fixed table.
type TrackingService struct {
	shipments map[string]models.Shipment
}

func NewTrackingService() *TrackingService {
	return &TrackingService{shipments: map[string]models.Shipment{
		"12345": {
			ID:                "12345",
			Status:            "Shipped",
			EstimatedDelivery: "2024-11-25",
			Carrier:           "FedEx",
			ShippingAddress:   "123 Silk Rd, Fashion City, FL",
		},
	}}
}

func (s *TrackingService) Track(trackingID string) (models.Shipment, error) {
	sh, ok := s.shipments[strings.TrimSpace(trackingID)]
	if !ok {
		return models.Shipment{}, ErrShipmentNotFound
	}
	return sh, nil
}
