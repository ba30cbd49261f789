package reservation

type CreateReservationRequest struct {
	ItemID      int64  `json:"item_id" validate:"required,gte=1"`
	ShootID     int64  `json:"shoot_id" validate:"required,gte=1"`
	Quantity    int    `json:"quantity" validate:"gte=1"`
	Description string `json:"description" validate:"max=2000"`
}

type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" validate:"required,gte=1"`
}

// UpdateReservationRequest rebinds a reservation. Omitted fields keep their current value.
type UpdateReservationRequest struct {
	ItemID      *int64  `json:"item_id" validate:"omitempty,gte=1"`
	ShootID     *int64  `json:"shoot_id" validate:"omitempty,gte=1"`
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=1"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
}
