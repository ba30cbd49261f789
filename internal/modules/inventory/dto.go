package inventory

type CreateItemRequest struct {
	Name       string `json:"name" validate:"required,max=200"`
	Category   string `json:"category" validate:"required,oneof=camera light cable other"`
	TotalStock *int   `json:"total_stock" validate:"required,gte=0"`
}

// UpdateItemRequest changes only the fields present in the body.
type UpdateItemRequest struct {
	Name       *string `json:"name" validate:"omitempty,min=1,max=200"`
	Category   *string `json:"category" validate:"omitempty,oneof=camera light cable other"`
	TotalStock *int    `json:"total_stock" validate:"omitempty,gte=0"`
}

type DeleteItemResponse struct {
	ItemID              int64 `json:"item_id"`
	DeletedReservations int64 `json:"deleted_reservations"`
}
