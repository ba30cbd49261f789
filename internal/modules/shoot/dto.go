package shoot

// Timestamps are RFC 3339; values without an offset are read as UTC.
type CreateShootRequest struct {
	Name      string `json:"name" validate:"required,max=200"`
	Location  string `json:"location" validate:"max=200"`
	StartTime string `json:"start_time" validate:"required"`
	EndTime   string `json:"end_time" validate:"required"`
}

type UpdateShootRequest struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=200"`
	Location  *string `json:"location" validate:"omitempty,max=200"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type DeleteShootResponse struct {
	ShootID             int64 `json:"shoot_id"`
	DeletedReservations int   `json:"deleted_reservations"`
}

// PackingLine is the total quantity of one item reserved for a shoot.
type PackingLine struct {
	ItemID   int64  `json:"item_id"`
	ItemName string `json:"item_name"`
	Category string `json:"category"`
	Quantity int    `json:"quantity"`
}
