package models

// Prize defines one prize tier of a giveaway. The name identifies the tier, so it
// must be unique within a giveaway.
type Prize struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description"`
	Value       float64 `bson:"value" json:"value"`
	Quantity    int     `bson:"quantity" json:"quantity"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

// PrizeSnapshot is the copy of a prize stored on a winner record at allocation time.
type PrizeSnapshot struct {
	Name        string  `bson:"name" json:"name"`
	Description string  `bson:"description" json:"description"`
	Value       float64 `bson:"value" json:"value"`
	Image       string  `bson:"image,omitempty" json:"image,omitempty"`
}

// Snapshot copies the prize into a winner-side snapshot.
func (p Prize) Snapshot() PrizeSnapshot {
	return PrizeSnapshot{
		Name:        p.Name,
		Description: p.Description,
		Value:       p.Value,
		Image:       p.Image,
	}
}

// PrizeCapacity reports how many slots of a prize tier are still free.
type PrizeCapacity struct {
	Index     int    `json:"index"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Allocated int    `json:"allocated"`
	Remaining int    `json:"remaining"`
}
