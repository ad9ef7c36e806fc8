package handlers

import "github.com/Skotchmaster/ar_furniture/internal/models"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type loginResponse struct {
	Token string            `json:"token"`
	Role  string            `json:"role"`
	Cart  []models.CartItem `json:"cart"`
}

type orderLineRequest struct {
	Product  string  `json:"product"`
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

// orderRequest.TotalAmount is accepted for compatibility; the stored total
// is recomputed from the lines.
type orderRequest struct {
	Items       []orderLineRequest `json:"items"`
	TotalAmount float64            `json:"totalAmount"`
}

type searchResponse struct {
	Total    int64            `json:"total"`
	Products []models.Product `json:"products"`
}
