package dto

type CreatePropertyRequest struct {
	StandNumber string `json:"stand_number" validate:"required,min=1,max=40"`
	Address     string `json:"address"      validate:"required,min=3"`
	Suburb      string `json:"suburb"       validate:"omitempty,max=80"`
	City        string `json:"city"         validate:"required,min=2,max=80"`
}

type PropertyResponse struct {
	ID          string `json:"id"`
	StandNumber string `json:"stand_number"`
	Address     string `json:"address"`
	Suburb      string `json:"suburb,omitempty"`
	City        string `json:"city"`
	Active      bool   `json:"active"`
}

type PropertyListResponse struct {
	Data  []PropertyResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
