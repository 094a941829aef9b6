package request

type CreatePackageRequest struct {
	Title        string  `json:"title" validate:"required,min=3,max=200"`
	Description  *string `json:"description,omitempty"`
	Destination  string  `json:"destination" validate:"required,min=2,max=100"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Price        string  `json:"price" validate:"required"`
	DurationDays int     `json:"duration_days" validate:"required,min=1,max=90"`
	Available    bool    `json:"available"`
}

type UpdatePackageRequest struct {
	Title        *string `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Description  *string `json:"description,omitempty"`
	Destination  *string `json:"destination,omitempty" validate:"omitempty,min=2,max=100"`
	ImageURL     *string `json:"image_url,omitempty" validate:"omitempty,url"`
	Price        *string `json:"price,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty" validate:"omitempty,min=1,max=90"`
	Available    *bool   `json:"available,omitempty"`
}
