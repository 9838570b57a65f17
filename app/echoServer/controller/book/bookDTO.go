package book

type CreateBookReq struct {
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author" validate:"required"`
	Publisher *string `json:"publisher,omitempty"`
	Copies    int64   `json:"copies" validate:"required,gte=1"`
}

type UpdateBookReq struct {
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author" validate:"required"`
	Publisher *string `json:"publisher,omitempty"`
	Copies    int64   `json:"copies" validate:"required,gte=1"`
}
