package borrow

type CreateBorrowReq struct {
	UserID string `json:"userId" validate:"required"`
	BookID string `json:"bookId" validate:"required"`
}

type UpdateDueDateReq struct {
	// Accepts RFC3339 or a bare YYYY-MM-DD date from the dashboard form.
	DueDate string `json:"dueDate" validate:"required"`
}
