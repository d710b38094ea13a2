package catalog

// ===== Responses =====

type BookInfo struct {
	BookID          int64   `json:"id"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Category        string  `json:"category"`
	ISBN            string  `json:"isbn"`
	Description     *string `json:"description,omitempty"`
	CoverImg        *string `json:"cover_img,omitempty"`
	AvailableCopies int     `json:"available_copies"`
	// false if the requesting member already holds a copy of this book or
	// has a pending borrow request for it
	CanBorrow bool `json:"can_borrow"`
}
