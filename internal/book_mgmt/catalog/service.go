package catalog

import (
	"context"
	"database/sql"
)

type Service struct {
	db    *sql.DB
	store *Store
}

func NewService(conn *sql.DB) *Service {
	return &Service{db: conn, store: NewStore()}
}

// ListBooks returns every catalog entry with its live available-copy count.
// When memberID is given, CanBorrow is false for books the member already
// holds or has a pending request for.
func (s *Service) ListBooks(ctx context.Context, memberID *int64) ([]BookInfo, error) {
	books, err := s.store.ListBooks(ctx, s.db)
	if err != nil {
		return nil, err
	}

	out := make([]BookInfo, 0, len(books))
	for _, b := range books {
		avail, err := s.store.CountAvailable(ctx, s.db, b.BookID)
		if err != nil {
			return nil, err
		}

		canBorrow := true
		if memberID != nil {
			busy, err := s.store.HasOpenOrPendingBorrow(ctx, s.db, *memberID, b.BookID)
			if err != nil {
				return nil, err
			}
			canBorrow = !busy
		}

		out = append(out, buildBookInfo(&b, avail, canBorrow))
	}
	return out, nil
}

// GetBook returns a single catalog entry with its live available-copy count.
func (s *Service) GetBook(ctx context.Context, bookID int64) (*BookInfo, error) {
	b, err := s.store.GetBook(ctx, s.db, bookID)
	if err != nil {
		return nil, err
	}
	avail, err := s.store.CountAvailable(ctx, s.db, b.BookID)
	if err != nil {
		return nil, err
	}
	info := buildBookInfo(b, avail, true)
	return &info, nil
}

func buildBookInfo(b *Book, avail int, canBorrow bool) BookInfo {
	info := BookInfo{
		BookID:          b.BookID,
		Title:           b.Title,
		Author:          b.Author,
		Category:        b.Category,
		ISBN:            b.ISBN,
		AvailableCopies: avail,
		CanBorrow:       canBorrow,
	}
	if b.Description.Valid {
		v := b.Description.String
		info.Description = &v
	}
	if b.CoverImg.Valid {
		v := b.CoverImg.String
		info.CoverImg = &v
	}
	return info
}
