package members

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

func (s *Service) ListMembers(ctx context.Context) ([]MemberInfo, error) {
	ms, err := s.store.ListMembers(ctx, s.db)
	if err != nil {
		return nil, err
	}
	out := make([]MemberInfo, 0, len(ms))
	for i := range ms {
		out = append(out, ms[i].Info())
	}
	return out, nil
}

func (s *Service) GetMember(ctx context.Context, memberID int64) (*MemberInfo, error) {
	m, err := s.store.GetMember(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	info := m.Info()
	return &info, nil
}
