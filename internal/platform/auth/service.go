package auth

import (
	"context"
	"database/sql"
	"time"

	"golang.org/x/crypto/bcrypt"

	"boiadda-backend/internal/members"
	"boiadda-backend/internal/platform/apperr"
	"boiadda-backend/internal/platform/db"
)

type Service struct {
	db      *sql.DB
	store   *Store
	members *members.Store
	secret  []byte
	ttl     time.Duration
}

func NewService(conn *sql.DB, secret []byte, ttl time.Duration) *Service {
	return &Service{
		db:      conn,
		store:   NewStore(),
		members: members.NewStore(),
		secret:  secret,
		ttl:     ttl,
	}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.ErrInternal("failed to hash password")
	}

	var resp *TokenResponse
	err = db.RunInTx(ctx, s.db, nil, func(ctx context.Context, tx db.DBTX) error {
		taken, err := s.store.EmailExists(ctx, tx, req.Email)
		if err != nil {
			return err
		}
		if taken {
			return apperr.ErrInvalid("email already registered")
		}
		if req.Phone != nil && *req.Phone != "" {
			taken, err = s.store.PhoneExists(ctx, tx, *req.Phone)
			if err != nil {
				return err
			}
			if taken {
				return apperr.ErrInvalid("phone number already registered")
			}
		}
		roleID, err := s.store.UserRoleID(ctx, tx)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		id, err := s.store.InsertMember(ctx, tx, req.Name, req.Email, req.Phone, string(hash), roleID, now)
		if err != nil {
			return err
		}
		m, err := s.members.GetMember(ctx, tx, id)
		if err != nil {
			return err
		}
		resp, err = s.issueToken(m, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	m, err := s.members.GetMemberByEmail(ctx, s.db, req.Email)
	if err != nil {
		if apperr.CodeOf(err) == apperr.CodeNotFound {
			return nil, apperr.ErrUnauthorized("incorrect email or password")
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(req.Password)) != nil {
		return nil, apperr.ErrUnauthorized("incorrect email or password")
	}
	return s.issueToken(m, time.Now().UTC())
}

func (s *Service) Me(ctx context.Context, memberID int64) (*members.MemberInfo, error) {
	m, err := s.members.GetMember(ctx, s.db, memberID)
	if err != nil {
		return nil, err
	}
	info := m.Info()
	return &info, nil
}

func (s *Service) issueToken(m *members.Member, now time.Time) (*TokenResponse, error) {
	token, err := NewToken(s.secret, m.MemberID, string(m.RoleName), s.ttl, now)
	if err != nil {
		return nil, apperr.ErrInternal("failed to sign token")
	}
	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.ttl.Seconds()),
		User:        m.Info(),
	}, nil
}
