package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/bcrypt"

	"boiadda-backend/internal/platform/db"
)

type roleRow struct {
	name        string
	description string
}

type memberRow struct {
	name     string
	email    string
	phone    string
	password string
	roleID   int64
}

type bookRow struct {
	title       string
	author      string
	isbn        string
	coverImg    string
	description string
	category    string
	donorID     int64
}

type copyRow struct {
	bookID   int64
	status   string
	holderID int64 // 0 means none
}

var demoRoles = []roleRow{
	{"admin", "Administrator"},
	{"user", "Moderator"},
	{"user", "Regular User"},
}

var demoMembers = []memberRow{
	{"আদিয়াত হোসেন (অ্যাডমিন)", "adiyat_admin@example.com", "01711110001", "adminpass1", 1},
	{"সাবিনা ইয়াসমিন (মডারেটর)", "sabina_mod@example.com", "01733330003", "modpass1", 2},
	{"রহিম উদ্দিন", "rahim@example.com", "01722220002", "userpass1", 3},
	{"তানভীর আহমেদ", "tanvir@example.com", "01744440004", "userpass2", 3},
	{"মাহিরা ইসলাম", "mahera@example.com", "01755550005", "userpass3", 3},
	{"রুশদী হাসান", "rushdi@example.com", "01766660006", "userpass4", 3},
	{"লতিফা নাসরিন", "latifa@example.com", "01777770007", "userpass5", 3},
}

var demoBooks = []bookRow{
	{"আজব দুনিয়া", "মুহম্মদ জাফর ইকবাল", "9789848000001", "book1.png", "বিজ্ঞান ও কল্পনার এক অসাধারণ মিশেল।", "বিজ্ঞান কল্পকাহিনি", 1},
	{"হিমু", "হুমায়ূন আহমেদ", "9789848000002", "book2.png", "হিমু চরিত্রের কল্পনাজাত মজার কাহিনী।", "উপন্যাস", 3},
	{"পাখি ও মানুষ", "সেলিনা হোসেন", "9789848000003", "book3.png", "পাখি আর মানুষের সম্পর্ক নিয়ে সাহিত্য।", "সাহিত্য", 3},
	{"চাঁদের আলো", "আনিসুজ্জামান", "9789848000004", "book4.png", "রোমান্টিক ও রহস্যময় এক উপন্যাস।", "উপন্যাস", 3},
	{"বাংলার ইতিহাস", "ইমদাদুল হক মিলন", "9789848000005", "book5.png", "বাংলাদেশের ঐতিহাসিক তথ্যাবলী।", "ইতিহাস", 3},
	{"কবিতা সংগ্রহ", "জাহিদা হোসেন", "9789848000006", "book6.png", "নান্দনিক কাব্য রচনা।", "কাব্য", 7},
}

var demoCopies = []copyRow{
	{1, "available", 0},
	{1, "available", 0},
	{1, "borrowed", 3},
	{2, "available", 0},
	{2, "borrowed", 4},
	{2, "lost", 0},
	{3, "available", 0},
	{4, "available", 0},
	{4, "available", 0},
	{5, "borrowed", 5},
	{5, "available", 0},
	{5, "lost", 0},
	{6, "available", 0},
}

// Run inserts the demo dataset. It is idempotent: when any role row already
// exists the whole seeding step is skipped.
func Run(ctx context.Context, conn *sql.DB) error {
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM roles`).Scan(&n); err != nil {
		return fmt.Errorf("seed: counting roles: %w", err)
	}
	if n > 0 {
		log.Println("seed: roles already present, skipping demo data")
		return nil
	}

	now := time.Now().UTC()
	return db.RunInTx(ctx, conn, nil, func(ctx context.Context, tx db.DBTX) error {
		for _, r := range demoRoles {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO roles (role_name, description) VALUES (?, ?)`,
				r.name, r.description); err != nil {
				return fmt.Errorf("seed: inserting role %s: %w", r.description, err)
			}
		}
		for _, m := range demoMembers {
			hash, err := bcrypt.GenerateFromPassword([]byte(m.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("seed: hashing password for %s: %w", m.email, err)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO members (name, email, phone, password_hash, role_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
				m.name, m.email, m.phone, string(hash), m.roleID, now); err != nil {
				return fmt.Errorf("seed: inserting member %s: %w", m.email, err)
			}
		}
		for _, b := range demoBooks {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO books (title, author, isbn, category, description, cover_img, donor_id) VALUES (?, ?, ?, ?, ?, ?, ?)`,
				b.title, b.author, b.isbn, b.category, b.description, b.coverImg, b.donorID); err != nil {
				return fmt.Errorf("seed: inserting book %s: %w", b.isbn, err)
			}
		}
		for i, c := range demoCopies {
			var holder any
			if c.holderID != 0 {
				holder = c.holderID
			}
			res, err := tx.ExecContext(ctx,
				`INSERT INTO book_copies (book_id, status, holder_id) VALUES (?, ?, ?)`,
				c.bookID, c.status, holder)
			if err != nil {
				return fmt.Errorf("seed: inserting copy %d: %w", i+1, err)
			}
			// 貸出中のコピーには対応する貸出トランザクションも作る
			if c.holderID != 0 {
				copyID, err := res.LastInsertId()
				if err != nil {
					return err
				}
				created := now.Add(-72 * time.Hour)
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO borrow_transactions
					 (txn_ulid, copy_id, member_id, admin_id, status, due_date, created_at, updated_at)
					 VALUES (?, ?, ?, 1, 'success', ?, ?, ?)`,
					ulid.Make().String(), copyID, c.holderID,
					created.Add(14*24*time.Hour), created, created); err != nil {
					return fmt.Errorf("seed: inserting borrow txn for copy %d: %w", copyID, err)
				}
			}
		}
		log.Println("seed: demo data inserted")
		return nil
	})
}
