package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"USER_REGISTRATION_BACK-END/internal/models"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is the pgx-backed Store.
type Postgres struct {
	pool *pgxpool.Pool
	db   querier
	inTx bool
}

// NewPostgres creates a Postgres store on top of pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool, db: pool}
}

// Migrate creates the tables the store needs if they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Postgres) WithTx(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(&Postgres{pool: s.pool, db: tx, inTx: true}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *Postgres) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// ---------- users ----------

const userColumns = `u.id, u.username, u.email, u.password_hash, u.first_name, u.last_name,
	u.is_active, u.date_joined, u.last_login, u.user_details_id`

func scanUser(row pgx.Row, u *models.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.DateJoined, &u.LastLogin, &u.ProfileID)
}

func (s *Postgres) CreateUser(ctx context.Context, u *models.User) error {
	const q = `
insert into users (username, email, password_hash, first_name, last_name, is_active, date_joined, last_login, user_details_id)
values ($1, $2, $3, $4, $5, $6, $7, $8, $9)
returning id`
	if u.DateJoined.IsZero() {
		u.DateJoined = time.Now().UTC()
	}
	err := s.db.QueryRow(ctx, q,
		u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.DateJoined, u.LastLogin, u.ProfileID,
	).Scan(&u.ID)
	if err != nil {
		return mapError(err, "create user")
	}
	return nil
}

func (s *Postgres) UpdateUser(ctx context.Context, u *models.User) error {
	const q = `
update users set
	username = $1, email = $2, first_name = $3, last_name = $4,
	is_active = $5, user_details_id = $6
where id = $7`
	return s.execOne(ctx, "update user", q,
		u.Username, u.Email, u.FirstName, u.LastName, u.IsActive, u.ProfileID, u.ID)
}

func (s *Postgres) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return s.execOne(ctx, "update password", `update users set password_hash = $1 where id = $2`, hash, id)
}

func (s *Postgres) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return s.execOne(ctx, "update last login", `update users set last_login = $1 where id = $2`, at, id)
}

// execOne runs a statement expected to touch exactly one row.
func (s *Postgres) execOne(ctx context.Context, op, q string, args ...any) error {
	ct, err := s.db.Exec(ctx, q, args...)
	if err != nil {
		return mapError(err, op)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Postgres) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getUser(ctx, `select `+userColumns+` from users u where u.id = $1`, id)
}

func (s *Postgres) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `select `+userColumns+` from users u where lower(u.username) = lower($1)`, username)
}

func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `select `+userColumns+` from users u where lower(u.email) = lower($1) order by u.id limit 1`, email)
}

func (s *Postgres) getUser(ctx context.Context, q string, arg any) (*models.User, error) {
	var u models.User
	if err := scanUser(s.db.QueryRow(ctx, q, arg), &u); err != nil {
		return nil, mapError(err, "get user")
	}
	return &u, nil
}

func (s *Postgres) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx, `select exists(select 1 from users where lower(username) = lower($1))`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("username exists: %w", err)
	}
	return exists, nil
}

func (s *Postgres) EmailExists(ctx context.Context, email string) (bool, error) {
	const q = `
select exists(select 1 from users where lower(email) = lower($1))
    or exists(select 1 from email_addresses where lower(email) = lower($1))`
	var exists bool
	if err := s.db.QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("email exists: %w", err)
	}
	return exists, nil
}

const userWithProfileSelect = `
select ` + userColumns + `,
	d.id, d.date_of_birth, d.mobile_no, d.extra_phone
from users u
left join user_details d on d.id = u.user_details_id`

func scanUserWithProfile(row pgx.Row) (models.UserWithProfile, error) {
	var (
		out         models.UserWithProfile
		profileID   *int64
		dateOfBirth *time.Time
		mobileNo    *int32
		extraPhone  []byte
	)
	u := &out.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.IsActive, &u.DateJoined, &u.LastLogin, &u.ProfileID,
		&profileID, &dateOfBirth, &mobileNo, &extraPhone)
	if err != nil {
		return out, err
	}
	if profileID != nil {
		out.Profile = &models.Profile{ID: *profileID, ExtraPhone: extraPhone}
		if dateOfBirth != nil {
			out.Profile.DateOfBirth = *dateOfBirth
		}
		if mobileNo != nil {
			out.Profile.MobileNo = *mobileNo
		}
	}
	return out, nil
}

func (s *Postgres) GetUserWithProfile(ctx context.Context, id int64) (*models.UserWithProfile, error) {
	out, err := scanUserWithProfile(s.db.QueryRow(ctx, userWithProfileSelect+` where u.id = $1`, id))
	if err != nil {
		return nil, mapError(err, "get user with details")
	}
	return &out, nil
}

func (s *Postgres) ListUsers(ctx context.Context, order Ordering) ([]models.UserWithProfile, error) {
	column, ok := orderColumns[order.Field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, order.Field)
	}
	dir := "asc"
	if order.Desc {
		dir = "desc"
	}
	q := fmt.Sprintf("%s order by %s %s, u.id %s", userWithProfileSelect, column, dir, dir)

	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.UserWithProfile{}
	for rows.Next() {
		u, err := scanUserWithProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// ---------- user details ----------

// jsonArg turns an empty or literal-null document into SQL NULL.
func jsonArg(raw json.RawMessage) any {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	return string(raw)
}

func (s *Postgres) CreateProfile(ctx context.Context, p *models.Profile) error {
	const q = `
insert into user_details (date_of_birth, mobile_no, extra_phone)
values ($1, $2, $3::jsonb)
returning id`
	err := s.db.QueryRow(ctx, q, p.DateOfBirth, p.MobileNo, jsonArg(p.ExtraPhone)).Scan(&p.ID)
	if err != nil {
		return mapError(err, "create user details")
	}
	return nil
}

func (s *Postgres) UpdateProfile(ctx context.Context, p *models.Profile) error {
	const q = `
update user_details set date_of_birth = $1, mobile_no = $2, extra_phone = $3::jsonb
where id = $4`
	return s.execOne(ctx, "update user details", q, p.DateOfBirth, p.MobileNo, jsonArg(p.ExtraPhone), p.ID)
}

func (s *Postgres) GetProfile(ctx context.Context, id int64) (*models.Profile, error) {
	var p models.Profile
	err := s.db.QueryRow(ctx,
		`select id, date_of_birth, mobile_no, extra_phone from user_details where id = $1`, id,
	).Scan(&p.ID, &p.DateOfBirth, &p.MobileNo, &p.ExtraPhone)
	if err != nil {
		return nil, mapError(err, "get user details")
	}
	return &p, nil
}

func (s *Postgres) DeleteProfile(ctx context.Context, id int64) error {
	return s.execOne(ctx, "delete user details", `delete from user_details where id = $1`, id)
}

// ---------- e-mail addresses ----------

func (s *Postgres) AddEmailAddress(ctx context.Context, a *models.EmailAddress) error {
	const q = `
insert into email_addresses (user_id, email, verified, is_primary)
values ($1, $2, $3, $4)
returning id`
	if err := s.db.QueryRow(ctx, q, a.UserID, a.Email, a.Verified, a.Primary).Scan(&a.ID); err != nil {
		return mapError(err, "add email address")
	}
	return nil
}

func (s *Postgres) PrimaryEmailAddress(ctx context.Context, userID int64) (*models.EmailAddress, error) {
	const q = `
select id, user_id, email, verified, is_primary from email_addresses
where user_id = $1 and is_primary
order by id limit 1`
	var a models.EmailAddress
	if err := s.db.QueryRow(ctx, q, userID).Scan(&a.ID, &a.UserID, &a.Email, &a.Verified, &a.Primary); err != nil {
		return nil, mapError(err, "primary email address")
	}
	return &a, nil
}

func (s *Postgres) VerifyEmailAddress(ctx context.Context, id int64) error {
	return s.execOne(ctx, "verify email address", `update email_addresses set verified = true where id = $1`, id)
}

func (s *Postgres) CreateEmailConfirmation(ctx context.Context, c *models.EmailConfirmation) error {
	if c.Key == uuid.Nil {
		c.Key = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx,
		`insert into email_confirmations (key, email_address_id, created_at, sent_at) values ($1, $2, $3, $4)`,
		c.Key, c.EmailAddressID, c.CreatedAt, c.SentAt)
	if err != nil {
		return mapError(err, "create email confirmation")
	}
	return nil
}

func (s *Postgres) GetEmailConfirmation(ctx context.Context, key uuid.UUID) (*models.EmailConfirmation, error) {
	const q = `
select c.key, c.email_address_id, c.created_at, c.sent_at,
	a.id, a.user_id, a.email, a.verified, a.is_primary
from email_confirmations c
join email_addresses a on a.id = c.email_address_id
where c.key = $1`
	var c models.EmailConfirmation
	err := s.db.QueryRow(ctx, q, key).Scan(&c.Key, &c.EmailAddressID, &c.CreatedAt, &c.SentAt,
		&c.Address.ID, &c.Address.UserID, &c.Address.Email, &c.Address.Verified, &c.Address.Primary)
	if err != nil {
		return nil, mapError(err, "get email confirmation")
	}
	return &c, nil
}

func (s *Postgres) MarkConfirmationSent(ctx context.Context, key uuid.UUID) error {
	return s.execOne(ctx, "mark confirmation sent", `update email_confirmations set sent_at = now() where key = $1`, key)
}

// ---------- password reset verifications ----------

const verificationColumns = `id, user_id, email, code, expires_at, used, created_at`

func scanVerification(row pgx.Row) (*models.Verification, error) {
	var v models.Verification
	if err := row.Scan(&v.ID, &v.UserID, &v.Email, &v.Code, &v.ExpiresAt, &v.Used, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}

func (s *Postgres) CreateVerification(ctx context.Context, v *models.Verification) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(ctx,
		`insert into auth_verifications (`+verificationColumns+`) values ($1, $2, $3, $4, $5, $6, $7)`,
		v.ID, v.UserID, v.Email, v.Code, v.ExpiresAt, v.Used, v.CreatedAt)
	if err != nil {
		return mapError(err, "create verification")
	}
	return nil
}

func (s *Postgres) LatestVerification(ctx context.Context, userID int64, email string) (*models.Verification, error) {
	v, err := scanVerification(s.db.QueryRow(ctx,
		`select `+verificationColumns+` from auth_verifications
		 where user_id = $1 and email = $2
		 order by created_at desc limit 1`, userID, email))
	if err != nil {
		return nil, mapError(err, "latest verification")
	}
	return v, nil
}

func (s *Postgres) FindVerification(ctx context.Context, userID int64, email, code string) (*models.Verification, error) {
	v, err := scanVerification(s.db.QueryRow(ctx,
		`select `+verificationColumns+` from auth_verifications
		 where user_id = $1 and email = $2 and code = $3
		 order by created_at desc limit 1`, userID, email, code))
	if err != nil {
		return nil, mapError(err, "find verification")
	}
	return v, nil
}

func (s *Postgres) MarkVerificationUsed(ctx context.Context, id uuid.UUID) error {
	return s.execOne(ctx, "mark verification used", `update auth_verifications set used = true where id = $1`, id)
}

// mapError converts driver errors into store sentinels.
func mapError(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case "users_username_lower_key":
			return ErrUsernameTaken
		case "users_user_details_id_key":
			return ErrProfileLinked
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}
