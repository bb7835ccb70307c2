package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"esgportal/errs"
	"esgportal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return conn, mock
}

func TestProfileRepo_Get(t *testing.T) {
	conn, mock := newMock(t)
	r := NewProfileRepo(conn)
	ctx := context.Background()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, email, company_id, role, tier, created_at\s+FROM profiles WHERE id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "company_id", "role", "tier", "created_at"}).
			AddRow("u1", "a@b.co", "c1", "user", "pro", now))
	p, err := r.Get(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, models.TierPro, p.Tier)
	require.NotNil(t, p.CompanyID)
	require.Equal(t, "c1", *p.CompanyID)

	mock.ExpectQuery(`FROM profiles WHERE id = \$1`).
		WithArgs("u2").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "company_id", "role", "tier", "created_at"}).
			AddRow("u2", "c@d.co", nil, "user", "free", now))
	p, err = r.Get(ctx, "u2")
	require.NoError(t, err)
	require.Nil(t, p.CompanyID)

	mock.ExpectQuery(`FROM profiles WHERE id = \$1`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)
	p, err = r.Get(ctx, "missing")
	require.NoError(t, err)
	require.Nil(t, p)

	boom := errors.New("connection reset")
	mock.ExpectQuery(`FROM profiles WHERE id = \$1`).
		WithArgs("u3").
		WillReturnError(boom)
	_, err = r.Get(ctx, "u3")
	require.ErrorIs(t, err, errs.ErrStoreQueryFailed)
	require.ErrorIs(t, err, boom)
}

func TestProfileRepo_SetTier(t *testing.T) {
	conn, mock := newMock(t)
	r := NewProfileRepo(conn)

	mock.ExpectExec(`INSERT INTO profiles \(id, email, tier\)`).
		WithArgs("u1", "a@b.co", "pro").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, r.SetTier(context.Background(), "u1", "a@b.co", models.TierPro))
}

func TestAccountRepo_Create_UniqueViolation(t *testing.T) {
	conn, mock := newMock(t)
	r := NewAccountRepo(conn)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("id1", "a@b.co", "hash").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	require.NoError(t, r.Create(ctx, &models.Account{ID: "id1", Email: "A@b.co", PasswordHash: "hash"}))

	mock.ExpectQuery(`INSERT INTO accounts`).
		WithArgs("id2", "a@b.co", "hash").
		WillReturnError(&pq.Error{Code: "23505"})
	err := r.Create(ctx, &models.Account{ID: "id2", Email: "a@b.co", PasswordHash: "hash"})
	require.ErrorIs(t, err, errs.ErrAlreadyExists)
}

func TestAccountRepo_GetByEmail_NotFound(t *testing.T) {
	conn, mock := newMock(t)
	r := NewAccountRepo(conn)

	mock.ExpectQuery(`FROM accounts WHERE email = \$1`).
		WithArgs("x@y.co").
		WillReturnError(sql.ErrNoRows)
	a, err := r.GetByEmail(context.Background(), "X@y.co")
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestTemplateRepo_Get(t *testing.T) {
	conn, mock := newMock(t)
	r := NewTemplateRepo(conn)
	ctx := context.Background()

	questions := []byte(`[{"key":"scope1","section":"Metrics","prompt":"Scope 1"}]`)
	mock.ExpectQuery(`FROM questionnaire_templates WHERE jurisdiction = \$1 AND version = \$2`).
		WithArgs("EU", "2024").
		WillReturnRows(sqlmock.NewRows([]string{"id", "jurisdiction", "version", "name", "questions", "created_at"}).
			AddRow("esrs-2024", "EU", "2024", "ESRS", questions, time.Now()))
	tpl, err := r.Get(ctx, "EU", "2024")
	require.NoError(t, err)
	require.Len(t, tpl.Questions, 1)
	require.Equal(t, "scope1", tpl.Questions[0].Key)

	mock.ExpectQuery(`FROM questionnaire_templates WHERE jurisdiction = \$1 AND version = \$2`).
		WithArgs("EU", "2030").
		WillReturnError(sql.ErrNoRows)
	tpl, err = r.Get(ctx, "EU", "2030")
	require.NoError(t, err)
	require.Nil(t, tpl)
}

func TestTemplateRepo_List(t *testing.T) {
	conn, mock := newMock(t)
	r := NewTemplateRepo(conn)

	mock.ExpectQuery(`FROM questionnaire_templates\s+WHERE \$1 = '' OR jurisdiction = \$1`).
		WithArgs("").
		WillReturnRows(sqlmock.NewRows([]string{"id", "jurisdiction", "version", "name", "questions", "created_at"}).
			AddRow("a", "EU", "2024", "A", []byte(`[]`), time.Now()).
			AddRow("b", "US", "2024", "B", nil, time.Now()))
	list, err := r.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.NotNil(t, list[1].Questions)
}

func TestCheckoutRepo_Complete(t *testing.T) {
	conn, mock := newMock(t)
	r := NewCheckoutRepo(conn)
	ctx := context.Background()

	mock.ExpectExec(`INSERT INTO checkout_sessions .* ON CONFLICT \(session_id\) DO UPDATE`).
		WithArgs("cs_1", "u1", "annual").
		WillReturnResult(sqlmock.NewResult(0, 1))
	first, err := r.Complete(ctx, "cs_1", "u1", models.PriceAnnual)
	require.NoError(t, err)
	require.True(t, first)

	mock.ExpectExec(`INSERT INTO checkout_sessions .* ON CONFLICT \(session_id\) DO UPDATE`).
		WithArgs("cs_1", "u1", "annual").
		WillReturnResult(sqlmock.NewResult(0, 0))
	first, err = r.Complete(ctx, "cs_1", "u1", models.PriceAnnual)
	require.NoError(t, err)
	require.False(t, first)
}

func TestCheckoutRepo_InsertAndExpire(t *testing.T) {
	conn, mock := newMock(t)
	r := NewCheckoutRepo(conn)
	ctx := context.Background()

	mock.ExpectQuery(`INSERT INTO checkout_sessions \(session_id, identity_id, price_type, url, status\)`).
		WithArgs("cs_2", "u1", "per_report", "https://pay/cs_2", "pending").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
	cs := &models.CheckoutSession{SessionID: "cs_2", IdentityID: "u1", PriceType: models.PricePerReport, URL: "https://pay/cs_2"}
	require.NoError(t, r.Insert(ctx, cs))
	require.Equal(t, models.CheckoutPending, cs.Status)

	cutoff := time.Now().Add(-24 * time.Hour)
	mock.ExpectExec(`UPDATE checkout_sessions SET status = 'expired'`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 3))
	n, err := r.ExpirePending(ctx, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestCheckoutRepo_CountByStatus(t *testing.T) {
	conn, mock := newMock(t)
	r := NewCheckoutRepo(conn)

	mock.ExpectQuery(`SELECT status, COUNT\(\*\) FROM checkout_sessions`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("pending", 2).
			AddRow("completed", 1))
	counts, err := r.CountByStatus(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, map[string]int{"pending": 2, "completed": 1}, counts)
}

func TestDisclosureRepo_GetScopedToUser(t *testing.T) {
	conn, mock := newMock(t)
	r := NewDisclosureRepo(conn)

	mock.ExpectQuery(`FROM disclosures WHERE id = \$1 AND user_id = \$2`).
		WithArgs("d1", "other").
		WillReturnError(sql.ErrNoRows)
	d, err := r.Get(context.Background(), "other", "d1")
	require.NoError(t, err)
	require.Nil(t, d)
}
