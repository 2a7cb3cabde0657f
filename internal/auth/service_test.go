package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-kasir/internal/common"
)

type fakeOperatorStore struct {
	op  Operator
	err error
}

func (f fakeOperatorStore) GetOperatorByUsername(ctx context.Context, username string) (Operator, error) {
	if f.err != nil {
		return Operator{}, f.err
	}
	if username != f.op.Username {
		return Operator{}, ErrInvalidCredentials
	}
	return f.op, nil
}

func testService(t *testing.T, password string) (Service, Operator) {
	t.Helper()
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	require.NoError(t, err)
	op := Operator{
		ID:           uuid.New(),
		Username:     "kasir-admin",
		PasswordHash: hash,
		Role:         "admin",
	}
	svc := Service{
		Store:    fakeOperatorStore{op: op},
		Secret:   []byte("test-secret-test-secret-32bytes!"),
		Issuer:   "backend-kasir",
		Audience: "kasir-terminal",
		TokenTTL: time.Hour,
	}
	return svc, op
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, op := testService(t, "correct horse battery")

	pair, err := svc.Login(context.Background(), "kasir-admin", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.True(t, pair.ExpiresAt.After(time.Now()))

	id, err := svc.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	require.Equal(t, op.ID, id)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := testService(t, "correct horse battery")
	_, err := svc.Login(context.Background(), "kasir-admin", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _ := testService(t, "correct horse battery")
	_, err := svc.Login(context.Background(), "nobody", "correct horse battery")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestParseAccessTokenRejectsForgedToken(t *testing.T) {
	svc, _ := testService(t, "pw-not-relevant")

	other := svc
	other.Secret = []byte("another-secret-another-secret-32")
	pair, err := other.Login(context.Background(), "kasir-admin", "pw-not-relevant")
	require.NoError(t, err)

	_, err = svc.ParseAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestParseAccessTokenRejectsExpired(t *testing.T) {
	svc, _ := testService(t, "pw-not-relevant")
	svc.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	pair, err := svc.Login(context.Background(), "kasir-admin", "pw-not-relevant")
	require.NoError(t, err)

	svc.Now = nil
	_, err = svc.ParseAccessToken(pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequireOperator(t *testing.T) {
	svc, op := testService(t, "pw-not-relevant")
	pair, err := svc.Login(context.Background(), "kasir-admin", "pw-not-relevant")
	require.NoError(t, err)

	var gotOperator string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotOperator, _ = common.OperatorID(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := svc.RequireOperator(next)

	t.Run("valid token passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/rules", nil)
		req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Equal(t, op.ID.String(), gotOperator)
	})

	t.Run("missing token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/rules", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/rules", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
