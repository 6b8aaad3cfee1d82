package liquidium

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runesswap/internal/domain"
	"runesswap/internal/venue"
)

func TestGetChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/challenge", r.URL.Path)
		assert.Equal(t, "bc1pordinals", r.URL.Query().Get("ordinalsAddress"))
		assert.Equal(t, "bc1qpayment", r.URL.Query().Get("paymentAddress"))

		w.Write([]byte(`{
			"ordinals": {"message":"sign me ord","nonce":"n1"},
			"payment": {"message":"sign me pay","nonce":"n2"}
		}`))
	}))
	defer srv.Close()

	ch, err := New(srv.URL).GetChallenge(context.Background(), "bc1pordinals", "bc1qpayment")
	require.NoError(t, err)
	assert.Equal(t, "sign me ord", ch.Ordinals.Message)
	assert.Equal(t, "n2", ch.Payment.Nonce)
}

func TestSubmitChallenge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/token", r.URL.Path)

		var req AuthRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "xverse", req.WalletKind)
		assert.Equal(t, "sig-ord", req.OrdinalsSignature)

		w.Write([]byte(`{"user_jwt":"jwt-abc","expires_at":"2024-06-02T12:00:00Z"}`))
	}))
	defer srv.Close()

	res, err := New(srv.URL).SubmitChallenge(context.Background(), AuthRequest{
		OrdinalsAddress:   "bc1pordinals",
		OrdinalsSignature: "sig-ord",
		WalletKind:        "xverse",
	})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", res.UserJWT)
	require.NotNil(t, res.ExpiresAt)
	assert.Equal(t, 2024, res.ExpiresAt.Year())
}

func TestSubmitChallenge_EmptyToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).SubmitChallenge(context.Background(), AuthRequest{})
	require.Error(t, err)
	assert.True(t, venue.IsKind(err, venue.KindUnavailable), "got %v", err)
}

func TestPrepareBorrow_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/borrow/prepare", r.URL.Path)
		assert.Equal(t, "Bearer jwt-abc", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "offer-1", body["offer_id"])
		assert.Equal(t, float64(12), body["fee_rate"])
		assert.Equal(t, "xverse", body["wallet"])

		w.Write([]byte(`{"base64_psbt":"cHNidP8B","prepare_offer_id":"prep-1"}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL).PrepareBorrow(context.Background(), "jwt-abc", domain.BorrowPrepare{
		OfferID:     "offer-1",
		TokenAmount: "15000",
		FeeRate:     12,
		WalletKind:  "xverse",
	})
	require.NoError(t, err)
	assert.Equal(t, "prep-1", p.OfferID)
	assert.Equal(t, "prep-1", p.ID())
	assert.Equal(t, uint64(12), p.BuiltWithFeeRate)
}

func TestPrepareBorrow_AuthExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).PrepareBorrow(context.Background(), "stale", domain.BorrowPrepare{OfferID: "o"})
	require.Error(t, err)
	assert.True(t, venue.IsKind(err, venue.KindAuthExpired), "got %v", err)
}

func TestSubmitBorrow(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/borrow/submit", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "prep-1", body["prepare_offer_id"])

		w.Write([]byte(`{"loan_transaction_id":"loantx"}`))
	}))
	defer srv.Close()

	txid, err := New(srv.URL).SubmitBorrow(context.Background(), "jwt", domain.BorrowSubmit{
		SignedPSBTBase64: "c2lnbmVk",
		PrepareOfferID:   "prep-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "loantx", txid)
}

func TestRepayRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repay/prepare":
			w.Write([]byte(`{"base64_psbt":"cHNidP8B","prepare_offer_id":"rep-1"}`))
		case "/repay/submit":
			w.Write([]byte(`{"loan_transaction_id":"repaytx"}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)

	p, err := c.PrepareRepay(context.Background(), "jwt", domain.RepayPrepare{LoanID: "loan-1", FeeRate: 8})
	require.NoError(t, err)
	assert.Equal(t, "rep-1", p.OfferID)

	txid, err := c.SubmitRepay(context.Background(), "jwt", domain.RepaySubmit{
		SignedPSBTBase64: "c2lnbmVk",
		PrepareOfferID:   p.OfferID,
	})
	require.NoError(t, err)
	assert.Equal(t, "repaytx", txid)
}
