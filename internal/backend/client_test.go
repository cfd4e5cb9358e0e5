package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"staking-core/pkg/errno"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRestClient_ConfirmStake(t *testing.T) {
	var received confirmRequest
	var respond func(w http.ResponseWriter)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/staking/confirm", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		respond(w)
	}))
	defer server.Close()

	client := NewRestClient(server.URL, 5*time.Second)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		}

		err := client.ConfirmStake(ctx, "0xabc", 3, 7)
		require.NoError(t, err)
		assert.Equal(t, "0xabc", received.TxHash)
		assert.Equal(t, uint64(3), received.PackageID)
		assert.Equal(t, uint64(7), received.UserID)
	})

	t.Run("BackendRejects", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":false,"message":"duplicate tx"}`))
		}

		err := client.ConfirmStake(ctx, "0xabc", 3, 7)
		assert.ErrorIs(t, err, errno.ErrConfirmationFailed)
	})

	t.Run("HTTPError", func(t *testing.T) {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusInternalServerError)
		}

		err := client.ConfirmStake(ctx, "0xabc", 3, 7)
		assert.ErrorIs(t, err, errno.ErrConfirmationFailed)
	})
}

func TestRestClient_ConfirmStake_Unreachable(t *testing.T) {
	client := NewRestClient("http://127.0.0.1:1", time.Second)

	err := client.ConfirmStake(context.Background(), "0xabc", 3, 7)
	assert.ErrorIs(t, err, errno.ErrConfirmationFailed)
}

func TestRestClient_ReferralSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/referrals/summary", r.URL.Path)
		require.Equal(t, "7", r.URL.Query().Get("userId"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"overall": {"totalReferrals": 3, "totalInvested": "3000", "totalEarnings": "100.5"},
			"byLevel": {"1": {"count": 2, "totalEarnings": "80"}, "2": {"count": 1, "totalEarnings": "20.5"}}
		}`))
	}))
	defer server.Close()

	client := NewRestClient(server.URL, 5*time.Second)

	summary, err := client.ReferralSummary(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Overall.TotalReferrals)
	assert.True(t, summary.Overall.TotalEarnings.Equal(mustDecimal("100.5")))
	require.Contains(t, summary.ByLevel, 1)
	assert.Equal(t, 2, summary.ByLevel[1].Count)
	assert.True(t, summary.ByLevel[2].TotalEarnings.Equal(mustDecimal("20.5")))
}
