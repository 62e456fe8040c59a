package rest

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDepositAddress(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/crypto/BTC/deposit/address", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-VALR-SIGNATURE"))
		w.Write([]byte(`{"currency":"BTC","address":"3AXmnq8g6BtPcGDGXYzd2hTu1LJYHm2BzR"}`))
	})

	address, err := client.GetDepositAddress(context.Background(), "BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTC", address.Currency)
	assert.Equal(t, "3AXmnq8g6BtPcGDGXYzd2hTu1LJYHm2BzR", address.Address)
}

func TestPostCryptoWithdrawalBody(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/wallet/crypto/BTC/withdraw", r.URL.Path)
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"bd3ec7a6"}`))
	})

	_, err := client.PostCryptoWithdrawal(context.Background(), "BTC", CryptoWithdrawalRequest{
		Amount:  decimal.RequireFromString("0.01"),
		Address: "3AXmnq8g6BtPcGDGXYzd2hTu1LJYHm2BzR",
	})
	require.NoError(t, err)
	// Empty payment reference stays off the wire.
	assert.JSONEq(t, `{"amount":"0.01","address":"3AXmnq8g6BtPcGDGXYzd2hTu1LJYHm2BzR"}`, gotBody)
}

func TestGetCryptoWithdrawalStatus(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/crypto/BTC/withdraw/bd3ec7a6", r.URL.Path)
		w.Write([]byte(`{
			"currency": "BTC",
			"address": "3AXmnq8g6BtPcGDGXYzd2hTu1LJYHm2BzR",
			"amount": "0.01",
			"feeAmount": "0.0002",
			"transactionHash": "",
			"uniqueId": "bd3ec7a6",
			"verified": true,
			"status": "Processing"
		}`))
	})

	status, err := client.GetCryptoWithdrawalStatus(context.Background(), "BTC", "bd3ec7a6")
	require.NoError(t, err)
	assert.Equal(t, "bd3ec7a6", status.UniqueID)
	assert.Equal(t, "Processing", status.Status)
	assert.Equal(t, "0.0002", status.FeeAmount.String())
	assert.True(t, status.Verified)
}

func TestGetDepositHistoryPaging(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/crypto/ETH/deposit/history", r.URL.Path)
		assert.Equal(t, "5", r.URL.Query().Get("skip"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`[]`))
	})

	_, err := client.GetDepositHistory(context.Background(), "ETH", 5, 20)
	require.NoError(t, err)
}

func TestAddBankAccountUppercasesCountry(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/fiat/ZAR/accounts", r.URL.Path)
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"b355ed56"}`))
	})

	_, err := client.AddBankAccount(context.Background(), "ZAR", BankAccountRequest{
		Bank:          "Standard Bank",
		AccountHolder: "A Trader",
		AccountNumber: "123456789",
		BranchCode:    "051001",
		AccountType:   "Current",
		Country:       "za",
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"bank": "Standard Bank",
		"accountHolder": "A Trader",
		"accountNumber": "123456789",
		"branchCode": "051001",
		"accountType": "Current",
		"country": "ZA"
	}`, gotBody)
}

func TestGetBankAccounts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/fiat/ZAR/accounts", r.URL.Path)
		w.Write([]byte(`[{"id":"b355ed56","bank":"Standard Bank","accountNumber":"123456789"}]`))
	})

	accounts, err := client.GetBankAccounts(context.Background(), "ZAR")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "b355ed56", accounts[0].ID)
}

func TestPostFiatWithdrawalBody(t *testing.T) {
	var gotBody string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/wallet/fiat/ZAR/withdraw", r.URL.Path)
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		w.Write([]byte(`{"id":"c7a6bd3e"}`))
	})

	_, err := client.PostFiatWithdrawal(context.Background(), "ZAR", FiatWithdrawalRequest{
		LinkedBankAccountID: "b355ed56",
		Amount:              decimal.RequireFromString("1500.00"),
		Fast:                true,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"linkedBankAccountId":"b355ed56","amount":"1500.00","fast":true}`, gotBody)
}
