package rest

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Wallet APIs: crypto deposits and withdrawals, and fiat bank accounts. All
// routes are authenticated and subaccount-addressable like the rest of the
// account surface.

// DepositAddress is the default receive address for one currency.
type DepositAddress struct {
	Currency string `json:"currency"`
	Address  string `json:"address"`
}

// GetDepositAddress returns the default deposit address for a currency.
func (c *Client) GetDepositAddress(ctx context.Context, currencyCode string) (*DepositAddress, error) {
	res, err := c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/deposit/address", currencyCode),
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	var address DepositAddress
	if err := res.Decode(&address); err != nil {
		return nil, err
	}
	return &address, nil
}

// GetCryptoWithdrawalInfo returns the withdrawal constraints for a currency:
// cost, minimum amount, decimal places and payment reference support.
func (c *Client) GetCryptoWithdrawalInfo(ctx context.Context, currencyCode string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/withdraw", currencyCode),
		Authenticated: true,
	})
}

// CryptoWithdrawalRequest withdraws funds to an address. PaymentReference
// applies only to currencies that support it (XRP, XMR, XEM, XLM) and is
// limited to 256 characters.
type CryptoWithdrawalRequest struct {
	Amount           decimal.Decimal `json:"amount"`
	Address          string          `json:"address"`
	PaymentReference string          `json:"paymentReference,omitempty"`
}

// PostCryptoWithdrawal requests a crypto withdrawal. The body carries the
// withdrawal id under "id"; track progress with GetCryptoWithdrawalStatus.
func (c *Client) PostCryptoWithdrawal(ctx context.Context, currencyCode string, withdrawal CryptoWithdrawalRequest) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/withdraw", currencyCode),
		Body:          withdrawal,
		Authenticated: true,
	})
}

// WithdrawalStatus is the current state of one crypto withdrawal.
type WithdrawalStatus struct {
	Currency        string          `json:"currency"`
	Address         string          `json:"address"`
	Amount          decimal.Decimal `json:"amount"`
	FeeAmount       decimal.Decimal `json:"feeAmount"`
	TransactionHash string          `json:"transactionHash"`
	UniqueID        string          `json:"uniqueId"`
	CreatedAt       string          `json:"createdAt"`
	Verified        bool            `json:"verified"`
	Status          string          `json:"status"`
}

// GetCryptoWithdrawalStatus returns the state of one withdrawal.
func (c *Client) GetCryptoWithdrawalStatus(ctx context.Context, currencyCode, withdrawID string) (*WithdrawalStatus, error) {
	res, err := c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/withdraw/%s", currencyCode, withdrawID),
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	var status WithdrawalStatus
	if err := res.Decode(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// GetDepositHistory pages through deposit records for a currency.
func (c *Client) GetDepositHistory(ctx context.Context, currencyCode string, skip, limit int) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/deposit/history", currencyCode),
		Query:         pageQuery(skip, limit),
		Authenticated: true,
	})
}

// GetCryptoWithdrawalHistory pages through withdrawal records for a currency.
func (c *Client) GetCryptoWithdrawalHistory(ctx context.Context, currencyCode string, skip, limit int) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/crypto/%s/withdraw/history", currencyCode),
		Query:         pageQuery(skip, limit),
		Authenticated: true,
	})
}

// Fiat wallet APIs.

// BankAccountRequest links a bank account for fiat withdrawals. Country is
// the two letter ISO 3166-1 code of the country the account is registered in.
type BankAccountRequest struct {
	Bank          string `json:"bank"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	BranchCode    string `json:"branchCode"`
	AccountType   string `json:"accountType"`
	Country       string `json:"country"`
}

// AddBankAccount links a bank account to the addressed account. The country
// code is upper-cased on the way out.
func (c *Client) AddBankAccount(ctx context.Context, currencyCode string, account BankAccountRequest) (*Response, error) {
	account.Country = strings.ToUpper(account.Country)
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/accounts", currencyCode),
		Body:          account,
		Authenticated: true,
	})
}

// BankAccount is one linked fiat account.
type BankAccount struct {
	ID            string `json:"id"`
	Bank          string `json:"bank"`
	AccountHolder string `json:"accountHolder"`
	AccountNumber string `json:"accountNumber"`
	BranchCode    string `json:"branchCode"`
	AccountType   string `json:"accountType"`
	CreatedAt     string `json:"createdAt"`
}

// GetBankAccounts lists the bank accounts linked to the addressed account.
func (c *Client) GetBankAccounts(ctx context.Context, currencyCode string) ([]BankAccount, error) {
	res, err := c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/accounts", currencyCode),
		Authenticated: true,
	})
	if err != nil {
		return nil, err
	}
	var accounts []BankAccount
	if err := res.Decode(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteBankAccount unlinks a bank account.
func (c *Client) DeleteBankAccount(ctx context.Context, currencyCode, accountID string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "DELETE",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/accounts/%s", currencyCode, accountID),
		Authenticated: true,
	})
}

// GetBanksForCurrency lists the banks supported for a fiat currency, for use
// as the Bank field when linking an account.
func (c *Client) GetBanksForCurrency(ctx context.Context, currencyCode string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/banks", currencyCode),
		Authenticated: true,
	})
}

// GetDepositReference returns the unique reference that credits fiat payments
// to the addressed account.
func (c *Client) GetDepositReference(ctx context.Context, currencyCode string) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "GET",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/deposit/reference", currencyCode),
		Authenticated: true,
	})
}

// FiatWithdrawalRequest withdraws fiat funds to a linked bank account. Fast
// requests same-day processing where the bank supports it.
type FiatWithdrawalRequest struct {
	LinkedBankAccountID string          `json:"linkedBankAccountId"`
	Amount              decimal.Decimal `json:"amount"`
	Fast                bool            `json:"fast"`
}

// PostFiatWithdrawal requests a fiat withdrawal to a linked bank account.
func (c *Client) PostFiatWithdrawal(ctx context.Context, currencyCode string, withdrawal FiatWithdrawalRequest) (*Response, error) {
	return c.Do(ctx, Request{
		Method:        "POST",
		Path:          fmt.Sprintf("/v1/wallet/fiat/%s/withdraw", currencyCode),
		Body:          withdrawal,
		Authenticated: true,
	})
}
