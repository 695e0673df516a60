package ledgerdelivery

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("accounttype", ValidAccountType); err != nil {
			log.Fatalf("cannot register accounttype validator: %v", err)
		}
	}

	os.Exit(m.Run())
}

func randomAccount(seq int64) domain.Account {
	return domain.Account{
		Number:     domain.FormatAccountNumber(seq),
		Type:       domain.Current,
		CustomerID: randompkg.String(16),
		Balance:    decimal.RequireFromString(randompkg.MoneyAmountBetween(0, 1000)),
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
}

type testCase struct {
	name           string
	method         string
	url            string
	body           any
	buildStubs     func(s *MockService)
	wantStatusCode int
	wantError      string
	data           any
	checkData      func(t *testing.T, data any)
}

func runTestCases(t *testing.T, testCases []testCase) {
	t.Helper()

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			handler := NewHandler(service)
			server := gin.New()
			handler.Register(server)

			var body bytes.Buffer
			if tc.body != nil {
				if err := json.NewEncoder(&body).Encode(tc.body); err != nil {
					t.Fatalf("Encoding request body error: %v", err)
				}
			}

			req, err := http.NewRequest(tc.method, tc.url, &body)
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, req)

			if got := recorder.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			res := web.Response{Data: tc.data}
			if err := json.NewDecoder(recorder.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if res.Error != tc.wantError {
				t.Errorf(`res.Error=%q, want %q`, res.Error, tc.wantError)
			}

			if tc.checkData != nil {
				tc.checkData(t, res.Data)
			}
		})
	}
}

type accountResponse = struct {
	Account domain.Account `json:"account"`
}

type accountsResponse = struct {
	Accounts []domain.Account `json:"accounts"`
}

func checkAccount(want domain.Account) func(t *testing.T, data any) {
	return func(t *testing.T, data any) {
		got := data.(*accountResponse)
		if diff := cmp.Diff(want, got.Account); diff != "" {
			t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
		}
	}
}

func checkAccounts(want []domain.Account) func(t *testing.T, data any) {
	return func(t *testing.T, data any) {
		got := data.(*accountsResponse)
		if diff := cmp.Diff(want, got.Accounts); diff != "" {
			t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestOpenAccount(t *testing.T) {
	name := randompkg.Name()
	email := randompkg.Email()

	type requestBody struct {
		Name        string `json:"name,omitempty"`
		Email       string `json:"email,omitempty"`
		AccountType string `json:"account_type,omitempty"`
	}

	type openResponse = struct {
		AccountNumber string `json:"account_number"`
	}

	runTestCases(t, []testCase{
		{
			name:   "OK",
			method: http.MethodPost,
			url:    "/accounts",
			body:   requestBody{Name: name, Email: email, AccountType: "savings"},
			buildStubs: func(s *MockService) {
				s.EXPECT().OpenAccount(gomock.Any(), gomock.Eq(name), gomock.Eq(email), gomock.Eq("savings")).
					Times(1).
					Return("AC000001", nil)
			},
			wantStatusCode: http.StatusCreated,
			data:           &openResponse{},
			checkData: func(t *testing.T, data any) {
				if got := data.(*openResponse).AccountNumber; got != "AC000001" {
					t.Errorf("account_number=%q, want %q", got, "AC000001")
				}
			},
		},
		{
			name:   "MissingName",
			method: http.MethodPost,
			url:    "/accounts",
			body:   requestBody{Email: email, AccountType: "SAVINGS"},
			buildStubs: func(s *MockService) {
				s.EXPECT().OpenAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Name field is required",
		},
		{
			name:   "InvalidAccountType",
			method: http.MethodPost,
			url:    "/accounts",
			body:   requestBody{Name: name, Email: email, AccountType: "CHECKING"},
			buildStubs: func(s *MockService) {
				s.EXPECT().OpenAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "AccountType must be SAVINGS or CURRENT",
		},
		{
			name:   "ServiceValidationErr",
			method: http.MethodPost,
			url:    "/accounts",
			body:   requestBody{Name: name, Email: "no-at-sign", AccountType: "CURRENT"},
			buildStubs: func(s *MockService) {
				s.EXPECT().OpenAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return("", domain.ErrInvalidEmail)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidEmail.Error(),
		},
		{
			name:   "InternalServerError",
			method: http.MethodPost,
			url:    "/accounts",
			body:   requestBody{Name: name, Email: email, AccountType: "CURRENT"},
			buildStubs: func(s *MockService) {
				s.EXPECT().OpenAccount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return("", fmt.Errorf("disk on fire"))
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	})
}

func TestListAndSearchAccounts(t *testing.T) {
	accounts := []domain.Account{randomAccount(1), randomAccount(2)}

	runTestCases(t, []testCase{
		{
			name:   "List",
			method: http.MethodGet,
			url:    "/accounts",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListAccounts(gomock.Any()).Times(1).Return(accounts, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountsResponse{},
			checkData:      checkAccounts(accounts),
		},
		{
			name:   "ListErr",
			method: http.MethodGet,
			url:    "/accounts",
			buildStubs: func(s *MockService) {
				s.EXPECT().ListAccounts(gomock.Any()).Times(1).Return(nil, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
		{
			name:   "Search",
			method: http.MethodGet,
			url:    "/accounts/search?q=ali",
			buildStubs: func(s *MockService) {
				s.EXPECT().SearchAccountsByCustomerName(gomock.Any(), gomock.Eq("ali")).Times(1).Return(accounts[:1], nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountsResponse{},
			checkData:      checkAccounts(accounts[:1]),
		},
		{
			name:   "SearchEmptyQuery",
			method: http.MethodGet,
			url:    "/accounts/search",
			buildStubs: func(s *MockService) {
				s.EXPECT().SearchAccountsByCustomerName(gomock.Any(), gomock.Eq("")).Times(1).Return(accounts, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountsResponse{},
			checkData:      checkAccounts(accounts),
		},
	})
}

func TestGetAccountAndStatement(t *testing.T) {
	account := randomAccount(7)
	statement := []domain.Transaction{{
		ID:            "01HZX3V1Q5Z7M2K9D8C6B4A2E0",
		Type:          domain.Deposit,
		AccountNumber: account.Number,
		Amount:        decimal.NewFromInt(100),
		Timestamp:     time.Now().UTC().Truncate(time.Second),
	}}

	type statementResponse = struct {
		Transactions []domain.Transaction `json:"transactions"`
	}

	runTestCases(t, []testCase{
		{
			name:   "GetAccount",
			method: http.MethodGet,
			url:    "/accounts/" + account.Number,
			buildStubs: func(s *MockService) {
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountResponse{},
			checkData:      checkAccount(account),
		},
		{
			name:   "GetAccountNotFound",
			method: http.MethodGet,
			url:    "/accounts/AC999999",
			buildStubs: func(s *MockService) {
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq("AC999999")).Times(1).Return(domain.Account{}, domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:   "Statement",
			method: http.MethodGet,
			url:    "/accounts/" + account.Number + "/statement",
			buildStubs: func(s *MockService) {
				s.EXPECT().GetStatement(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(statement, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &statementResponse{},
			checkData: func(t *testing.T, data any) {
				if diff := cmp.Diff(statement, data.(*statementResponse).Transactions); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:   "StatementUnknownAccount",
			method: http.MethodGet,
			url:    "/accounts/AC999999/statement",
			buildStubs: func(s *MockService) {
				s.EXPECT().GetStatement(gomock.Any(), gomock.Eq("AC999999")).Times(1).Return([]domain.Transaction{}, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &statementResponse{},
			checkData: func(t *testing.T, data any) {
				got := data.(*statementResponse).Transactions
				if got == nil || len(got) != 0 {
					t.Errorf("transactions=%v, want empty list", got)
				}
			},
		},
	})
}

func TestDepositAndWithdraw(t *testing.T) {
	account := randomAccount(3)

	type requestBody struct {
		Amount string `json:"amount,omitempty"`
		Note   string `json:"note,omitempty"`
	}

	runTestCases(t, []testCase{
		{
			name:   "Deposit",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   requestBody{Amount: "100.50", Note: "salary"},
			buildStubs: func(s *MockService) {
				gomock.InOrder(
					s.EXPECT().Deposit(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("100.50"), gomock.Eq("salary")).
						Times(1).
						Return(nil),
					s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(account, nil),
				)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountResponse{},
			checkData:      checkAccount(account),
		},
		{
			name:   "DepositZero",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   requestBody{Amount: "0"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("0"), gomock.Eq("")).Times(1).Return(nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountResponse{},
		},
		{
			name:   "DepositNumberAmount",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   json.RawMessage(`{"amount": 100.50, "note": "salary"}`),
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("100.50"), gomock.Eq("salary")).
					Times(1).
					Return(nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountResponse{},
			checkData:      checkAccount(account),
		},
		{
			name:   "DepositBoolAmount",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   json.RawMessage(`{"amount": true}`),
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrInvalidAmount.Error(),
		},
		{
			name:   "DepositNullAmount",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   json.RawMessage(`{"amount": null}`),
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name:   "DepositMissingAmount",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   requestBody{Note: "no amount"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name:   "DepositNegativeAmount",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/deposits",
			body:   requestBody{Amount: "-1"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(domain.ErrNegativeAmount)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrNegativeAmount.Error(),
		},
		{
			name:   "DepositAccountNotFound",
			method: http.MethodPost,
			url:    "/accounts/AC999999/deposits",
			body:   requestBody{Amount: "1"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Deposit(gomock.Any(), gomock.Eq("AC999999"), gomock.Any(), gomock.Any()).Times(1).Return(domain.ErrAccountNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAccountNotFound.Error(),
		},
		{
			name:   "Withdraw",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/withdrawals",
			body:   requestBody{Amount: "30"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Eq(account.Number), gomock.Eq("30"), gomock.Eq("")).Times(1).Return(nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(account.Number)).Times(1).Return(account, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &accountResponse{},
			checkData:      checkAccount(account),
		},
		{
			name:   "WithdrawInsufficientFunds",
			method: http.MethodPost,
			url:    "/accounts/" + account.Number + "/withdrawals",
			body:   requestBody{Amount: "1000000"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Withdraw(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(1).Return(domain.ErrInsufficientFunds)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
	})
}

func TestTransfer(t *testing.T) {
	from := randomAccount(1)
	to := randomAccount(2)

	type requestBody struct {
		FromAccount string `json:"from_account,omitempty"`
		ToAccount   string `json:"to_account,omitempty"`
		Amount      string `json:"amount,omitempty"`
		Note        string `json:"note,omitempty"`
	}

	type transferResponse = struct {
		FromAccount domain.Account `json:"from_account"`
		ToAccount   domain.Account `json:"to_account"`
	}

	runTestCases(t, []testCase{
		{
			name:   "OK",
			method: http.MethodPost,
			url:    "/transfers",
			body:   requestBody{FromAccount: from.Number, ToAccount: to.Number, Amount: "50", Note: "rent"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Eq(from.Number), gomock.Eq(to.Number), gomock.Eq("50"), gomock.Eq("rent")).
					Times(1).
					Return(nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.Number)).Times(1).Return(from, nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.Number)).Times(1).Return(to, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &transferResponse{},
			checkData: func(t *testing.T, data any) {
				got := data.(*transferResponse)
				if diff := cmp.Diff(transferResponse{FromAccount: from, ToAccount: to}, *got); diff != "" {
					t.Errorf("res.Data mismatch (-want +got):\n%s", diff)
				}
			},
		},
		{
			name:   "NumberAmount",
			method: http.MethodPost,
			url:    "/transfers",
			body:   json.RawMessage(`{"from_account": "` + from.Number + `", "to_account": "` + to.Number + `", "amount": 50}`),
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Eq(from.Number), gomock.Eq(to.Number), gomock.Eq("50"), gomock.Eq("")).
					Times(1).
					Return(nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(from.Number)).Times(1).Return(from, nil)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Eq(to.Number)).Times(1).Return(to, nil)
			},
			wantStatusCode: http.StatusOK,
			data:           &transferResponse{},
		},
		{
			name:   "MissingToAccount",
			method: http.MethodPost,
			url:    "/transfers",
			body:   requestBody{FromAccount: from.Number, Amount: "50"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ToAccount field is required",
		},
		{
			name:   "SameAccount",
			method: http.MethodPost,
			url:    "/transfers",
			body:   requestBody{FromAccount: from.Number, ToAccount: from.Number, Amount: "50"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ErrSameAccount)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      domain.ErrSameAccount.Error(),
		},
		{
			name:   "InsufficientFunds",
			method: http.MethodPost,
			url:    "/transfers",
			body:   requestBody{FromAccount: from.Number, ToAccount: to.Number, Amount: "50"},
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.ErrInsufficientFunds)
				s.EXPECT().GetAccount(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      domain.ErrInsufficientFunds.Error(),
		},
		{
			name:   "InvalidJSON",
			method: http.MethodPost,
			url:    "/transfers",
			body:   "not an object",
			buildStubs: func(s *MockService) {
				s.EXPECT().Transfer(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
	})
}

func TestStatusOf(t *testing.T) {
	testCases := []struct {
		err  error
		want int
	}{
		{err: domain.ErrBlankName, want: http.StatusBadRequest},
		{err: domain.ErrSameAccount, want: http.StatusBadRequest},
		{err: domain.ErrAccountNotFound, want: http.StatusNotFound},
		{err: domain.ErrInsufficientFunds, want: http.StatusUnprocessableEntity},
		{err: domain.ErrAccountNumberTaken, want: http.StatusConflict},
		{err: errorspkg.ErrInternal, want: http.StatusInternalServerError},
		{err: domain.ErrCustomerNotFound, want: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		if got := statusOf(tc.err); got != tc.want {
			t.Errorf("statusOf(%v)=%d, want %d", tc.err, got, tc.want)
		}
	}
}
