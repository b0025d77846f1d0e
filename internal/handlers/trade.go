package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pixeltrade/pixeltrade/internal/model"
	"github.com/pixeltrade/pixeltrade/internal/session"
)

type TradeService interface {
	Create(seller model.UserID, params *model.CreateTransactionParams) (*model.Transaction, error)
	Join(buyer model.UserID, code string) (*model.Transaction, error)
	SendAccountDetails(caller model.UserID, id model.TransactionID, payload string) error
	ConfirmReceipt(caller model.UserID, id model.TransactionID) error
	Cancel(caller model.UserID, id model.TransactionID) error
	Report(caller model.UserID, id model.TransactionID, reason string) error
	Detail(caller model.UserID, id model.TransactionID) (*model.TransactionDetail, error)
	Recent(caller model.UserID) ([]model.TransactionSummary, error)
	Public() ([]model.PublicListing, error)
	History(caller model.UserID, kind string, sort string, page int) (*model.HistoryPage, error)
}

func CreateTransaction(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		params := &model.CreateTransactionParams{}
		if err := c.Bind(params); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		trade, err := tradeService.Create(userID, params)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, trade)
	}
}

type joinRequest struct {
	Code string `json:"code"`
}

func JoinTransaction(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		request := &joinRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		trade, err := tradeService.Join(userID, request.Code)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, trade)
	}
}

func TransactionDetail(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		detail, err := tradeService.Detail(userID, model.TransactionID(c.Param("id")))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, detail)
	}
}

type accountDetailsRequest struct {
	Details string `json:"details"`
}

func SendAccountDetails(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		request := &accountDetailsRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := tradeService.SendAccountDetails(userID, model.TransactionID(c.Param("id")), request.Details); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "account details sent successfully"})
	}
}

func ConfirmReceipt(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		if err := tradeService.ConfirmReceipt(userID, model.TransactionID(c.Param("id"))); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "transaction completed successfully"})
	}
}

func CancelTransaction(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		if err := tradeService.Cancel(userID, model.TransactionID(c.Param("id"))); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "transaction canceled successfully"})
	}
}

type reportRequest struct {
	Reason string `json:"reason"`
}

func ReportTransaction(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		request := &reportRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := tradeService.Report(userID, model.TransactionID(c.Param("id")), request.Reason); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "report submitted successfully"})
	}
}

func RecentTransactions(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		summaries, err := tradeService.Recent(userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, summaries)
	}
}

func PublicTransactions(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := session.CurrentUserID(c); err != nil {
			return httpError(err)
		}
		listings, err := tradeService.Public()
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, listings)
	}
}

func TransactionHistory(tradeService TradeService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		kind := c.QueryParam("type")
		if kind == "" {
			kind = "all"
		}
		sort := c.QueryParam("sort")
		if sort == "" {
			sort = "newest"
		}
		page, err := strconv.Atoi(c.QueryParam("page"))
		if err != nil || page < 1 {
			page = 1
		}
		history, err := tradeService.History(userID, kind, sort, page)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, history)
	}
}
