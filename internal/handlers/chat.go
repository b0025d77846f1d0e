package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixeltrade/pixeltrade/internal/model"
	"github.com/pixeltrade/pixeltrade/internal/session"
)

type ChatService interface {
	Post(caller model.UserID, transactionID model.TransactionID, content string) (*model.MessageWithSender, error)
	List(caller model.UserID, transactionID model.TransactionID) ([]model.MessageWithSender, error)
}

type postMessageRequest struct {
	Content string `json:"content"`
}

func PostMessage(chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		request := &postMessageRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		message, err := chatService.Post(userID, model.TransactionID(c.Param("id")), request.Content)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, message)
	}
}

func ListMessages(chatService ChatService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		messages, err := chatService.List(userID, model.TransactionID(c.Param("id")))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, messages)
	}
}
