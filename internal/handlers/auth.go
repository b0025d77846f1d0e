package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pixeltrade/pixeltrade/internal/model"
	"github.com/pixeltrade/pixeltrade/internal/session"
)

type UserService interface {
	Register(params *model.CreateUserParams) (*model.User, error)
	Authenticate(usernameOrEmail, password string) (*model.User, error)
	Fetch(id model.UserID) (*model.User, error)
	UpdateProfile(id model.UserID, params *model.UpdateUserParams) (*model.User, error)
	ChangePassword(id model.UserID, currentPassword, newPassword string) error
	Stats(id model.UserID) (*model.UserStats, error)
}

func Register(userService UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		params := &model.CreateUserParams{}
		if err := c.Bind(params); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		user, err := userService.Register(params)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusCreated, user)
	}
}

type loginRequest struct {
	UsernameOrEmail string `json:"usernameOrEmail"`
	Password        string `json:"password"`
}

type loginResponse struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

func Login(userService UserService, secret string) echo.HandlerFunc {
	return func(c echo.Context) error {
		request := &loginRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		user, err := userService.Authenticate(request.UsernameOrEmail, request.Password)
		if err != nil {
			return httpError(err)
		}
		token, err := session.Issue(user.ID, secret)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, &loginResponse{Token: token, User: user})
	}
}

// Logout acknowledges the client discarding its token; sessions are
// stateless so there is nothing to revoke server-side.
func Logout() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"message": "logged out successfully"})
	}
}

func Me(userService UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		user, err := userService.Fetch(userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, user)
	}
}

func UpdateMe(userService UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		params := &model.UpdateUserParams{}
		if err := c.Bind(params); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		user, err := userService.UpdateProfile(userID, params)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, user)
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func ChangePassword(userService UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		request := &changePasswordRequest{}
		if err := c.Bind(request); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
		if err := userService.ChangePassword(userID, request.CurrentPassword, request.NewPassword); err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]string{"message": "password updated successfully"})
	}
}

func UserStats(userService UserService) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := session.CurrentUserID(c)
		if err != nil {
			return httpError(err)
		}
		stats, err := userService.Stats(userID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, stats)
	}
}
