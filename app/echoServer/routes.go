package echoServer

import (
	"net/http"

	authctrl "circulation/app/echoServer/controller/auth"
	bookctrl "circulation/app/echoServer/controller/book"
	borrowctrl "circulation/app/echoServer/controller/borrow"
	searchctrl "circulation/app/echoServer/controller/search"
	userctrl "circulation/app/echoServer/controller/user"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

type C struct {
	Auth      *authctrl.Controller
	Book      *bookctrl.Controller
	User      *userctrl.Controller
	Borrow    *borrowctrl.Controller
	Search    *searchctrl.Controller
	JWTSecret string
}

func Register(e *echo.Echo, c C) {
	// Public
	pub := e.Group("/v1")
	pub.POST("/auth/register", c.Auth.Register)
	pub.POST("/auth/login", c.Auth.Login)

	// Auth
	auth := e.Group("/v1")
	auth.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(c.JWTSecret),
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
		},
	}))
	auth.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			tok, ok := ctx.Get("user").(*jwt.Token)
			if !ok || tok == nil {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			if _, ok := claims["sub"].(string); !ok {
				return ctx.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}
			return next(ctx)
		}
	})

	// Auth / profile security
	auth.POST("/auth/change-password/send-otp", c.Auth.SendPasswordOTP)
	auth.POST("/auth/change-password", c.Auth.ChangePassword)

	// Books
	auth.GET("/books", c.Book.List)
	auth.GET("/books/:id", c.Book.Detail)
	auth.POST("/books", c.Book.Create)         // admin
	auth.PATCH("/books/:id", c.Book.Update)    // admin
	auth.DELETE("/books/:id", c.Book.Delete)   // admin

	// Users
	auth.GET("/users", c.User.List)
	auth.GET("/users/search", c.User.Search)
	auth.GET("/users/:id", c.User.Detail)
	auth.PATCH("/users/profile", c.User.UpdateProfile)
	auth.POST("/users/profile/send-email-change-otp", c.User.SendEmailChangeOTP)
	auth.POST("/users/profile/change-email", c.User.ChangeEmail)
	auth.DELETE("/users/:id", c.User.Delete) // admin

	// Borrows
	auth.POST("/borrows", c.Borrow.Create)
	auth.GET("/borrows", c.Borrow.List)
	auth.PATCH("/borrows/:id", c.Borrow.UpdateDueDate)  // admin
	auth.PATCH("/borrows/:id/return", c.Borrow.Return)  // admin

	// Search
	auth.GET("/search", c.Search.Search)
}
