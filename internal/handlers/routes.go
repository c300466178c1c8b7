package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// API bundles the handlers and middleware into one route table, shared
// between cmd/main.go and the handler tests.
type API struct {
	Auth     *AuthHandler
	Products *ProductHandler
	Cart     *CartHandler

	AuthMW  fiber.Handler
	AdminMW fiber.Handler

	// StaticDir, when set, is served at / for the built single-page
	// client. Guest carts live entirely in the client's local storage.
	StaticDir string
}

func (a *API) Register(app *fiber.App) {
	api := app.Group("/api")

	api.Post("/signup", a.Auth.Signup)
	api.Post("/login", a.Auth.Login)
	api.Post("/logout", a.AuthMW, a.Auth.Logout)
	api.Get("/profile", a.AuthMW, a.Auth.Profile)
	api.Put("/profile", a.AuthMW, a.Auth.UpdateProfile)

	api.Get("/products", a.Products.List)
	api.Get("/products/:id", a.Products.Get)
	api.Post("/products", a.AuthMW, a.AdminMW, a.Products.Create)
	api.Put("/products/:id", a.AuthMW, a.AdminMW, a.Products.Update)
	// DELETE carries the admin gate as well; authenticated-but-not-admin
	// deletion was an authorization bug, not a feature.
	api.Delete("/products/:id", a.AuthMW, a.AdminMW, a.Products.Delete)
	api.Post("/products/:id/image", a.AuthMW, a.AdminMW, a.Products.UploadImage)

	api.Get("/cart", a.AuthMW, a.Cart.Get)
	api.Post("/cart", a.AuthMW, a.Cart.Add)
	api.Delete("/cart", a.AuthMW, a.Cart.Clear)
	api.Patch("/cart/:productId", a.AuthMW, a.Cart.UpdateItem)
	api.Delete("/cart/:productId", a.AuthMW, a.Cart.RemoveItem)

	if a.StaticDir != "" {
		app.Static("/", a.StaticDir)
	}

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Not Found"})
	})
}
