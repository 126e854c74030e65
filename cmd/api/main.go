package main

import "shopcore/internal/app"

// @title           Shopcore API
// @version         1.0
// @description     E-commerce backend with email verification, catalog, orders and payments.
// @BasePath        /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
