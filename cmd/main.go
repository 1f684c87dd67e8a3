// cmd/main.go
package main

import (
	"go-shop-api/app"
)

// @title           Go-Shop API
// @version         1.0
// @description     Account and session API for the Go-Shop storefront.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:4005
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
