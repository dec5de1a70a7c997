// cmd/main.go
package main

import (
	"academy-api/app"
)

// @title           Academy API
// @version         1.0
// @description     Backend of the academy homepage: members, categories, notices, FAQ, files and admission applications.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
