package main

import (
	"os"
)

// @title MiniDebet Invoicing API
// @version 1.0
// @description Accounts, clients and numbered invoices with server-computed totals
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
