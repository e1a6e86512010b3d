package main

import "bloghive/internal/app"

// @title           BlogHive API
// @version         1.0
// @description     Blog platform with OTP-gated signup and password reset.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	app.Run()
}
