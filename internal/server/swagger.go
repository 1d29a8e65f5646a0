package server

//go:generate swag init -g swagger.go -d ./,../scan,../store -o ../../docs/swagger --outputTypes go

// @title Ziva API
// @version 0.1
// @description Link trust scanner: verdicts, price history and competitor prices for product listings.
// @contact.name Ziva Maintainers
// @contact.url https://github.com/raysh454/ziva
// @BasePath /
