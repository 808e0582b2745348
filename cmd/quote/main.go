package main

import (
	"context"
	"log"
	"os"

	"github.com/ikkim/cart-backend/internal/app/repository"
	"github.com/ikkim/cart-backend/internal/app/service"
	"github.com/ikkim/cart-backend/internal/db"
	"github.com/ikkim/cart-backend/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: go run cmd/quote/main.go <xlsx_file_path>")
	}

	filePath := os.Args[1]

	logger.Initialize(logger.Config{
		Level:  "warn",
		Format: "console",
	})

	f, err := os.Open(filePath)
	if err != nil {
		log.Fatal("Failed to open XLSX:", err)
	}
	defer f.Close()

	// quotes never outlive the process
	conn, err := db.Open("file:quote?mode=memory&cache=shared", 1)
	if err != nil {
		log.Fatal("Failed to open cart store:", err)
	}
	if sqlDB, err := conn.DB(); err == nil {
		defer sqlDB.Close()
	}

	if err := db.MigrateDB(conn); err != nil {
		log.Fatal("Failed to prepare cart store:", err)
	}

	cartService := service.NewCartService(repository.NewCartRepository(conn))

	if _, err := quoteWorkbook(context.Background(), cartService, f, os.Stdout); err != nil {
		log.Fatal("Failed to quote workbook:", err)
	}
}
