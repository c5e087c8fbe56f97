// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"sankalpa/internal/database"
	"sankalpa/internal/models"

	"gorm.io/gorm"
)

// reader routes a query to the read replica when one is registered.
func reader(ctx context.Context, db *gorm.DB) *gorm.DB {
	return database.Read(ctx, db)
}

// notFound maps gorm.ErrRecordNotFound onto the API error type.
func notFound(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}
