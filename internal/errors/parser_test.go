package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestParseError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		context  string
		wantCode string
	}{
		{"Nil error", nil, "", InternalServerError},
		{"Record not found", fmt.Errorf("find: %w", gorm.ErrRecordNotFound), "cart item", ResourceNotFound},
		{"Unique constraint", errors.New("UNIQUE constraint failed: cart_items.id"), "add", ResourceAlreadyExists},
		{"Not null name", errors.New("NOT NULL constraint failed: cart_items.name"), "add", ValidationRequired},
		{"Locked database", errors.New("database is locked"), "update", InternalDatabaseError},
		{"Connection refused", errors.New("dial tcp: connection refused"), "summary", InternalExternalAPI},
		{"Unknown", errors.New("boom"), "clear cart", InternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := ParseError(tt.err, tt.context)
			assert.Equal(t, tt.wantCode, info.Code)
			assert.NotEmpty(t, info.Message)
		})
	}
}

func TestParseError_Messages(t *testing.T) {
	assert.Equal(t, "Cart item not found", ParseError(gorm.ErrRecordNotFound, "cart item").Message)
	assert.Equal(t, "Item name is required", ParseError(errors.New("NOT NULL constraint failed: cart_items.name"), "add").Message)
	assert.Equal(t, "Failed to remove from the cart. Please try again", ParseError(errors.New("boom"), "clear cart").Message)
}
