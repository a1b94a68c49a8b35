package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/ahmetcoskunkizilkaya/questlog-backend/internal/target"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		in   error
		want error
	}{
		{fmt.Errorf("%w: post-1", target.ErrNotFound), ErrNotFound},
		{gorm.ErrRecordNotFound, ErrNotFound},
		{fmt.Errorf("%w: post-1", target.ErrUnauthorized), ErrUnauthorized},
		{target.ErrUnknownKind, ErrValidation},
		{invalid("bad"), ErrValidation},
		{conflict("dup"), ErrConflict},
	}
	for _, tt := range tests {
		assert.ErrorIs(t, categorize(tt.in), tt.want, tt.in.Error())
	}

	plain := errors.New("db down")
	assert.Equal(t, plain, categorize(plain))
	assert.NoError(t, categorize(nil))
}
