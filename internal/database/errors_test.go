package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		want      ErrorClass
		retryable bool
	}{
		{name: "nil", err: nil, want: ErrorClassPermanent},
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: ErrorClassSerialization, retryable: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: ErrorClassDeadlock, retryable: true},
		{name: "lock not available", err: &pq.Error{Code: "55P03"}, want: ErrorClassTransient, retryable: true},
		{name: "connection failure", err: &pq.Error{Code: "08006"}, want: ErrorClassTransient, retryable: true},
		{name: "wrapped deadlock", err: fmt.Errorf("create order: %w", &pq.Error{Code: "40P01"}), want: ErrorClassDeadlock, retryable: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: ErrorClassPermanent},
		{name: "check violation", err: &pq.Error{Code: "23514"}, want: ErrorClassPermanent},
		{name: "no rows", err: sql.ErrNoRows, want: ErrorClassPermanent},
		{name: "plain error", err: errors.New("boom"), want: ErrorClassPermanent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("duplicate")))
}

func TestErrorClassString(t *testing.T) {
	assert.Equal(t, "serialization", ErrorClassSerialization.String())
	assert.Equal(t, "permanent", ErrorClass(99).String())
}
