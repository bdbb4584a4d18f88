package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestClassify(t *testing.T) {
	other := errors.New("connection reset")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"gorm not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), ErrNotFound},
		{"gorm duplicated", gorm.ErrDuplicatedKey, ErrDuplicateKey},
		{"pg unique violation", &pgconn.PgError{Code: "23505", Message: "duplicate key value"}, ErrDuplicateKey},
		{"pg other code", &pgconn.PgError{Code: "23503"}, nil},
		{"plain", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.in)
			if tt.in == nil {
				if got != nil {
					t.Fatalf("classify(nil) = %v", got)
				}
				return
			}
			if tt.want == nil {
				if errors.Is(got, ErrNotFound) || errors.Is(got, ErrDuplicateKey) {
					t.Fatalf("classify(%v) = %v, want unclassified", tt.in, got)
				}
				return
			}
			if !errors.Is(got, tt.want) {
				t.Fatalf("classify(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
